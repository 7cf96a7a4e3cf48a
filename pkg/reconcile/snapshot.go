package reconcile

import (
	"context"
	"sort"

	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/arthur-debert/dac/pkg/models"
)

// RuleSource lists every rule on the backend.
type RuleSource interface {
	GetAllRules(ctx context.Context) ([]kibana.Rule, error)
}

// SnapshotOptions filters the rules captured by Snapshot.
type SnapshotOptions struct {
	// PrebuiltOnly keeps vendor (immutable) rules only.
	PrebuiltOnly bool
}

// Snapshot builds a manifest from live backend state: enabled rules in
// enabled, the rest in disabled, both sorted. A rule_id the backend returns
// twice keeps its first state.
func Snapshot(ctx context.Context, source RuleSource, opts SnapshotOptions) (*models.Manifest, error) {
	logger := logging.GetLogger("reconcile")

	rules, err := source.GetAllRules(ctx)
	if err != nil {
		return nil, err
	}

	m := &models.Manifest{Enabled: []string{}, Disabled: []string{}}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if opts.PrebuiltOnly && !r.Immutable {
			continue
		}
		if seen[r.RuleID] {
			continue
		}
		seen[r.RuleID] = true
		if r.Enabled {
			m.Enabled = append(m.Enabled, r.RuleID)
		} else {
			m.Disabled = append(m.Disabled, r.RuleID)
		}
	}
	sort.Strings(m.Enabled)
	sort.Strings(m.Disabled)

	logger.Info().
		Int("remote", len(rules)).
		Int("enabled", len(m.Enabled)).
		Int("disabled", len(m.Disabled)).
		Bool("prebuilt_only", opts.PrebuiltOnly).
		Msg("Captured backend snapshot")

	return m, nil
}
