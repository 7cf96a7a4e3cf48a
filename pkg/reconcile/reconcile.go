// Package reconcile drives a drift classification and, in apply mode, the
// bulk state changes that bring the backend in line with a manifest.
package reconcile

import (
	"context"

	"github.com/arthur-debert/dac/pkg/drift"
	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/arthur-debert/dac/pkg/models"
)

// Mode selects whether changes are only reported or also applied.
type Mode int

const (
	Preview Mode = iota
	Apply
)

func (m Mode) String() string {
	if m == Apply {
		return "apply"
	}
	return "preview"
}

// Backend is the part of the rule client the reconciler needs.
type Backend interface {
	GetAllRules(ctx context.Context) ([]kibana.Rule, error)
	BulkAction(ctx context.Context, action kibana.BulkActionType, ids []string, dryRun bool) (*kibana.BulkResult, error)
}

// Report summarizes a classification. It is identical for both modes.
type Report struct {
	Enabled    []drift.Entry
	Disabled   []drift.Entry
	NotFound   []drift.Entry
	Satisfied  []drift.Entry
	Duplicates []drift.Duplicate
	// RemoteTotal is the number of rules the backend returned.
	RemoteTotal int
}

// HasChanges reports whether the manifest asks for any state change.
func (r *Report) HasChanges() bool {
	return len(r.Enabled) > 0 || len(r.Disabled) > 0
}

// Result is the outcome of one reconciliation.
type Result struct {
	Mode   Mode
	Report Report
	// EnableResult and DisableResult are nil when no call was made.
	EnableResult  *kibana.BulkResult
	DisableResult *kibana.BulkResult
	// Applied is true once every needed bulk call succeeded.
	Applied bool
}

// Reconcile fetches the remote rule set, classifies the manifest against it
// and, in Apply mode, issues at most one enable and one disable bulk call.
// A failed disable after a successful enable returns the partial result
// along with a BACKEND_PARTIAL error. Nothing is rolled back.
func Reconcile(ctx context.Context, backend Backend, manifest *models.Manifest, mode Mode) (*Result, error) {
	logger := logging.GetLogger("reconcile")
	done := logging.LogOperationStart(logger, "reconcile "+mode.String())
	defer done()

	rules, err := backend.GetAllRules(ctx)
	if err != nil {
		return nil, err
	}

	c := drift.Classify(manifest, rules)
	for _, d := range c.Duplicates {
		logger.Warn().
			Str("rule_id", d.RuleID).
			Str("kept_id", d.KeptID).
			Strs("ignored_ids", d.IgnoredIDs).
			Msg("Backend returned duplicate rule_id")
	}
	for _, e := range c.NotFound {
		logger.Warn().Str("rule_id", e.RuleID).Msg("Rule not found on backend")
	}

	result := &Result{
		Mode: mode,
		Report: Report{
			Enabled:     c.ToEnable,
			Disabled:    c.ToDisable,
			NotFound:    c.NotFound,
			Satisfied:   c.Satisfied,
			Duplicates:  c.Duplicates,
			RemoteTotal: len(rules),
		},
	}

	logger.Info().
		Int("to_enable", len(c.ToEnable)).
		Int("to_disable", len(c.ToDisable)).
		Int("not_found", len(c.NotFound)).
		Int("satisfied", len(c.Satisfied)).
		Msg("Classified manifest")

	if mode == Preview || !c.HasChanges() {
		return result, nil
	}

	if ids := c.EnableIDs(); len(ids) > 0 {
		res, err := backend.BulkAction(ctx, kibana.ActionEnable, ids, false)
		if err != nil {
			return nil, err
		}
		result.EnableResult = res
	}

	if ids := c.DisableIDs(); len(ids) > 0 {
		res, err := backend.BulkAction(ctx, kibana.ActionDisable, ids, false)
		if err != nil {
			if result.EnableResult == nil {
				return nil, err
			}
			return result, errors.Wrap(err, errors.ErrBackendPartial,
				"enable changes were applied but the disable call failed").
				WithDetail("enabled", result.EnableResult.Succeeded).
				WithDetail("disable_requested", len(ids))
		}
		result.DisableResult = res
	}

	result.Applied = true
	return result, nil
}
