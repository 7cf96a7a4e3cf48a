// Package publish generates the content of a customer's enabled-rules
// repository and stages it in a local git working tree.
package publish

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dac/pkg/customers"
	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/arthur-debert/dac/pkg/models"
	"github.com/go-git/go-git/v5"
)

// Generated file names.
const (
	EnablementFile = "enablement.yaml"
	ReadmeFile     = "README.md"
)

// Options controls Sync.
type Options struct {
	Root       string
	CustomerID string
	// OutDir defaults to <root>/build/<id>-enabled-rules.
	OutDir string
}

// Result describes a sync.
type Result struct {
	OutDir string
	// TargetRepo is the customer's enabled_rules_repo.
	TargetRepo string
	// Initialized is true when Sync created the git repository.
	Initialized bool
	Staged      []string
}

// DefaultOutDir is where Sync writes when no directory is given.
func DefaultOutDir(root, id string) string {
	return filepath.Join(root, "build", id+"-enabled-rules")
}

// Sync writes enablement.yaml and README.md for a customer and stages them.
// It never commits or pushes.
func Sync(opts Options) (*Result, error) {
	log := logging.GetLogger("publish").With().Str("customer", opts.CustomerID).Logger()

	customer, err := customers.Load(opts.Root, opts.CustomerID)
	if err != nil {
		return nil, err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = DefaultOutDir(opts.Root, opts.CustomerID)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create output directory").
			WithDetail("path", outDir)
	}

	result := &Result{OutDir: outDir, TargetRepo: customer.Config.EnabledRulesRepo}

	repo, err := git.PlainInit(outDir, false)
	switch {
	case err == nil:
		result.Initialized = true
		log.Debug().Str("path", outDir).Msg("Initialized git repository")
	case stderrors.Is(err, git.ErrRepositoryAlreadyExists):
		repo, err = git.PlainOpen(outDir)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot open git repository").
				WithDetail("path", outDir)
		}
	default:
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot initialize git repository").
			WithDetail("path", outDir)
	}

	source := filepath.ToSlash(filepath.Join(customers.Dir, opts.CustomerID, customers.ManifestFile))
	header := fmt.Sprintf("# Generated by dac from %s. Do not edit.\n# Target repository: %s\n",
		source, customer.Config.EnabledRulesRepo)
	enablement, err := models.EncodeManifest(customer.Manifest, header)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode enablement manifest")
	}

	generated := []struct {
		name    string
		content []byte
	}{
		{EnablementFile, enablement},
		{ReadmeFile, readme(customer)},
	}
	for _, g := range generated {
		path := filepath.Join(outDir, g.name)
		if err := os.WriteFile(path, g.content, 0644); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write generated file").
				WithDetail("path", path)
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot open git worktree").
			WithDetail("path", outDir)
	}
	for _, g := range generated {
		if _, err := wt.Add(g.name); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot stage %s", g.name).
				WithDetail("path", outDir)
		}
		result.Staged = append(result.Staged, g.name)
	}

	log.Info().
		Str("out_dir", outDir).
		Str("target_repo", result.TargetRepo).
		Bool("initialized", result.Initialized).
		Msg("Enabled-rules repository generated")

	return result, nil
}

func readme(c *customers.Customer) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s enabled rules\n\n", c.Config.Name)
	fmt.Fprintf(&b, "Detection rule enablement for `%s`, generated by dac.\n\n", c.ID)
	fmt.Fprintf(&b, "- Target repository: `%s`\n", c.Config.EnabledRulesRepo)
	if c.Config.AuthoredRulesRepo != "" {
		fmt.Fprintf(&b, "- Authored rules: `%s`\n", c.Config.AuthoredRulesRepo)
	}
	fmt.Fprintf(&b, "- Kibana space: `%s`\n", c.Config.ElasticSpace)
	fmt.Fprintf(&b, "- Enabled rules: %d\n", len(c.Manifest.Enabled))
	fmt.Fprintf(&b, "- Disabled rules: %d\n\n", len(c.Manifest.Disabled))
	fmt.Fprintf(&b, "See `%s` for the rule_ids.\n", EnablementFile)
	return b.Bytes()
}
