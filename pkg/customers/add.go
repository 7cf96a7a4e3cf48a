package customers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/arthur-debert/dac/pkg/models"
	"gopkg.in/yaml.v3"
)

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// AddResult lists what Add created.
type AddResult struct {
	ID    string
	Dir   string
	Files []string
}

// ManifestHeader is the comment block written above a customer manifest.
func ManifestHeader(id string) string {
	return fmt.Sprintf("# In-scope detection rules for %s.\n"+
		"# List rule_ids under enabled or disabled; rules in neither list are left alone.\n", id)
}

// Add scaffolds customers/<id> with a config pointing at the customer's
// GitHub repositories, an empty manifest and an overrides directory.
func Add(root, id, githubOwner string) (*AddResult, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if !ownerPattern.MatchString(githubOwner) {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid GitHub owner %q", githubOwner).
			WithDetail("owner", githubOwner)
	}

	dir := CustomerDir(root, id)
	if _, err := os.Stat(dir); err == nil {
		return nil, errors.Newf(errors.ErrAlreadyExists, "customer %q already exists", id).
			WithDetail("customer", id).
			WithDetail("path", dir)
	}

	cfg := &models.CustomerConfig{
		Name:              id,
		EnabledRulesRepo:  fmt.Sprintf("%s/%s-enabled-rules", githubOwner, id),
		AuthoredRulesRepo: fmt.Sprintf("%s/%s-authored-rules", githubOwner, id),
		ElasticSpace:      models.DefaultSpace,
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Customer configuration for %s.\n", id)
	buf.WriteString("# kibana_url overrides KIBANA_URL for this customer when set.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode customer config")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode customer config")
	}

	overrides := filepath.Join(dir, OverridesDir)
	if err := os.MkdirAll(overrides, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create customer directory").
			WithDetail("path", overrides)
	}

	result := &AddResult{ID: id, Dir: dir}

	configPath := ConfigPath(root, id)
	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write customer config").
			WithDetail("path", configPath)
	}
	result.Files = append(result.Files, configPath)

	manifestPath := ManifestPath(root, id)
	if err := models.WriteManifest(manifestPath, &models.Manifest{}, ManifestHeader(id)); err != nil {
		return nil, err
	}
	result.Files = append(result.Files, manifestPath)

	keep := filepath.Join(overrides, ".gitkeep")
	if err := os.WriteFile(keep, nil, 0644); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write overrides placeholder").
			WithDetail("path", keep)
	}
	result.Files = append(result.Files, keep)

	logger := logging.GetLogger("customers")
	logger.Info().
		Str("customer", id).
		Str("enabled_rules_repo", cfg.EnabledRulesRepo).
		Msg("Customer added")

	return result, nil
}
