// Package customers manages the directory-based customer registry under
// <root>/customers.
package customers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/arthur-debert/dac/pkg/models"
)

// File and directory names inside a customer directory.
const (
	Dir          = "customers"
	ConfigFile   = "config.yaml"
	ManifestFile = "in-scope-rules.yaml"
	OverridesDir = "overrides"
)

// Customer is a loaded customer entry.
type Customer struct {
	ID       string
	Dir      string
	Config   *models.CustomerConfig
	Manifest *models.Manifest
}

// Path helpers
func CustomersDir(root string) string { return filepath.Join(root, Dir) }

func CustomerDir(root, id string) string { return filepath.Join(root, Dir, id) }

func ConfigPath(root, id string) string { return filepath.Join(CustomerDir(root, id), ConfigFile) }

func ManifestPath(root, id string) string {
	return filepath.Join(CustomerDir(root, id), ManifestFile)
}

// checkID rejects ids that cannot name a directory under customers/, such
// as "..".
func checkID(id string) error {
	if models.ValidCustomerID(id) {
		return nil
	}
	return errors.Newf(errors.ErrInvalidInput,
		"invalid customer id %q: use lowercase letters, digits, '-' and '_'", id).
		WithDetail("customer", id)
}

// List returns the ids of every customer directory holding both a config
// and a manifest, sorted. A missing customers directory yields no ids.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(CustomersDir(root))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read customers directory").
			WithDetail("path", CustomersDir(root))
	}

	ids := []string{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		id := entry.Name()
		if isFile(ConfigPath(root, id)) && isFile(ManifestPath(root, id)) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Load reads and validates one customer's config and manifest.
func Load(root, id string) (*Customer, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	logger := logging.GetLogger("customers").With().Str("customer", id).Logger()

	dir := CustomerDir(root, id)
	if !isDir(dir) {
		return nil, errors.Newf(errors.ErrNotFound, "customer %q not found", id).
			WithDetail("customer", id).
			WithDetail("path", dir)
	}

	cfg, err := models.LoadCustomerConfig(ConfigPath(root, id))
	if err != nil {
		return nil, err
	}
	manifest, err := models.LoadManifest(ManifestPath(root, id))
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("enabled", len(manifest.Enabled)).
		Int("disabled", len(manifest.Disabled)).
		Msg("Loaded customer")

	return &Customer{ID: id, Dir: dir, Config: cfg, Manifest: manifest}, nil
}

// DocumentResult is the validation outcome of one file.
type DocumentResult struct {
	Path   string
	Errors models.FieldErrors
}

// Valid reports whether the document had no errors.
func (d DocumentResult) Valid() bool { return len(d.Errors) == 0 }

// ValidationReport covers every document of a customer.
type ValidationReport struct {
	Customer  string
	Documents []DocumentResult
}

// ErrorCount is the number of field errors across all documents.
func (r *ValidationReport) ErrorCount() int {
	n := 0
	for _, d := range r.Documents {
		n += len(d.Errors)
	}
	return n
}

// Valid reports whether every document passed.
func (r *ValidationReport) Valid() bool { return r.ErrorCount() == 0 }

// Validate checks the config, the manifest and every override file of a
// customer independently, collecting all field errors instead of stopping at
// the first. The returned error is only set for a missing customer or an
// unreadable file; schema problems live in the report.
func Validate(root, id string) (*ValidationReport, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	dir := CustomerDir(root, id)
	if !isDir(dir) {
		return nil, errors.Newf(errors.ErrNotFound, "customer %q not found", id).
			WithDetail("customer", id).
			WithDetail("path", dir)
	}

	report := &ValidationReport{Customer: id}

	check := func(path string, decode func([]byte) models.FieldErrors) error {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				report.Documents = append(report.Documents, DocumentResult{
					Path:   path,
					Errors: models.FieldErrors{{Kind: models.KindRequired, Message: "file is missing"}},
				})
				return nil
			}
			return errors.Wrap(err, errors.ErrFileAccess, "cannot read file").WithDetail("path", path)
		}
		report.Documents = append(report.Documents, DocumentResult{Path: path, Errors: decode(data)})
		return nil
	}

	if err := check(ConfigPath(root, id), func(data []byte) models.FieldErrors {
		_, errs := models.DecodeCustomerConfig(data)
		return errs
	}); err != nil {
		return nil, err
	}

	if err := check(ManifestPath(root, id), func(data []byte) models.FieldErrors {
		_, errs := models.DecodeManifest(data)
		return errs
	}); err != nil {
		return nil, err
	}

	overrides, err := overrideFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, path := range overrides {
		if err := check(path, func(data []byte) models.FieldErrors {
			_, errs := models.DecodeRuleOverride(data)
			return errs
		}); err != nil {
			return nil, err
		}
	}

	logger := logging.GetLogger("customers")
	logger.Debug().
		Str("customer", id).
		Int("documents", len(report.Documents)).
		Int("errors", report.ErrorCount()).
		Msg("Validated customer")

	return report, nil
}

// Err turns a failed report into a VALIDATION error, or nil.
func (r *ValidationReport) Err() error {
	if r.Valid() {
		return nil
	}
	var all models.FieldErrors
	for _, d := range r.Documents {
		for _, fe := range d.Errors {
			if fe.Field == "" {
				fe.Field = filepath.Base(d.Path)
			} else {
				fe.Field = filepath.Base(d.Path) + ": " + fe.Field
			}
			all = append(all, fe)
		}
	}
	return models.NewValidationError(fmt.Sprintf("customer %q", r.Customer), all).
		WithDetail("customer", r.Customer)
}

func overrideFiles(dir string) ([]string, error) {
	overridesDir := filepath.Join(dir, OverridesDir)
	entries, err := os.ReadDir(overridesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read overrides directory").
			WithDetail("path", overridesDir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(overridesDir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
