package models

import (
	"bytes"
	"fmt"
	"os"

	"github.com/arthur-debert/dac/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is the desired enablement state: rule_ids that should be enabled
// and rule_ids that should be disabled. Declaration order is preserved.
type Manifest struct {
	Enabled  []string `yaml:"enabled" validate:"dive,required"`
	Disabled []string `yaml:"disabled" validate:"dive,required"`
}

// IsEmpty reports whether the manifest declares no rules at all.
func (m *Manifest) IsEmpty() bool {
	return len(m.Enabled) == 0 && len(m.Disabled) == 0
}

// DecodeManifest parses and validates a manifest document.
func DecodeManifest(data []byte) (*Manifest, FieldErrors) {
	m := &Manifest{}
	errs := decodeStrict(data, m)
	errs = append(errs, structErrors(m)...)
	errs = append(errs, m.crossCheck()...)
	if m.Enabled == nil {
		m.Enabled = []string{}
	}
	if m.Disabled == nil {
		m.Disabled = []string{}
	}
	return m, errs
}

// crossCheck rejects ids repeated within a list and ids listed as both
// enabled and disabled.
func (m *Manifest) crossCheck() FieldErrors {
	var errs FieldErrors

	seenEnabled := make(map[string]bool, len(m.Enabled))
	for i, id := range m.Enabled {
		if id == "" {
			continue
		}
		if seenEnabled[id] {
			errs = append(errs, FieldError{
				Kind:    KindDuplicate,
				Field:   fmt.Sprintf("enabled[%d]", i),
				Message: fmt.Sprintf("rule_id %s is listed more than once", id),
			})
		}
		seenEnabled[id] = true
	}

	seenDisabled := make(map[string]bool, len(m.Disabled))
	for i, id := range m.Disabled {
		if id == "" {
			continue
		}
		field := fmt.Sprintf("disabled[%d]", i)
		if seenDisabled[id] {
			errs = append(errs, FieldError{
				Kind:    KindDuplicate,
				Field:   field,
				Message: fmt.Sprintf("rule_id %s is listed more than once", id),
			})
		}
		seenDisabled[id] = true

		if seenEnabled[id] {
			errs = append(errs, FieldError{
				Kind:    KindConflict,
				Field:   field,
				Message: fmt.Sprintf("rule_id %s is listed as both enabled and disabled", id),
			})
		}
	}

	return errs
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrNotFound, "manifest not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read manifest").
			WithDetail("path", path)
	}

	m, errs := DecodeManifest(data)
	if len(errs) > 0 {
		return nil, NewValidationError(path, errs)
	}
	return m, nil
}

// EncodeManifest renders a manifest with an optional leading comment block.
func EncodeManifest(m *Manifest, header string) ([]byte, error) {
	var buf bytes.Buffer
	if header != "" {
		buf.WriteString(header)
		if header[len(header)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	out := Manifest{Enabled: m.Enabled, Disabled: m.Disabled}
	if out.Enabled == nil {
		out.Enabled = []string{}
	}
	if out.Disabled == nil {
		out.Disabled = []string{}
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteManifest writes a manifest to path.
func WriteManifest(path string, m *Manifest, header string) error {
	data, err := EncodeManifest(m, header)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode manifest")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write manifest").
			WithDetail("path", path)
	}
	return nil
}
