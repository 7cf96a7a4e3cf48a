package models

import (
	"os"

	"github.com/arthur-debert/dac/pkg/errors"
)

// DefaultSpace is the Kibana space used when a customer does not name one.
const DefaultSpace = "default"

// CustomerConfig describes one managed customer environment.
type CustomerConfig struct {
	Name              string `yaml:"name" validate:"required"`
	EnabledRulesRepo  string `yaml:"enabled_rules_repo" validate:"required,repo"`
	AuthoredRulesRepo string `yaml:"authored_rules_repo,omitempty" validate:"omitempty,repo"`
	KibanaURL         string `yaml:"kibana_url,omitempty" validate:"omitempty,url"`
	ElasticSpace      string `yaml:"elastic_space" validate:"required,space"`
}

// DecodeCustomerConfig parses and validates a customer configuration.
func DecodeCustomerConfig(data []byte) (*CustomerConfig, FieldErrors) {
	cfg := &CustomerConfig{ElasticSpace: DefaultSpace}
	errs := decodeStrict(data, cfg)
	errs = append(errs, structErrors(cfg)...)
	return cfg, errs
}

// LoadCustomerConfig reads and validates the customer configuration at path.
func LoadCustomerConfig(path string) (*CustomerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrNotFound, "customer config not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read customer config").
			WithDetail("path", path)
	}

	cfg, errs := DecodeCustomerConfig(data)
	if len(errs) > 0 {
		return nil, NewValidationError(path, errs)
	}
	return cfg, nil
}
