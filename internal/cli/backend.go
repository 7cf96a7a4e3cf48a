package cli

import (
	"github.com/arthur-debert/dac/pkg/config"
	"github.com/arthur-debert/dac/pkg/customers"
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/logging"
)

// session bundles what a backend command needs. Close releases the client.
type session struct {
	customer *customers.Customer
	settings config.Settings
	client   *kibana.Client
}

func (s *session) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// openSession loads the customer (when given) and the settings, applies the
// customer's overrides and connects a client. Customer problems are reported
// before configuration problems.
func openSession(root, customerID string) (*session, error) {
	s := &session{}

	if customerID != "" {
		c, err := customers.Load(root, customerID)
		if err != nil {
			return nil, err
		}
		s.customer = c
	}

	settings, err := config.Load(config.Options{Root: root})
	if err != nil {
		return nil, err
	}
	s.settings = *settings
	if s.customer != nil {
		s.settings = s.settings.ForCustomer(s.customer.Config)
	}
	if err := s.settings.Validate(); err != nil {
		return nil, err
	}

	s.client = kibana.New(s.settings.KibanaOptions())

	logger := logging.GetLogger("cli")
	logger.Debug().
		Str("customer", customerID).
		Str("kibana_url", s.settings.KibanaURL).
		Str("space", s.settings.ElasticSpace).
		Msg("Session opened")

	return s, nil
}
