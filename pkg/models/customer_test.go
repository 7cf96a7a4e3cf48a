package models_test

import (
	"testing"

	"github.com/arthur-debert/dac/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCustomerConfig_Minimal(t *testing.T) {
	cfg, errs := models.DecodeCustomerConfig([]byte(`
name: ACME Corp
enabled_rules_repo: acme-org/acme-enabled-rules
`))
	require.Empty(t, errs)
	assert.Equal(t, "ACME Corp", cfg.Name)
	assert.Equal(t, "acme-org/acme-enabled-rules", cfg.EnabledRulesRepo)
	assert.Empty(t, cfg.AuthoredRulesRepo)
	assert.Empty(t, cfg.KibanaURL)
	assert.Equal(t, "default", cfg.ElasticSpace)
}

func TestDecodeCustomerConfig_Full(t *testing.T) {
	cfg, errs := models.DecodeCustomerConfig([]byte(`
name: ACME Corp
enabled_rules_repo: acme-org/acme-enabled-rules
authored_rules_repo: acme-org/acme-authored-rules
kibana_url: https://acme.kb.us-central1.gcp.cloud.es.io
elastic_space: security
`))
	require.Empty(t, errs)
	assert.Equal(t, "acme-org/acme-authored-rules", cfg.AuthoredRulesRepo)
	assert.Equal(t, "https://acme.kb.us-central1.gcp.cloud.es.io", cfg.KibanaURL)
	assert.Equal(t, "security", cfg.ElasticSpace)
}

func TestDecodeCustomerConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
		wantKind  string
	}{
		{
			name:      "missing enabled_rules_repo",
			doc:       "name: ACME Corp\n",
			wantField: "enabled_rules_repo",
			wantKind:  models.KindRequired,
		},
		{
			name:      "missing name",
			doc:       "enabled_rules_repo: a/b\n",
			wantField: "name",
			wantKind:  models.KindRequired,
		},
		{
			name:      "repo without owner",
			doc:       "name: x\nenabled_rules_repo: just-a-repo\n",
			wantField: "enabled_rules_repo",
			wantKind:  models.KindInvalid,
		},
		{
			name:      "bad url",
			doc:       "name: x\nenabled_rules_repo: a/b\nkibana_url: not a url\n",
			wantField: "kibana_url",
			wantKind:  models.KindInvalid,
		},
		{
			name:      "bad space",
			doc:       "name: x\nenabled_rules_repo: a/b\nelastic_space: Security Team\n",
			wantField: "elastic_space",
			wantKind:  models.KindInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := models.DecodeCustomerConfig([]byte(tt.doc))
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.Equal(t, tt.wantKind, errs[0].Kind)
		})
	}
}

func TestDecodeCustomerConfig_ReportsEverything(t *testing.T) {
	_, errs := models.DecodeCustomerConfig([]byte("elastic_space: UPPER\nunknown: 1\n"))
	// unknown key, name, enabled_rules_repo, elastic_space
	assert.Len(t, errs, 4)
}
