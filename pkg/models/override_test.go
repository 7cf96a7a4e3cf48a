package models_test

import (
	"testing"

	"github.com/arthur-debert/dac/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRuleID = "28d39238-0c01-420a-b77a-24e5a7378663"

func TestDecodeRuleOverride(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		o, errs := models.DecodeRuleOverride([]byte("rule_id: " + sampleRuleID + "\n"))
		require.Empty(t, errs)
		assert.Equal(t, sampleRuleID, o.RuleID)
		assert.Empty(t, o.Severity)
		assert.Nil(t, o.RiskScore)
	})

	t.Run("severity and risk score", func(t *testing.T) {
		o, errs := models.DecodeRuleOverride([]byte("rule_id: " + sampleRuleID + "\nseverity: critical\nrisk_score: 95\n"))
		require.Empty(t, errs)
		assert.Equal(t, "critical", o.Severity)
		require.NotNil(t, o.RiskScore)
		assert.Equal(t, 95, *o.RiskScore)
	})

	t.Run("zero risk score is allowed", func(t *testing.T) {
		_, errs := models.DecodeRuleOverride([]byte("rule_id: x\nrisk_score: 0\n"))
		assert.Empty(t, errs)
	})

	t.Run("scheduling", func(t *testing.T) {
		o, errs := models.DecodeRuleOverride([]byte("rule_id: x\ninterval: 1m\nfrom: now-6m\n"))
		require.Empty(t, errs)
		assert.Equal(t, "1m", o.Interval)
		assert.Equal(t, "now-6m", o.From)
	})
}

func TestDecodeRuleOverride_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{"invalid severity", "rule_id: x\nseverity: super-high\n", "severity"},
		{"risk score too high", "rule_id: x\nrisk_score: 150\n", "risk_score"},
		{"negative risk score", "rule_id: x\nrisk_score: -1\n", "risk_score"},
		{"missing rule_id", "severity: low\n", "rule_id"},
		{"bad interval", "rule_id: x\ninterval: often\n", "interval"},
		{"bad from", "rule_id: x\nfrom: yesterday\n", "from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := models.DecodeRuleOverride([]byte(tt.doc))
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}
