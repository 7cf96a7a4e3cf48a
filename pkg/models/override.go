package models

// RuleOverride customizes properties of a prebuilt rule without replacing it.
type RuleOverride struct {
	RuleID    string   `yaml:"rule_id" validate:"required"`
	Severity  string   `yaml:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	RiskScore *int     `yaml:"risk_score,omitempty" validate:"omitempty,min=0,max=100"`
	Tags      []string `yaml:"tags,omitempty" validate:"dive,required"`
	Interval  string   `yaml:"interval,omitempty" validate:"omitempty,interval"`
	From      string   `yaml:"from,omitempty" validate:"omitempty,datemath"`
}

// DecodeRuleOverride parses and validates a rule override document.
func DecodeRuleOverride(data []byte) (*RuleOverride, FieldErrors) {
	o := &RuleOverride{}
	errs := decodeStrict(data, o)
	errs = append(errs, structErrors(o)...)
	return o, errs
}
