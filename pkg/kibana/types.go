package kibana

// Rule is the subset of a detection rule dac reasons about.
type Rule struct {
	// ID is the backend-assigned storage identifier used by bulk actions.
	ID string `json:"id"`
	// RuleID is the stable identifier referenced from manifests.
	RuleID    string   `json:"rule_id"`
	Name      string   `json:"name"`
	Enabled   bool     `json:"enabled"`
	Immutable bool     `json:"immutable"`
	Severity  string   `json:"severity,omitempty"`
	RiskScore int      `json:"risk_score,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Interval  string   `json:"interval,omitempty"`
	From      string   `json:"from,omitempty"`
	Version   int      `json:"version,omitempty"`
}

// RuleDocument is a rule as the backend returns it, every field preserved.
type RuleDocument map[string]interface{}

// String returns a top-level string field, or "" when absent.
func (d RuleDocument) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// BulkActionType names a bulk state change.
type BulkActionType string

const (
	ActionEnable  BulkActionType = "enable"
	ActionDisable BulkActionType = "disable"
)

// BulkResult summarizes one bulk action call.
type BulkResult struct {
	Action    BulkActionType
	Requested int
	Succeeded int
	Failed    int
	Skipped   int
	// Summarized is false when the backend omitted a summary and Succeeded
	// fell back to Requested.
	Summarized bool
}

type findResponse struct {
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
	Total   int    `json:"total"`
	Data    []Rule `json:"data"`
}

type bulkRequest struct {
	Action BulkActionType `json:"action"`
	IDs    []string       `json:"ids"`
}

type bulkResponse struct {
	Attributes *struct {
		Summary *struct {
			Succeeded *int `json:"succeeded"`
			Failed    int  `json:"failed"`
			Skipped   int  `json:"skipped"`
			Total     int  `json:"total"`
		} `json:"summary"`
	} `json:"attributes"`
}
