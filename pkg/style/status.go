package style

import (
	"fmt"

	"github.com/arthur-debert/dac/pkg/drift"
	"github.com/pterm/pterm"
)

// StatusLabels are the short labels shown in front of each rule line
var StatusLabels = map[drift.Status]string{
	drift.StatusToEnable:  "enable",
	drift.StatusToDisable: "disable",
	drift.StatusSatisfied: "ok",
	drift.StatusNotFound:  "missing",
}

// StatusVerbs defines past and future tense wording for each status
var StatusVerbs = map[drift.Status]struct {
	Past   string
	Future string
}{
	drift.StatusToEnable:  {Past: "enabled", Future: "will be enabled"},
	drift.StatusToDisable: {Past: "disabled", Future: "will be disabled"},
	drift.StatusSatisfied: {Past: "already in desired state", Future: "already in desired state"},
	drift.StatusNotFound:  {Past: "not found on backend, skipped", Future: "not found on backend, will be skipped"},
}

// StatusStyle returns the pterm style for a drift status
func StatusStyle(status drift.Status) *pterm.Style {
	switch status {
	case drift.StatusToEnable:
		return pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	case drift.StatusToDisable:
		return pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	case drift.StatusNotFound:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// EntryLine formats one classified rule as "label : rule_id : message".
// Past tense is used once the change was applied.
func EntryLine(e drift.Entry, applied bool) (label, ruleID, message string) {
	label = fmt.Sprintf("%-8s", StatusLabels[e.Status])
	ruleID = e.RuleID

	verbs := StatusVerbs[e.Status]
	message = verbs.Future
	if applied {
		message = verbs.Past
	}
	if e.Name != "" {
		message = fmt.Sprintf("%s (%s)", message, e.Name)
	}
	return label, ruleID, message
}

// RenderEntry renders a rule line with status colors
func RenderEntry(e drift.Entry, applied bool) string {
	label, ruleID, message := EntryLine(e, applied)
	return fmt.Sprintf("    %s : %s : %s",
		StatusStyle(e.Status).Sprint(label),
		RuleIDStyle.Render(ruleID),
		message)
}
