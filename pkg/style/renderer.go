package style

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dac/pkg/customers"
	"github.com/arthur-debert/dac/pkg/drift"
	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/kibana"
	"github.com/arthur-debert/dac/pkg/models"
	"github.com/arthur-debert/dac/pkg/reconcile"
	"github.com/pterm/pterm"
)

// NoChangesMessage is printed when a manifest needs no state change.
const NoChangesMessage = "No changes required."

// CustomerSummary is one row of the customer list.
type CustomerSummary struct {
	ID               string
	Name             string
	EnabledRulesRepo string
	KibanaURL        string
	Space            string
	Enabled          int
	Disabled         int
	// Err is set when the customer failed to load.
	Err error
}

// Renderer renders command output.
type Renderer interface {
	RenderReport(customer string, result *reconcile.Result, verbose bool) string
	RenderCustomers(list []CustomerSummary) string
	RenderValidation(report *customers.ValidationReport) string
	RenderError(err error) string
}

// NewRenderer returns the terminal renderer for colored output and the plain
// renderer otherwise.
func NewRenderer(color bool) Renderer {
	if color {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// TerminalRenderer renders with colors and symbols
type TerminalRenderer struct{}

// NewTerminalRenderer creates a new terminal renderer
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderReport renders a reconciliation result
func (r *TerminalRenderer) RenderReport(customer string, result *reconcile.Result, verbose bool) string {
	var b strings.Builder
	rep := result.Report
	applied := result.Mode == reconcile.Apply

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s)", customer, result.Mode)) + "\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%d rules on backend", rep.RemoteTotal)) + "\n\n")

	writeEntries := func(entries []drift.Entry, done bool) {
		for _, e := range entries {
			b.WriteString(RenderEntry(e, done) + "\n")
		}
	}

	writeEntries(rep.Enabled, applied && result.EnableResult != nil)
	writeEntries(rep.Disabled, applied && result.DisableResult != nil)
	writeEntries(rep.NotFound, applied)
	if verbose {
		writeEntries(rep.Satisfied, applied)
	}
	for _, d := range rep.Duplicates {
		b.WriteString(fmt.Sprintf("    %s duplicate rule_id %s: using %s, ignoring %s\n",
			WarningIndicator, RuleIDStyle.Render(d.RuleID), d.KeptID, strings.Join(d.IgnoredIDs, ", ")))
	}

	if !rep.HasChanges() {
		b.WriteString(SuccessIndicator + " " + NoChangesMessage + "\n")
	}

	b.WriteString("\n" + summaryLine(rep, func(s drift.Status, text string) string {
		return StatusStyle(s).Sprint(text)
	}) + "\n")

	for _, res := range []*kibana.BulkResult{result.EnableResult, result.DisableResult} {
		if res != nil {
			b.WriteString(bulkLine(res, SuccessIndicator, WarningIndicator) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderCustomers renders the customer list as a table
func (r *TerminalRenderer) RenderCustomers(list []CustomerSummary) string {
	if len(list) == 0 {
		return MutedStyle.Render("No customers found")
	}

	data := pterm.TableData{{"ID", "Name", "Enabled repo", "Space", "Enabled", "Disabled"}}
	for _, c := range list {
		if c.Err != nil {
			data = append(data, []string{c.ID, ErrorStyle.Render("invalid"), "", "", "", ""})
			continue
		}
		data = append(data, []string{
			c.ID, c.Name, c.EnabledRulesRepo, c.Space,
			fmt.Sprint(c.Enabled), fmt.Sprint(c.Disabled),
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return NewPlainRenderer().RenderCustomers(list)
	}
	return strings.TrimRight(out, "\n")
}

// RenderValidation renders a validation report
func (r *TerminalRenderer) RenderValidation(report *customers.ValidationReport) string {
	var b strings.Builder
	for _, d := range report.Documents {
		if d.Valid() {
			b.WriteString(fmt.Sprintf("%s %s\n", SuccessIndicator, PathStyle.Render(d.Path)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s\n", ErrorIndicator, PathStyle.Render(d.Path)))
		for _, fe := range d.Errors {
			b.WriteString(Indent(ErrorStyle.Render(fe.String()), 2) + "\n")
		}
	}

	if report.Valid() {
		b.WriteString("\n" + SuccessStyle.Render(fmt.Sprintf("Customer %s is valid", report.Customer)))
	} else {
		b.WriteString("\n" + ErrorStyle.Render(fmt.Sprintf("Customer %s has %d error(s)", report.Customer, report.ErrorCount())))
	}
	return b.String()
}

// RenderError renders an error with its code and any field errors
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	code := errors.GetErrorCode(err)
	if code != errors.ErrUnknown {
		b.WriteString(fmt.Sprintf("%s Error [%s]: %s", pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(string(code)), err.Error()))
	} else {
		b.WriteString(fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error())))
	}

	for _, fe := range models.FieldErrorsOf(err) {
		b.WriteString("\n" + Indent(ErrorIndicator+" "+fe.String(), 1))
	}
	if code == errors.ErrBackendPartial {
		b.WriteString("\n" + WarningStyle.Render(PartialFailureNotice))
	}
	return b.String()
}

// PartialFailureNotice explains the state left by a failed disable call.
const PartialFailureNotice = "Enable changes remain applied. Re-running push is safe and will retry the remaining changes."

// PlainRenderer renders without colors or table borders
type PlainRenderer struct{}

// NewPlainRenderer creates a new plain text renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderReport renders a reconciliation result as plain text
func (r *PlainRenderer) RenderReport(customer string, result *reconcile.Result, verbose bool) string {
	var b strings.Builder
	rep := result.Report
	applied := result.Mode == reconcile.Apply

	fmt.Fprintf(&b, "Customer: %s (%s)\n", customer, result.Mode)
	fmt.Fprintf(&b, "Remote rules: %d\n", rep.RemoteTotal)

	section := func(title string, entries []drift.Entry, done bool) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", title, len(entries))
		for _, e := range entries {
			label, ruleID, message := EntryLine(e, done)
			fmt.Fprintf(&b, "    %s : %s : %s\n", label, ruleID, message)
		}
	}

	section("To enable", rep.Enabled, applied && result.EnableResult != nil)
	section("To disable", rep.Disabled, applied && result.DisableResult != nil)
	section("Not found", rep.NotFound, applied)
	if verbose {
		section("Satisfied", rep.Satisfied, applied)
	}
	if len(rep.Duplicates) > 0 {
		fmt.Fprintf(&b, "\nDuplicate rule_ids (%d):\n", len(rep.Duplicates))
		for _, d := range rep.Duplicates {
			fmt.Fprintf(&b, "    %s: using %s, ignoring %s\n", d.RuleID, d.KeptID, strings.Join(d.IgnoredIDs, ", "))
		}
	}

	if !rep.HasChanges() {
		b.WriteString("\n" + NoChangesMessage + "\n")
	}

	b.WriteString("\n" + summaryLine(rep, func(_ drift.Status, text string) string { return text }) + "\n")

	for _, res := range []*kibana.BulkResult{result.EnableResult, result.DisableResult} {
		if res != nil {
			b.WriteString(bulkLine(res, "ok:", "warning:") + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderCustomers renders the customer list one per line
func (r *PlainRenderer) RenderCustomers(list []CustomerSummary) string {
	if len(list) == 0 {
		return "No customers found"
	}

	var b strings.Builder
	for _, c := range list {
		if c.Err != nil {
			fmt.Fprintf(&b, "%s\tinvalid: %v\n", c.ID, c.Err)
			continue
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\tenabled=%d disabled=%d\n",
			c.ID, c.Name, c.EnabledRulesRepo, c.Space, c.Enabled, c.Disabled)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderValidation renders a validation report as plain text
func (r *PlainRenderer) RenderValidation(report *customers.ValidationReport) string {
	var b strings.Builder
	for _, d := range report.Documents {
		if d.Valid() {
			fmt.Fprintf(&b, "ok    %s\n", d.Path)
			continue
		}
		fmt.Fprintf(&b, "FAIL  %s\n", d.Path)
		for _, fe := range d.Errors {
			fmt.Fprintf(&b, "      %s\n", fe.String())
		}
	}

	if report.Valid() {
		fmt.Fprintf(&b, "\nCustomer %s is valid", report.Customer)
	} else {
		fmt.Fprintf(&b, "\nCustomer %s has %d error(s)", report.Customer, report.ErrorCount())
	}
	return b.String()
}

// RenderError renders a plain error message
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Error: " + err.Error())
	for _, fe := range models.FieldErrorsOf(err) {
		b.WriteString("\n  - " + fe.String())
	}
	if errors.IsErrorCode(err, errors.ErrBackendPartial) {
		b.WriteString("\n" + PartialFailureNotice)
	}
	return b.String()
}

func summaryLine(rep reconcile.Report, paint func(drift.Status, string) string) string {
	return fmt.Sprintf("Summary: %s, %s, %s, %s",
		paint(drift.StatusToEnable, fmt.Sprintf("%d to enable", len(rep.Enabled))),
		paint(drift.StatusToDisable, fmt.Sprintf("%d to disable", len(rep.Disabled))),
		paint(drift.StatusNotFound, fmt.Sprintf("%d not found", len(rep.NotFound))),
		paint(drift.StatusSatisfied, fmt.Sprintf("%d satisfied", len(rep.Satisfied))))
}

func bulkLine(res *kibana.BulkResult, okPrefix, warnPrefix string) string {
	verb := "Enabled"
	if res.Action == kibana.ActionDisable {
		verb = "Disabled"
	}
	prefix := okPrefix
	if res.Failed > 0 || res.Succeeded < res.Requested {
		prefix = warnPrefix
	}
	line := fmt.Sprintf("%s %s %d of %d rule(s)", prefix, verb, res.Succeeded, res.Requested)
	if res.Failed > 0 {
		line += fmt.Sprintf(", %d failed", res.Failed)
	}
	if res.Skipped > 0 {
		line += fmt.Sprintf(", %d skipped", res.Skipped)
	}
	return line
}
