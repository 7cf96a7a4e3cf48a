package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Each color adapts to light and dark terminals.
var (
	accent    = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
	subtle    = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
	heading   = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	good      = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	bad       = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	caution   = lipgloss.AdaptiveColor{Light: "#FFC107", Dark: "#FFD54F"}
	info      = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}
	enabling  = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	disabling = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	missing   = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	ruleID    = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"}
)

var (
	TitleStyle   = lipgloss.NewStyle().Foreground(heading).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(subtle)
	SuccessStyle = lipgloss.NewStyle().Foreground(good).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(bad).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(caution).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(info)
	CodeStyle    = lipgloss.NewStyle().Foreground(accent)
	PathStyle    = lipgloss.NewStyle().Foreground(subtle).Italic(true)

	EnableStyle   = lipgloss.NewStyle().Foreground(enabling).Bold(true)
	DisableStyle  = lipgloss.NewStyle().Foreground(disabling).Bold(true)
	NotFoundStyle = lipgloss.NewStyle().Foreground(missing).Bold(true)
	RuleIDStyle   = lipgloss.NewStyle().Foreground(ruleID)
)

var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	WarningIndicator = WarningStyle.Render("!")
)

// Indent pads s by two spaces per level.
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}
