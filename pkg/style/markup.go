package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type markupTag struct {
	pattern *regexp.Regexp
	style   lipgloss.Style
}

// MarkupParser renders [tag]text[/tag] markup used in command messages
type MarkupParser struct {
	tags map[string]markupTag
}

// NewMarkupParser creates a parser with the default tags
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{tags: map[string]markupTag{}}
	for tag, s := range map[string]lipgloss.Style{
		"title":   TitleStyle,
		"success": SuccessStyle,
		"error":   ErrorStyle,
		"warning": WarningStyle,
		"info":    InfoStyle,
		"code":    CodeStyle,
		"path":    PathStyle,
		"muted":   MutedStyle,
		"bold":    lipgloss.NewStyle().Bold(true),
		"italic":  lipgloss.NewStyle().Italic(true),

		"enable":  EnableStyle,
		"disable": DisableStyle,
		"missing": NotFoundStyle,
		"rule":    RuleIDStyle,
	} {
		p.AddStyle(tag, s)
	}
	return p
}

// Render replaces every tagged span with its styled text, repeating until
// no tag is left so nested tags resolve too.
func (p *MarkupParser) Render(text string) string {
	result := text
	for {
		before := result
		for _, t := range p.tags {
			result = t.pattern.ReplaceAllStringFunc(result, func(match string) string {
				sub := t.pattern.FindStringSubmatch(match)
				if len(sub) != 2 {
					return match
				}
				return t.style.Render(sub[1])
			})
		}
		if result == before {
			return result
		}
	}
}

// AddStyle registers or replaces a tag
func (p *MarkupParser) AddStyle(tag string, s lipgloss.Style) {
	quoted := regexp.QuoteMeta(tag)
	p.tags[tag] = markupTag{
		pattern: regexp.MustCompile(`\[` + quoted + `\](.*?)\[/` + quoted + `\]`),
		style:   s,
	}
}

// RenderTemplate substitutes {{key}} placeholders, then renders markup
func (p *MarkupParser) RenderTemplate(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return p.Render(result)
}

var defaultParser = NewMarkupParser()

// Render is a convenience function using the default parser
func Render(text string) string {
	return defaultParser.Render(text)
}

// RenderTemplate is a convenience function using the default parser
func RenderTemplate(template string, vars map[string]string) string {
	return defaultParser.RenderTemplate(template, vars)
}
