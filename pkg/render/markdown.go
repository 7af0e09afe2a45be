package render

import (
	"github.com/charmbracelet/glamour"
)

// defaultWrap is the wrap column when the terminal width is unknown.
const defaultWrap = 80

// Markdown renders model responses for terminal display.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown builds a renderer sized to the terminal. Terminals without
// color support (NO_COLOR) get the monochrome style. Construction failures
// leave the renderer nil and Render passes text through.
func NewMarkdown(t Terminal) *Markdown {
	wrap := defaultWrap
	if t.Width > 0 && t.Width < wrap {
		wrap = t.Width
	}

	style := glamour.WithAutoStyle()
	if !t.SupportsColor {
		style = glamour.WithStylePath("notty")
	}

	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		renderer = nil
	}
	return &Markdown{renderer: renderer}
}

// Render formats Markdown content, returning the original text when
// rendering is unavailable or fails.
func (m *Markdown) Render(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
