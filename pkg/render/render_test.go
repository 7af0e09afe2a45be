package render

import (
	"strings"
	"testing"
)

func TestMarkdownPassthroughWithoutRenderer(t *testing.T) {
	m := &Markdown{}
	input := "# Heading\n\nplain **bold** text"
	if got := m.Render(input); got != input {
		t.Errorf("Render() = %q, want passthrough", got)
	}
}

func TestMarkdownRenders(t *testing.T) {
	m := NewMarkdown(Terminal{IsTTY: true, SupportsColor: true, Width: 60})
	out := m.Render("# Heading\n\nsome text")
	if out == "" {
		t.Fatal("Render() returned empty output")
	}
	if !strings.Contains(out, "Heading") {
		t.Errorf("Render() output missing heading text: %q", out)
	}
}

func TestNewMarkdownNoColor(t *testing.T) {
	m := NewMarkdown(Terminal{IsTTY: true, SupportsColor: false, Width: 60})
	out := m.Render("# Heading\n\nsome **bold** text")
	if !strings.Contains(out, "Heading") {
		t.Fatalf("Render() output missing heading text: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("monochrome rendering emitted ANSI escapes: %q", out)
	}
}

func TestNewMarkdownNarrowTerminal(t *testing.T) {
	// Should not panic or fail on tiny widths.
	m := NewMarkdown(Terminal{IsTTY: true, SupportsColor: true, Width: 20})
	if out := m.Render("hello"); out == "" {
		t.Error("Render() returned empty output for narrow terminal")
	}
}

func TestSpinnerInertWithoutTTY(t *testing.T) {
	sp := StartSpinner(Terminal{IsTTY: false}, "waiting")
	if sp.spinner != nil {
		t.Error("spinner should be inert without a TTY")
	}
	sp.Stop()
	sp.Stop() // double stop must be safe
}

func TestStylesKeepText(t *testing.T) {
	if got := Error("boom"); !strings.Contains(got, "boom") {
		t.Errorf("Error() lost its text: %q", got)
	}
	if got := Muted("fine"); !strings.Contains(got, "fine") {
		t.Errorf("Muted() lost its text: %q", got)
	}
}
