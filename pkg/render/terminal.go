// Package render handles terminal output: Markdown formatting, the wait
// spinner, and TTY detection.
package render

import (
	"os"

	"golang.org/x/term"
)

// Terminal describes what the output device supports.
type Terminal struct {
	IsTTY         bool
	SupportsColor bool
	Width         int
}

// DetectTerminal inspects stdout. Piped output gets no colors, no spinner,
// and no Markdown layout.
func DetectTerminal() Terminal {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	noColor := os.Getenv("NO_COLOR") != ""

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	return Terminal{
		IsTTY:         isTTY,
		SupportsColor: isTTY && !noColor,
		Width:         width,
	}
}

// StdinIsTerminal reports whether stdin is interactive. When it is not,
// stdin carries piped context for the prompt.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
