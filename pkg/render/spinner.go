package render

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows activity on stderr while waiting for the model. On
// non-interactive output it is inert.
type Spinner struct {
	spinner *spinner.Spinner
}

// StartSpinner begins the animation when stdout is a TTY. The spinner
// writes to stderr so it never mixes into the response.
func StartSpinner(t Terminal, message string) *Spinner {
	if !t.IsTTY {
		return &Spinner{}
	}

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Writer = os.Stderr
	sp.Suffix = " " + message
	sp.Start()
	return &Spinner{spinner: sp}
}

// Stop halts the animation. Safe to call more than once.
func (s *Spinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
		s.spinner = nil
	}
}
