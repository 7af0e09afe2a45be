package conversation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// StaleChoice represents the user's decision for a stale conversation.
type StaleChoice int

const (
	// ChoiceContinue keeps the history and proceeds.
	ChoiceContinue StaleChoice = iota
	// ChoiceRestart resets the history and starts a fresh session.
	ChoiceRestart
	// ChoiceAbort cancels without calling the model.
	ChoiceAbort
)

// String returns the string representation of a StaleChoice.
func (c StaleChoice) String() string {
	switch c {
	case ChoiceContinue:
		return "Continue"
	case ChoiceRestart:
		return "Restart"
	case ChoiceAbort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// PromptStaleChoice asks how to handle a stale conversation. The answer is
// read from the controlling terminal because stdin usually carries piped
// context. With no terminal available the run aborts, unless autoYes is
// set, which continues without asking.
func PromptStaleChoice(rec *Record, autoYes bool, out io.Writer) (StaleChoice, error) {
	if autoYes {
		return ChoiceContinue, nil
	}
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return ChoiceAbort, fmt.Errorf("conversation is stale and no terminal is available; use --start-conversation, --no-conversation, or PIPAI_YES=1")
	}
	defer tty.Close()
	return readStaleChoice(rec, tty, out)
}

// readStaleChoice prompts on out and reads one line from in.
func readStaleChoice(rec *Record, in io.Reader, out io.Writer) (StaleChoice, error) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Conversation is stale (last activity: %s).\n",
		rec.LastMessageAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "How would you like to proceed?")
	fmt.Fprintln(out, "  [C] Continue - Keep the conversation history and continue")
	fmt.Fprintln(out, "  [R] Restart - Reset the history and start a fresh conversation")
	fmt.Fprintln(out, "  [A] Abort - Cancel without calling the model")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Choice [C/R/A] (default: C): ")

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ChoiceAbort, fmt.Errorf("reading input: %w", err)
	}

	input = strings.TrimSpace(strings.ToUpper(input))
	if input == "" {
		input = "C" // Default
	}

	switch input {
	case "C", "CONTINUE":
		return ChoiceContinue, nil
	case "R", "RESTART", "RESET":
		return ChoiceRestart, nil
	case "A", "ABORT", "QUIT", "EXIT", "Q":
		return ChoiceAbort, nil
	default:
		fmt.Fprintf(out, "Unknown option '%s', defaulting to Continue\n", input)
		return ChoiceContinue, nil
	}
}

// Resolve applies the user's stale-session choice to the store.
// Continue returns the record unchanged, Restart resets it, Abort returns
// an error that ends the invocation.
func (s *Store) Resolve(choice StaleChoice) (*Record, error) {
	switch choice {
	case ChoiceContinue:
		return s.Load(), nil
	case ChoiceRestart:
		return s.Start()
	case ChoiceAbort:
		return nil, fmt.Errorf("aborted by user")
	default:
		return nil, fmt.Errorf("unknown stale choice: %v", choice)
	}
}
