package prompts

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var nameValidator = validator.New()

// ValidateName rejects preset names that cannot serve as file names and
// CLI flags. Names must start with an alphanumeric and may contain
// alphanumerics, hyphens, and underscores.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty preset name")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("preset name %q must not contain path separators", name)
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return fmt.Errorf("preset name %q must start with an alphanumeric", name)
	}
	trimmed := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return -1
		}
		return r
	}, name)
	if err := nameValidator.Var(trimmed, "required,alphanum"); err != nil {
		return fmt.Errorf("preset name %q contains invalid characters", name)
	}
	return nil
}

// splitEditorCommand parses an EDITOR value into argv without invoking a
// shell. Quotes and backslash escapes are honored.
func splitEditorCommand(input string) ([]string, error) {
	var (
		args     []string
		current  strings.Builder
		inSingle bool
		inDouble bool
		escaped  bool
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		args = append(args, current.String())
		current.Reset()
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case (r == ' ' || r == '\t') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape in editor command")
	}
	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quote in editor command")
	}
	flush()

	if len(args) == 0 {
		return nil, fmt.Errorf("empty editor command")
	}
	return args, nil
}
