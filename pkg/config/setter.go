package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Set validates key=value against the schema and persists it in the config
// file. Comments, blank lines, and unrelated assignments are preserved; the
// first matching assignment is rewritten in place and later duplicates are
// dropped.
func Set(paths Paths, key, value string) error {
	canonical, err := ValidateValue(key, value)
	if err != nil {
		return err
	}

	lines, err := readConfigLines(paths.ConfigFile)
	if err != nil {
		return err
	}

	out := make([]string, 0, len(lines)+1)
	replaced := false
	for _, line := range lines {
		if k, ok := parseAssignment(line); ok && k == key {
			if replaced {
				continue
			}
			out = append(out, key+"="+canonical)
			replaced = true
			continue
		}
		out = append(out, line)
	}
	if !replaced {
		out = append(out, key+"="+canonical)
	}

	content := strings.Join(out, "\n") + "\n"
	return writeAtomically(paths.ConfigFile, []byte(content))
}

// ParseAssignmentArg splits a --set-config argument of the form KEY=VALUE.
func ParseAssignmentArg(arg string) (key, value string, err error) {
	idx := strings.Index(arg, "=")
	if idx <= 0 {
		return "", "", fmt.Errorf("invalid assignment %q (expected KEY=VALUE)", arg)
	}
	return strings.TrimSpace(arg[:idx]), arg[idx+1:], nil
}

// readConfigLines returns the config file split into lines without the
// trailing newline. A missing file reads as empty.
func readConfigLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// parseAssignment extracts the key from a KEY=VALUE line. Comments and
// blank lines are not assignments.
func parseAssignment(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	idx := strings.Index(trimmed, "=")
	if idx <= 0 {
		return "", false
	}
	return strings.TrimSpace(trimmed[:idx]), true
}

// writeAtomically writes content through a temp file and rename so a
// concurrent read never sees a partial file.
func writeAtomically(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmpFile, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()
	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	tmpPath = ""
	return nil
}
