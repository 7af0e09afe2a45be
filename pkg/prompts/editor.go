package prompts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const defaultEditor = "vim"

const createTemplate = `summary = "%s"

prompt = """

"""
`

// Create scaffolds a new preset file and opens it in the user's editor.
// It refuses to overwrite an existing preset.
func Create(dir, name string, logger *zap.SugaredLogger) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating prompts dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("prompt %q already exists", name)
	}

	scaffold := fmt.Sprintf(createTemplate, defaultSummary(name))
	if err := os.WriteFile(path, []byte(scaffold), 0o644); err != nil {
		return fmt.Errorf("writing prompt file: %w", err)
	}
	logger.Infof("created prompt file %s", path)

	if err := openInEditor(path); err != nil {
		return err
	}
	return validatePresetTOML(path, name)
}

// Edit opens an existing preset in the user's editor and re-validates it.
func Edit(dir, name string, logger *zap.SugaredLogger) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("prompt %q does not exist", name)
	}

	if err := openInEditor(path); err != nil {
		return err
	}
	logger.Infof("edited prompt file %s", path)
	return validatePresetTOML(path, name)
}

// Delete removes a preset file.
func Delete(dir, name string, logger *zap.SugaredLogger) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("prompt %q does not exist", name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting prompt %q: %w", name, err)
	}
	logger.Infof("deleted prompt file %s", path)
	return nil
}

// openInEditor runs $EDITOR (default vim) on path, attached to the
// caller's terminal.
func openInEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}
	argv, err := splitEditorCommand(editor)
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q failed: %w", editor, err)
	}
	return nil
}

// validatePresetTOML checks that an edited file still parses as TOML. The
// file is kept either way so the user can re-edit it.
func validatePresetTOML(path, name string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading prompt file: %w", err)
	}
	var pf presetFile
	if err := toml.Unmarshal(content, &pf); err != nil {
		return fmt.Errorf("prompt %q is not valid TOML: %w", name, err)
	}
	return nil
}
