package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Preset is a named, reusable system-prompt template stored as a file.
type Preset struct {
	Name    string
	Summary string
	Prompt  string
	Path    string
}

// presetFile mirrors the TOML document in a preset file.
type presetFile struct {
	Summary string `toml:"summary"`
	Prompt  string `toml:"prompt"`
}

// Load reads every preset under dir, sorted by name. File names map to
// preset names with the extension stripped; two files sharing a name is an
// error. Files with names unusable as CLI flags are skipped with a warning.
func Load(dir string, logger *zap.SugaredLogger) ([]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading prompts dir: %w", err)
	}

	seen := make(map[string]string)
	var presets []*Preset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := ValidateName(name); err != nil {
			logger.Warnf("skipping preset file %q: %v", e.Name(), err)
			continue
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate preset name %q (%s and %s)", name, prev, e.Name())
		}
		seen[name] = e.Name()

		preset, err := parsePresetFile(filepath.Join(dir, e.Name()), name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		presets = append(presets, preset)
	}

	sort.Slice(presets, func(i, j int) bool {
		return strings.ToLower(presets[i].Name) < strings.ToLower(presets[j].Name)
	})
	return presets, nil
}

// parsePresetFile reads one preset. Files that fail TOML parsing are read
// as plain template text for backward compatibility.
func parsePresetFile(path, name string) (*Preset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pf presetFile
	if err := toml.Unmarshal(content, &pf); err != nil {
		return &Preset{
			Name:    name,
			Summary: defaultSummary(name),
			Prompt:  strings.TrimSpace(string(content)),
			Path:    path,
		}, nil
	}

	summary := strings.TrimSpace(pf.Summary)
	if summary == "" {
		summary = defaultSummary(name)
	}
	return &Preset{
		Name:    name,
		Summary: summary,
		Prompt:  strings.TrimSpace(pf.Prompt),
		Path:    path,
	}, nil
}

func defaultSummary(name string) string {
	return fmt.Sprintf("Use the pre-defined '%s' prompt", name)
}

// JoinTemplates combines the templates of the selected presets into one
// system prompt. Empty templates are dropped; selection order is preserved.
func JoinTemplates(selected []*Preset) string {
	parts := make([]string, 0, len(selected))
	for _, p := range selected {
		if p.Prompt == "" {
			continue
		}
		parts = append(parts, p.Prompt)
	}
	return strings.Join(parts, "\n\n")
}

// FormatList renders the --prompts listing.
func FormatList(presets []*Preset) string {
	if len(presets) == 0 {
		return "No prompt presets defined.\n"
	}
	var b strings.Builder
	b.WriteString("Available prompts:\n")
	for _, p := range presets {
		fmt.Fprintf(&b, "  - %s: %s\n", p.Name, p.Summary)
	}
	return b.String()
}
