package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// Settings is the effective configuration after merging defaults, the
// config file, and PIPAI_* environment variables.
type Settings struct {
	DefaultModel string `validate:"omitempty,printascii"`
	Markdown     bool
	MCPTools     bool

	// AutoYes skips interactive confirmations (PIPAI_YES in the
	// environment, not a config file key).
	AutoYes bool
}

// rawSettings mirrors the file keys before boolean interpretation. Truthy
// spellings like "yes" and "on" are valid in the file, so booleans arrive
// as strings.
type rawSettings struct {
	DefaultLLM         string `koanf:"DEFAULT_LLM"`
	MarkdownFormatting string `koanf:"MARKDOWN_FORMATTING"`
	EnableMCPTools     string `koanf:"ENABLE_MCP_TOOLS"`
}

// Load merges configuration sources for the given tree.
// Priority: environment variables > config file > defaults.
func Load(paths Paths, logger *zap.SugaredLogger) (*Settings, error) {
	k := koanf.New(".")

	for key, schema := range KnownKeys {
		k.Set(key, schema.Default)
	}

	if _, err := os.Stat(paths.ConfigFile); err == nil {
		if err := k.Load(file.Provider(paths.ConfigFile), dotenv.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Environment overrides: PIPAI_DEFAULT_LLM -> DEFAULT_LLM.
	if err := k.Load(env.Provider("PIPAI_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	for _, key := range k.Keys() {
		if _, ok := KnownKeys[key]; !ok {
			logger.Warnf("ignoring unknown config key %q", key)
			k.Delete(key)
		}
	}

	var raw rawSettings
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg := &Settings{
		DefaultModel: strings.TrimSpace(raw.DefaultLLM),
		Markdown:     ParseBool(raw.MarkdownFormatting),
		MCPTools:     ParseBool(raw.EnableMCPTools),
	}

	if os.Getenv("PIPAI_YES") != "" {
		cfg.AutoYes = true
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envTransform converts environment variable names to config keys.
// Example: PIPAI_DEFAULT_LLM -> DEFAULT_LLM. PIPAI_YES is a process
// flag, not a config key; blanking the key drops the variable.
func envTransform(s string) string {
	key := strings.TrimPrefix(s, "PIPAI_")
	if key == "YES" {
		return ""
	}
	return key
}

// Value returns the effective value for a known key, rendered the way the
// config file spells it.
func (s *Settings) Value(key string) (string, error) {
	switch key {
	case KeyDefaultLLM:
		return s.DefaultModel, nil
	case KeyMarkdownFormatting:
		return strconv.FormatBool(s.Markdown), nil
	case KeyEnableMCPTools:
		return strconv.FormatBool(s.MCPTools), nil
	default:
		return "", ErrUnknownKey{Key: key}
	}
}

// Show renders the effective configuration as KEY=VALUE lines in schema
// order, ready for --show-config.
func (s *Settings) Show() string {
	var b strings.Builder
	for _, key := range KeyOrder {
		v, err := s.Value(key)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", key, v)
	}
	return b.String()
}
