package config

import (
	"fmt"
	"strings"
)

// Keys understood by the config file and --set-config.
const (
	KeyDefaultLLM         = "DEFAULT_LLM"
	KeyMarkdownFormatting = "MARKDOWN_FORMATTING"
	KeyEnableMCPTools     = "ENABLE_MCP_TOOLS"
)

// ValueType is the expected type of a configuration value.
type ValueType int

const (
	TypeString ValueType = iota
	TypeBool
)

// String returns the string representation of ValueType.
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// KeySchema defines a known configuration key with its type and default.
type KeySchema struct {
	Key         string
	Type        ValueType
	Description string
	Default     string
}

// KnownKeys is the registry of every accepted configuration key.
var KnownKeys = map[string]KeySchema{
	KeyDefaultLLM: {
		Key:         KeyDefaultLLM,
		Type:        TypeString,
		Description: "Model used when --model is not given",
		Default:     "",
	},
	KeyMarkdownFormatting: {
		Key:         KeyMarkdownFormatting,
		Type:        TypeBool,
		Description: "Render responses as Markdown in the terminal",
		Default:     "true",
	},
	KeyEnableMCPTools: {
		Key:         KeyEnableMCPTools,
		Type:        TypeBool,
		Description: "Forward MCP server tools to the model",
		Default:     "false",
	},
}

// KeyOrder fixes the rendering order for --show-config.
var KeyOrder = []string{KeyDefaultLLM, KeyMarkdownFormatting, KeyEnableMCPTools}

// ErrUnknownKey is returned for keys outside the registry.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known key.
func GetKeySchema(key string) (KeySchema, error) {
	schema, ok := KnownKeys[key]
	if !ok {
		return KeySchema{}, ErrUnknownKey{Key: key}
	}
	return schema, nil
}

// ParseBool interprets the truthy spellings accepted in the config file.
// Anything outside the set reads as false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1", "on":
		return true
	}
	return false
}

// ValidateValue checks a raw value against the schema for key and returns
// the canonical spelling to persist.
func ValidateValue(key, value string) (string, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return "", err
	}
	switch schema.Type {
	case TypeBool:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "yes", "1", "on":
			return "true", nil
		case "false", "no", "0", "off":
			return "false", nil
		}
		return "", fmt.Errorf("invalid boolean for %s: %q (expected true/yes/1/on or false/no/0/off)", key, value)
	case TypeString:
		return strings.TrimSpace(value), nil
	default:
		return "", fmt.Errorf("unsupported type: %v", schema.Type)
	}
}
