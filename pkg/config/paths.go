package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths locates the per-user configuration tree.
type Paths struct {
	Root             string
	ConfigFile       string
	PromptsDir       string
	ConversationFile string
	MCPServersFile   string
}

// DefaultPaths resolves the tree under the user config directory
// (XDG_CONFIG_HOME or ~/.config on Linux).
func DefaultPaths() (Paths, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolving user config dir: %w", err)
	}
	return PathsAt(filepath.Join(base, "pipai")), nil
}

// PathsAt builds the path set rooted at dir. Tests construct trees in
// temporary directories through this.
func PathsAt(dir string) Paths {
	return Paths{
		Root:             dir,
		ConfigFile:       filepath.Join(dir, "config"),
		PromptsDir:       filepath.Join(dir, "prompts"),
		ConversationFile: filepath.Join(dir, "conversation.json"),
		MCPServersFile:   filepath.Join(dir, "mcp_servers.json"),
	}
}

const defaultConfigFile = `# pipai configuration file
# Format: KEY=VALUE
# Available keys:
# DEFAULT_LLM: Default LLM model to use
# MARKDOWN_FORMATTING: Enable markdown formatting for output (true/false)
# ENABLE_MCP_TOOLS: Forward MCP server tools to the model (true/false)
`

// Ensure creates the configuration tree and seeds a commented config file
// on first run. Existing files are left untouched.
func (p Paths) Ensure() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(p.PromptsDir, 0o755); err != nil {
		return fmt.Errorf("creating prompts dir: %w", err)
	}
	if _, err := os.Stat(p.ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(p.ConfigFile, []byte(defaultConfigFile), 0o644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}
	return nil
}
