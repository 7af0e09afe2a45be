package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// ServerConfig describes one external tool server process.
type ServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// serversFile mirrors the descriptor file layout.
type serversFile struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// LoadServerConfigs reads the server descriptor file. A missing file means
// no servers are configured.
func LoadServerConfigs(path string) (map[string]ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading server config: %w", err)
	}

	var parsed serversFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return parsed.MCPServers, nil
}

// resolveCommand locates the server executable. Descriptors usually name
// bare commands like npx, so PATH lookup is the norm.
func resolveCommand(command string) (string, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("command %q not found: %w", command, err)
	}
	return path, nil
}
