// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	JobPayload = "job-payload"
	AdminLogin = "admin-login"
)

//go:embed default.json
var defaultRegistry []byte

// Default returns the registry compiled into the binary.
func Default() (*RequestRegistry, error) {
	return parse(defaultRegistry)
}

func LoadRegistry(fs afero.Fs, path string) (*RequestRegistry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Load reads path when it is set and falls back to the compiled-in registry.
func Load(fs afero.Fs, path string) (*RequestRegistry, error) {
	if path == "" {
		return Default()
	}
	return LoadRegistry(fs, path)
}

// Save writes reg as indented JSON, creating parent directories.
func Save(fs afero.Fs, path string, reg *RequestRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	return afero.WriteFile(fs, path, append(data, '\n'), 0o644)
}

func parse(data []byte) (*RequestRegistry, error) {
	var reg RequestRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	seen := make(map[string]bool, len(reg.Requests))
	for _, r := range reg.Requests {
		if r.ID == "" {
			return nil, fmt.Errorf("registry entry without id")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate registry entry %q", r.ID)
		}
		seen[r.ID] = true
	}
	return &reg, nil
}
