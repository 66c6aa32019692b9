// Package config loads the shell's own preference file, never the command
// history it built on top of.
//
// Grounded on the teacher's loadConfig (llm.go): read a YAML file under a
// dotfile directory in $HOME, create that directory on first run, and never
// fail the program over a missing or unreadable config — the same
// "don't fail completely if we can't get home dir" posture is kept here,
// because a shell that refuses to start over a bad preferences file would
// be far worse than one that silently falls back to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds shell preferences. It is distinct from the in-memory command
// history ring (spec §6: "Persisted state: None" for the command line
// itself) — this file only ever holds editor/launcher preferences.
type Config struct {
	// HistoryCapacity overrides the history ring's capacity (default: the
	// package constant in internal/history). Zero means "use the default".
	HistoryCapacity int `yaml:"history_capacity,omitempty"`
	// SearchPrompt overrides the reverse-search overlay's leading label
	// (default "reverse-search").
	SearchPrompt string `yaml:"search_prompt,omitempty"`
	// MirrorKillToClipboard, when true, copies line-kill text to the
	// system clipboard via github.com/atotto/clipboard.
	MirrorKillToClipboard bool `yaml:"mirror_kill_to_clipboard,omitempty"`
}

// Dir returns the shell's config directory, creating it if it does not
// already exist. Mirrors the teacher's configDir/MkdirAll dance, without
// the teacher's legacy dotfile fallback path (no prior rmsh config ever
// existed under a different name).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "rmsh")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads the shell's config.yaml, returning a zero-value Config (all
// defaults) if the home directory can't be found, the directory can't be
// created, or no config file exists yet — exactly the teacher's
// never-fail-the-program posture for a missing or absent config file. Only
// a config file that exists but fails to parse is reported as an error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return &Config{}, nil
	}
	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return &Config{}, nil
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
