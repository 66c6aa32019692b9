package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HistoryCapacity != 0 || cfg.SearchPrompt != "" || cfg.MirrorKillToClipboard {
		t.Fatalf("expected zero-value defaults, got %+v", cfg)
	}
}

func TestLoadParsesExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "rmsh")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	contents := "history_capacity: 128\nsearch_prompt: \"find\"\nmirror_kill_to_clipboard: true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HistoryCapacity != 128 {
		t.Errorf("HistoryCapacity = %d, want 128", cfg.HistoryCapacity)
	}
	if cfg.SearchPrompt != "find" {
		t.Errorf("SearchPrompt = %q, want %q", cfg.SearchPrompt, "find")
	}
	if !cfg.MirrorKillToClipboard {
		t.Errorf("MirrorKillToClipboard = false, want true")
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "rmsh")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("not: [valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for malformed config")
	}
}
