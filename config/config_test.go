package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if c.LanguageServerAddr != ":2035" {
		t.Errorf("Expected default language server address :2035, got %s", c.LanguageServerAddr)
	}
	if c.Batch.Concurrency != 4 {
		t.Errorf("Expected default concurrency 4, got %d", c.Batch.Concurrency)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "z80hexer.json")
	contents := `{"playgroundAddr": "127.0.0.1:9000", "batch": {"outputDir": "out", "concurrency": 2}}`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if c.PlaygroundAddr != "127.0.0.1:9000" {
		t.Errorf("Expected playground address 127.0.0.1:9000, got %s", c.PlaygroundAddr)
	}
	if c.Batch.OutputDir != "out" || c.Batch.Concurrency != 2 {
		t.Errorf("Expected batch settings {out 2}, got %+v", c.Batch)
	}
	if c.LanguageID != "z80" {
		t.Errorf("Expected untouched fields to keep their defaults, got language id %q", c.LanguageID)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "z80hexer.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Errorf("Expected an error for malformed JSON")
	}
}
