package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/comp/internal/errors"
	"github.com/vango-dev/comp/pkg/dom"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Attributes.Key != dom.DefaultKeyAttr {
		t.Errorf("Attributes.Key = %q, want %q", cfg.Attributes.Key, dom.DefaultKeyAttr)
	}
	if cfg.Attributes.Component != dom.DefaultComponentAttr {
		t.Errorf("Attributes.Component = %q, want %q", cfg.Attributes.Component, dom.DefaultComponentAttr)
	}
	if cfg.Recorder.DB != DefaultDB {
		t.Errorf("Recorder.DB = %q, want %q", cfg.Recorder.DB, DefaultDB)
	}
	if cfg.SaveDelay() != 10*time.Second {
		t.Errorf("SaveDelay() = %v, want 10s", cfg.SaveDelay())
	}
	if cfg.LoadDelay() != 3*time.Second {
		t.Errorf("LoadDelay() = %v, want 3s", cfg.LoadDelay())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, errors.E402) {
		t.Fatalf("Load() error = %v, want E402", err)
	}

	configJSON := `{
  "attributes": {
    "key": "key",
    "checksum": "checksum"
  },
  "recorder": {
    "db": "data/rec.db",
    "saveDelay": "1s"
  },
  "logLevel": "debug"
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, JSONFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Attributes.Key != "key" {
		t.Errorf("Attributes.Key = %q, want %q", cfg.Attributes.Key, "key")
	}
	// Defaults fill the gaps
	if cfg.Attributes.Ignore != dom.DefaultIgnoreAttr {
		t.Errorf("Attributes.Ignore = %q, want %q", cfg.Attributes.Ignore, dom.DefaultIgnoreAttr)
	}
	if cfg.LoadDelay() != 3*time.Second {
		t.Errorf("LoadDelay() = %v, want 3s", cfg.LoadDelay())
	}
	if cfg.SaveDelay() != time.Second {
		t.Errorf("SaveDelay() = %v, want 1s", cfg.SaveDelay())
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	if got, want := cfg.DBPath(), filepath.Join(tmpDir, "data", "rec.db"); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `attributes:
  key: data-id
  disableIdentity: true
metrics:
  namespace: shop
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Fatal("Exists() = false, want true")
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Attributes.Key != "data-id" {
		t.Errorf("Attributes.Key = %q, want data-id", cfg.Attributes.Key)
	}
	if !cfg.Attributes.DisableIdentity {
		t.Error("DisableIdentity should be set")
	}
	if cfg.Metrics.Namespace != "shop" {
		t.Errorf("Metrics.Namespace = %q, want shop", cfg.Metrics.Namespace)
	}
	if len(cfg.ReconcileOptions()) != 4 {
		t.Errorf("ReconcileOptions() returned %d options, want 4", len(cfg.ReconcileOptions()))
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"json", "bad.json", `{"attributes": `},
		{"yaml", "bad.yaml", "attributes: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if !errors.HasCode(err, errors.E401) {
				t.Fatalf("LoadFile() error = %v, want E401", err)
			}
			if !strings.Contains(err.Error(), tt.file) {
				t.Errorf("error %q should name the file", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty key", func(c *Config) { c.Attributes.Key = "" }, "attributes.key"},
		{"duplicate", func(c *Config) { c.Attributes.Checksum = c.Attributes.Key }, "both use"},
		{"bad delay", func(c *Config) { c.Recorder.SaveDelay = "soon" }, "recorder.saveDelay"},
		{"negative delay", func(c *Config) { c.Recorder.LoadDelay = "-1s" }, "recorder.loadDelay"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "logLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.E401) {
				t.Fatalf("Validate() error = %v, want E401", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Attributes.Key = "k"
			cfg.Recorder.Session = "demo"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if loaded.Attributes.Key != "k" || loaded.Recorder.Session != "demo" {
				t.Errorf("loaded %+v, want key k and session demo", loaded)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}
