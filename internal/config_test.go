package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Docs.Root = t.TempDir()
	return cfg
}

func TestConfig_DefaultsValid(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("defaults should pass: %v", err)
	}
}

func TestDocsConfig_MissingRoot(t *testing.T) {
	cfg := validConfig(t)
	cfg.Docs.Root = filepath.Join(t.TempDir(), "absent")
	err := cfg.Validate()
	if err == nil {
		t.Fatal("missing root should fail validation")
	}
	if !strings.Contains(err.Error(), "existing directory") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDocsConfig_RootIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.md")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := validConfig(t)
	cfg.Docs.Root = f
	if err := cfg.Validate(); err == nil {
		t.Fatal("file root should fail validation")
	}
}

func TestDocsConfig_EmptyRoot(t *testing.T) {
	cfg := validConfig(t)
	cfg.Docs.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty root should fail validation")
	}
}

func TestIndexConfig_Required(t *testing.T) {
	cfg := validConfig(t)
	cfg.Index.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty index path should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig(t)
		cfg.App.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 9000}
	if cfg.Address() != ":9000" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestWatchConfig_Debounce(t *testing.T) {
	cfg := validConfig(t)
	cfg.Watch.Debounce = time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("1ms debounce should fail validation")
	}

	cfg.Watch.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("debounce is ignored when watching is off: %v", err)
	}
}
