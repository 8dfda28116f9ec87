package qiconfig

import (
	"os"
	"testing"
)

func TestLoadAppliesEnvThenFlagOverrides(t *testing.T) {
	os.Setenv("QI_LISTEN", "0.0.0.0:1234")
	defer os.Unsetenv("QI_LISTEN")

	cfg, err := Load("", []string{"-log-level=debug"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "0.0.0.0:1234" {
		t.Fatalf("Listen = %q, want env override", cfg.Listen)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want flag override", cfg.LogLevel)
	}
	if cfg.ClientRequestCapacity != 64 {
		t.Fatalf("ClientRequestCapacity = %d, want default 64", cfg.ClientRequestCapacity)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/qi.yaml"
	if err := os.WriteFile(path, []byte("listen: 10.0.0.1:9999\ndebug_listen: 127.0.0.1:8080\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "10.0.0.1:9999" || cfg.DebugListen != "127.0.0.1:8080" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadMissingYAMLIsNotAnError(t *testing.T) {
	cfg, err := Load("/nonexistent/path/qi.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != Default().Listen {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
