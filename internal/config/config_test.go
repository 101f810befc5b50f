package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned %v, want nil", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.TimeBudget != 1800 {
		t.Fatalf("TimeBudget = %d, want 1800", cfg.TimeBudget)
	}
	if cfg.DevMode {
		t.Fatal("DevMode = true, want false")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("port: \"9090\"\ndev_mode: true\nfacilitator_password: Blitzen\ntime_budget: 600\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned %v, want nil", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "9090")
	}
	if !cfg.DevMode {
		t.Fatal("DevMode = false, want true")
	}
	if cfg.FacilitatorPassword != "Blitzen" {
		t.Fatalf("FacilitatorPassword = %q, want %q", cfg.FacilitatorPassword, "Blitzen")
	}
	if cfg.TimeBudget != 600 {
		t.Fatalf("TimeBudget = %d, want 600", cfg.TimeBudget)
	}
	// Unset fields keep defaults.
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Fatalf("NATSURL = %q, want default", cfg.NATSURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("STANDALONE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned %v, want nil", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "7070")
	}
	if !cfg.Standalone {
		t.Fatal("Standalone = false, want true")
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load returned %v, want nil for missing file", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want default", cfg.Port)
	}
}

func TestMalformedEnvFallsBack(t *testing.T) {
	t.Setenv("TIME_BUDGET", "half an hour")
	t.Setenv("DEV_MODE", "yep")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned %v, want nil", err)
	}
	if cfg.TimeBudget != 1800 {
		t.Fatalf("TimeBudget = %d, want 1800", cfg.TimeBudget)
	}
	if cfg.DevMode {
		t.Fatal("DevMode = true, want false")
	}
}
