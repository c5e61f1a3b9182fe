package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scurry.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env.Address != "127.0.0.1:5555" {
		t.Fatalf("address = %q", cfg.Env.Address)
	}
	if cfg.Agent.RestHPPercent != 80 || cfg.Agent.RingRadiusMax != 6 {
		t.Fatalf("agent defaults = %+v", cfg.Agent)
	}
	if cfg.Runner.StepLimit != 20000 {
		t.Fatalf("step limit = %d", cfg.Runner.StepLimit)
	}
	if cfg.Database.DSN != "" {
		t.Fatal("persistence enabled by default")
	}
	if cfg.Database.PingTimeout != 5*time.Second {
		t.Fatalf("ping timeout = %v", cfg.Database.PingTimeout)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scurry.toml")
	content := `
[env]
address = "10.0.0.7:6000"
read_timeout = "90s"

[agent]
low_hitpoints = 12

[runner]
episodes = 50
workers = 8
episode_timeout = "3m"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env.Address != "10.0.0.7:6000" {
		t.Fatalf("address = %q", cfg.Env.Address)
	}
	if cfg.Env.ReadTimeout != 90*time.Second {
		t.Fatalf("read timeout = %v", cfg.Env.ReadTimeout)
	}
	if cfg.Env.DialTimeout != 10*time.Second {
		t.Fatalf("unset field lost its default: %v", cfg.Env.DialTimeout)
	}
	if cfg.Agent.LowHitpoints != 12 || cfg.Agent.HealthyMelee != 8 {
		t.Fatalf("agent = %+v", cfg.Agent)
	}
	if cfg.Runner.Episodes != 50 || cfg.Runner.Workers != 8 {
		t.Fatalf("runner = %+v", cfg.Runner)
	}
	if cfg.Runner.EpisodeTimeout != 3*time.Minute {
		t.Fatalf("episode timeout = %v", cfg.Runner.EpisodeTimeout)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scurry.toml")
	if err := os.WriteFile(path, []byte("[env\naddress ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed toml accepted")
	}
}
