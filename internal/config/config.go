package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Env      EnvConfig      `toml:"env"`
	Agent    AgentConfig    `toml:"agent"`
	Runner   RunnerConfig   `toml:"runner"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// EnvConfig describes how to reach the external game interface.
type EnvConfig struct {
	Address      string        `toml:"address"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// AgentConfig holds decision-layer tuning knobs. These feed the score-field
// builder and the fight/rest behaviors; they are thresholds, not game rules.
type AgentConfig struct {
	LowHitpoints   int    `toml:"low_hitpoints"`    // at or below this, retreat rings apply
	HealthyMelee   int    `toml:"healthy_melee"`    // above this, melee engage bonus applies
	RingRadiusMax  int    `toml:"ring_radius_max"`  // hard cap on ring/ray radius
	RestHPPercent  int    `toml:"rest_hp_percent"`  // rest until hp reaches this % of max
	ScriptsDir     string `toml:"scripts_dir"`
	DataDir        string `toml:"data_dir"`
}

type RunnerConfig struct {
	Episodes       int           `toml:"episodes"`
	Workers        int           `toml:"workers"`
	StepLimit      int           `toml:"step_limit"`
	EpisodeTimeout time.Duration `toml:"episode_timeout"`
	Seed           int64         `toml:"seed"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables episode persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	PingTimeout     time.Duration `toml:"ping_timeout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env: EnvConfig{
			Address:      "127.0.0.1:5555",
			DialTimeout:  10 * time.Second,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Agent: AgentConfig{
			LowHitpoints:  8,
			HealthyMelee:  8,
			RingRadiusMax: 6,
			RestHPPercent: 80,
			ScriptsDir:    "scripts",
			DataDir:       "data/yaml",
		},
		Runner: RunnerConfig{
			Episodes:       1,
			Workers:        1,
			StepLimit:      20000,
			EpisodeTimeout: 12 * time.Minute,
			Seed:           0,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
