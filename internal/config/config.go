package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Values come from an optional YAML
// file with environment variables layered on top, so a bare `PORT=9090`
// works without any file present.
type Config struct {
	Port                string `yaml:"port"`
	DevMode             bool   `yaml:"dev_mode"`
	Standalone          bool   `yaml:"standalone"`
	TimeBudget          int    `yaml:"time_budget"`
	FacilitatorPassword string `yaml:"facilitator_password"`
	NATSURL             string `yaml:"nats_url"`
	SnapshotDir         string `yaml:"snapshot_dir"`
}

func Default() Config {
	return Config{
		Port:        "8080",
		TimeBudget:  1800,
		NATSURL:     "nats://localhost:4222",
		SnapshotDir: defaultSnapshotDir(),
	}
}

func defaultSnapshotDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return os.TempDir()
}

// Load reads the YAML file at path (skipped when path is empty or the
// file is missing) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DevMode = getEnvBool("DEV_MODE", c.DevMode)
	c.Standalone = getEnvBool("STANDALONE", c.Standalone)
	c.TimeBudget = getEnvInt("TIME_BUDGET", c.TimeBudget)
	c.FacilitatorPassword = getEnv("FACILITATOR_PASSWORD", c.FacilitatorPassword)
	c.NATSURL = getEnv("NATS_URL", c.NATSURL)
	c.SnapshotDir = getEnv("SNAPSHOT_DIR", c.SnapshotDir)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
