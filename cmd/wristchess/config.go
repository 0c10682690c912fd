package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig is the service configuration. Values load from an optional
// YAML file first, then environment variables override.
type AppConfig struct {
	Port     string `yaml:"port"`
	DeviceID string `yaml:"device_id"`
	LogLevel string `yaml:"log_level"`

	EngineURL string `yaml:"engine_url"`

	Postgres bool `yaml:"postgres"`

	NATS    bool   `yaml:"nats"`
	NATSURL string `yaml:"nats_url"`
}

func defaultConfig() AppConfig {
	return AppConfig{
		Port:     "8080",
		DeviceID: "default",
		LogLevel: "info",
		NATSURL:  "nats://localhost:4222",
	}
}

// loadConfig reads the YAML file when present and applies env overrides.
func loadConfig(path string) (AppConfig, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DeviceID = getEnv("DEVICE_ID", cfg.DeviceID)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EngineURL = getEnv("ENGINE_URL", cfg.EngineURL)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	if v := os.Getenv("POSTGRES_ENABLED"); v != "" {
		cfg.Postgres = v == "true" || v == "1"
	}
	if v := os.Getenv("NATS_ENABLED"); v != "" {
		cfg.NATS = v == "true" || v == "1"
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
