// Package config provides YAML-based configuration for the filedrop server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Widget   WidgetConfig   `yaml:"widget"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCors"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// WidgetConfig controls the simulated upload timing.
type WidgetConfig struct {
	TickIntervalMs  int `yaml:"tickIntervalMs"`
	CompleteDelayMs int `yaml:"completeDelayMs"`
}

// AdvancedConfig contains tuning options.
type AdvancedConfig struct {
	EnableRequestLogging bool `yaml:"enableRequestLogging"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "512M",
		},
		Widget: WidgetConfig{
			TickIntervalMs:  200,
			CompleteDelayMs: 2000,
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging: true,
		},
	}
}

// Load reads the YAML config at path, falling back to defaults when the file
// does not exist. Environment variables override file values afterwards.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Widget.TickIntervalMs <= 0 {
		cfg.Widget.TickIntervalMs = 200
	}
	if cfg.Widget.CompleteDelayMs <= 0 {
		cfg.Widget.CompleteDelayMs = 2000
	}

	return cfg, nil
}

// applyEnv overrides config values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("FILEDROP_BIND"); v != "" {
		c.Server.BindAddress = v
	}
	if v := os.Getenv("FILEDROP_ALLOW_ORIGINS"); v != "" {
		c.Server.AllowOrigins = v
	}
}

// GetServerAddr returns the host:port the server listens on.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// TickInterval returns the widget tick period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Widget.TickIntervalMs) * time.Millisecond
}

// CompleteDelay returns the forced-completion delay.
func (c *Config) CompleteDelay() time.Duration {
	return time.Duration(c.Widget.CompleteDelayMs) * time.Millisecond
}
