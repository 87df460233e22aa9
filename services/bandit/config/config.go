// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the banditd server configuration.
//
// # Description
//
//	Configuration is merged with priority: env > file > defaults. The
//	config file is YAML and optional; a missing file silently falls back
//	to defaults so the server can run with zero setup.
//
// # Inputs
//
//	Optional YAML file path plus BANDITD_* environment variables.
//
// # Outputs
//
//	A validated Config consumed by cmd/banditd.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the banditd server.
type Config struct {
	// Host is the listen address. Empty binds all interfaces.
	Host string `yaml:"host"`
	// Port is the HTTP listen port.
	Port int `yaml:"port"`
	// StorageDir is the badger data directory.
	StorageDir string `yaml:"storage_dir"`
	// InMemory runs the store without disk persistence. State is lost
	// on restart; intended for tests and local experimentation.
	InMemory bool `yaml:"in_memory"`
	// SyncWrites forces an fsync on every badger commit.
	SyncWrites bool `yaml:"sync_writes"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// OTLPEndpoint enables OTLP trace export when non-empty.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Host:            "",
		Port:            8000,
		StorageDir:      "./data/bandit",
		InMemory:        false,
		SyncWrites:      true,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load merges configuration with priority: env > file > defaults.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for nonsense values.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if !c.InMemory && c.StorageDir == "" {
		return fmt.Errorf("storage_dir required unless in_memory is set")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("BANDITD_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("BANDITD_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Port = i
		}
	}
	if v := os.Getenv("BANDITD_STORAGE_DIR"); v != "" {
		cfg.StorageDir = v
	}
	if v := os.Getenv("BANDITD_IN_MEMORY"); v != "" {
		cfg.InMemory = v == "true" || v == "1"
	}
	if v := os.Getenv("BANDITD_SYNC_WRITES"); v != "" {
		cfg.SyncWrites = v == "true" || v == "1"
	}
	if v := os.Getenv("BANDITD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BANDITD_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("BANDITD_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	// Standard OTel env var, honored when the banditd-specific one is absent.
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
}
