// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

// Package config loads musqctl's TOML configuration file via viper, with
// every key overridable through a MUSQ__-prefixed environment variable.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is musqctl's process-level configuration: where the database
// lives, how verbosely and where it logs, and the pool sizing the commands
// open the database with.
type Config struct {
	v *viper.Viper

	path         string
	databasePath string

	LogLevel      string
	LogPath       string
	LogMaxSize    int
	LogMaxBackups int

	PoolMaxConnections int
	MetricsAddr        string
}

// New loads configPath (a TOML file) into a Config, applying defaults for
// any key left unset and allowing every key to be overridden by a
// MUSQ__-prefixed environment variable (e.g. MUSQ__DATABASE_PATH).
func New(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.SetDefault("logLevel", "INFO")
	v.SetDefault("logMaxSize", 50)
	v.SetDefault("logMaxBackups", 3)
	v.SetDefault("poolMaxConnections", 10)
	v.SetDefault("metricsAddr", "")

	_ = v.BindEnv("databasePath", "MUSQ__DATABASE_PATH")
	_ = v.BindEnv("logLevel", "MUSQ__LOG_LEVEL")
	_ = v.BindEnv("logPath", "MUSQ__LOG_PATH")
	_ = v.BindEnv("logMaxSize", "MUSQ__LOG_MAX_SIZE")
	_ = v.BindEnv("logMaxBackups", "MUSQ__LOG_MAX_BACKUPS")
	_ = v.BindEnv("poolMaxConnections", "MUSQ__POOL_MAX_CONNECTIONS")
	_ = v.BindEnv("metricsAddr", "MUSQ__METRICS_ADDR")

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	dbPath := v.GetString("databasePath")
	if dbPath == "" {
		dbPath = filepath.Join(filepath.Dir(configPath), "musq.db")
	}

	return &Config{
		v:            v,
		path:         configPath,
		databasePath: dbPath,

		LogLevel:      v.GetString("logLevel"),
		LogPath:       v.GetString("logPath"),
		LogMaxSize:    v.GetInt("logMaxSize"),
		LogMaxBackups: v.GetInt("logMaxBackups"),

		PoolMaxConnections: v.GetInt("poolMaxConnections"),
		MetricsAddr:        v.GetString("metricsAddr"),
	}, nil
}

// GetDatabasePath returns the resolved database file path: the configured
// (or environment-overridden) databasePath, or musq.db next to the config
// file when unset.
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}
