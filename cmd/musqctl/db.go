// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cortesi/musq"
	"github.com/cortesi/musq/internal/config"
)

// openFromConfig builds a Connection against cfg's database path, applying
// its log level/rotation settings the same way internal/database.DB wires
// zerolog and lumberjack together for the write connection.
func openFromConfig(cfg *config.Config) (*musq.Connection, error) {
	logger := buildLogger(cfg)
	return newMusq(cfg, &logger).Open(context.Background())
}

// newMusq builds a Musq builder from cfg's pool sizing, logging through
// logger.
func newMusq(cfg *config.Config, logger *zerolog.Logger) *musq.Musq {
	return musq.New(cfg.GetDatabasePath()).
		PoolMaxConnections(cfg.PoolMaxConnections).
		Logger(logger, musq.DefaultLogSettings())
}

func buildLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.LogPath == "" {
		return log.Logger.Level(level)
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.New(configPath)
	if err != nil {
		return nil, fmt.Errorf("musqctl: loading config: %w", err)
	}
	return cfg, nil
}
