// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
)

var configPath string

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "musqctl",
		Short: "Operator CLI for musq-backed SQLite databases",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "musqctl.toml", "Path to the musqctl TOML config file")

	cmd.AddCommand(runExecCommand())
	cmd.AddCommand(runMetricsCommand())
	cmd.AddCommand(runOptimizeCommand())

	return cmd
}
