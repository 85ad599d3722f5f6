// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
)

func runOptimizeCommand() *cobra.Command {
	var analysisLimit int

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Open the database, run PRAGMA optimize, and close it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := buildLogger(cfg)
			limit := analysisLimit
			m := newMusq(cfg, &logger).OptimizeOnCloseEnabled(&limit)

			conn, err := m.Open(ctx)
			if err != nil {
				return err
			}
			return conn.Close(ctx)
		},
	}
	cmd.Flags().IntVar(&analysisLimit, "analysis-limit", 1000, "PRAGMA analysis_limit value applied before PRAGMA optimize")
	return cmd
}
