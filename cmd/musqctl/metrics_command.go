// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cortesi/musq/internal/metrics"
)

func runMetricsCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Open a connection pool and serve its Prometheus metrics until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.MetricsAddr
			}
			if addr == "" {
				addr = ":9090"
			}

			logger := buildLogger(cfg)
			pool, err := newMusq(cfg, &logger).OpenPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close(context.Background())

			manager := metrics.NewManager([]metrics.PoolStats{pool}, nil)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(manager.GetRegistry(), promhttp.HandlerOpts{}))

			srv := &http.Server{Addr: addr, Handler: mux}
			log.Info().Str("addr", addr).Msg("serving musq metrics")

			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for /metrics (default: musqctl.toml's metricsAddr, or :9090)")
	return cmd
}
