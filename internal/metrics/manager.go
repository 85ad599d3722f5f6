// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// Manager owns the prometheus registry musqctl serves on /metrics.
type Manager struct {
	registry  *prometheus.Registry
	collector *Collector
}

// NewManager builds a registry carrying the Go/process collectors plus a
// Collector over pools and caches. Either slice may be nil.
func NewManager(pools []PoolStats, caches []CacheStats) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	collector := NewCollector(pools, caches)
	registry.MustRegister(collector)

	log.Info().Msg("metrics manager initialized")

	return &Manager{registry: registry, collector: collector}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
