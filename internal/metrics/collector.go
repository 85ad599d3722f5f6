// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var beginTxRecoveryTotal atomic.Uint64

// RecordBeginTxRecovery is called by a Worker whenever an orphaned Begin
// (its caller gave up before the acknowledgement arrived) had to be rolled
// back on the caller's behalf.
func RecordBeginTxRecovery() {
	beginTxRecoveryTotal.Add(1)
}

// PoolStats is the subset of Pool state the collector reads. Pool itself
// implements it; it exists as an interface so this package never imports
// the root musq package.
type PoolStats interface {
	Size() int64
	NumIdle() int
}

// CacheStats is the subset of a Worker's statement cache state the
// collector reads.
type CacheStats interface {
	CacheSize() int64
}

// Collector exports pool and statement-cache gauges plus the
// begin_tx_recovery_total counter as a prometheus.Collector.
type Collector struct {
	pools  []PoolStats
	caches []CacheStats

	poolSizeDesc        *prometheus.Desc
	poolIdleDesc        *prometheus.Desc
	cacheSizeDesc       *prometheus.Desc
	beginTxRecoveryDesc *prometheus.Desc
}

// NewCollector returns a Collector over the given pools and per-connection
// caches. Either may be nil or empty; gauges simply report zero entries.
func NewCollector(pools []PoolStats, caches []CacheStats) *Collector {
	return &Collector{
		pools:  pools,
		caches: caches,

		poolSizeDesc: prometheus.NewDesc(
			"musq_pool_connections",
			"Number of live connections currently held by a pool",
			nil, nil,
		),
		poolIdleDesc: prometheus.NewDesc(
			"musq_pool_idle_connections",
			"Number of idle (checked-in) connections currently held by a pool",
			nil, nil,
		),
		cacheSizeDesc: prometheus.NewDesc(
			"musq_statement_cache_size",
			"Number of compiled statements currently cached on a connection worker",
			nil, nil,
		),
		beginTxRecoveryDesc: prometheus.NewDesc(
			"musq_begin_tx_recovery_total",
			"Number of times a Begin command's acknowledgement went undelivered and the worker rolled back the orphaned transaction on the caller's behalf",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.poolSizeDesc
	ch <- c.poolIdleDesc
	ch <- c.cacheSizeDesc
	ch <- c.beginTxRecoveryDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.pools {
		ch <- prometheus.MustNewConstMetric(c.poolSizeDesc, prometheus.GaugeValue, float64(p.Size()))
		ch <- prometheus.MustNewConstMetric(c.poolIdleDesc, prometheus.GaugeValue, float64(p.NumIdle()))
	}
	for _, cc := range c.caches {
		ch <- prometheus.MustNewConstMetric(c.cacheSizeDesc, prometheus.GaugeValue, float64(cc.CacheSize()))
	}
	ch <- prometheus.MustNewConstMetric(c.beginTxRecoveryDesc, prometheus.CounterValue, float64(beginTxRecoveryTotal.Load()))
}
