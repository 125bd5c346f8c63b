// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opLoad    = "load"
	opWrite   = "write"
	opDryRun  = "dry_run"
	opUnknown = "unknown"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	changes  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "inputmodel",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total model API requests.",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "inputmodel",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Model API request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
		changes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "inputmodel",
				Subsystem: "writer",
				Name:      "file_changes_total",
				Help:      "Files classified by the change set builder, by status.",
			},
			[]string{"operation", "status"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.changes)
	return m
}

func (m *metrics) observe(op string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.requests.WithLabelValues(op, statusLabel).Inc()
	m.duration.WithLabelValues(op, statusLabel).Observe(duration.Seconds())
}
