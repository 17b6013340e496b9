// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package observability holds the generator metrics and dumps registries in
// the Prometheus text format.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Result labels for mdstudio_generate_total.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics contains the generator metrics.
type Metrics struct {
	GenerateTotal    *prometheus.CounterVec
	GenerateDuration prometheus.Histogram
	ScenesGenerated  prometheus.Counter
}

// NewMetrics creates the generator metrics and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GenerateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdstudio_generate_total",
				Help: "Total number of project generations by result",
			},
			[]string{"result"},
		),
		GenerateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mdstudio_generate_duration_seconds",
				Help:    "Project generation duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		ScenesGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mdstudio_scenes_generated_total",
				Help: "Total number of scenes in successfully generated projects",
			},
		),
	}

	reg.MustRegister(m.GenerateTotal)
	reg.MustRegister(m.GenerateDuration)
	reg.MustRegister(m.ScenesGenerated)

	return m
}

// RecordGenerate records one generation. scenes is ignored on failure.
func (m *Metrics) RecordGenerate(err error, scenes int, elapsed time.Duration) {
	m.GenerateDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.GenerateTotal.WithLabelValues(ResultError).Inc()
		return
	}
	m.GenerateTotal.WithLabelValues(ResultSuccess).Inc()
	m.ScenesGenerated.Add(float64(scenes))
}

// WriteTextfile atomically writes everything g gathers to path in the
// Prometheus text format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return oops.With("path", path).Wrapf(err, "write metrics textfile")
	}
	return nil
}
