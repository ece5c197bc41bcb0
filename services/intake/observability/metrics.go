// Copyright (C) 2025 Prizm Real Estate Concierge Service
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the turn engine.
//
// Metrics cover turn throughput by persona and outcome, completions by
// reason, turn latency, and model invocation failures. All operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "prizm"
	intakeSubsystem  = "intake"
)

// Turn outcome labels for TurnsTotal.
const (
	StatusOK         = "ok"
	StatusTerminal   = "terminal"
	StatusModelError = "model_error"
	StatusInvalid    = "invalid"
)

// TurnMetrics holds the Prometheus metrics for turn processing.
//
// Initialize once at startup via NewTurnMetrics, or use the package-level
// Default instance bound to the default registerer.
type TurnMetrics struct {
	// TurnsTotal counts processed turns.
	// Labels: mode (persona), status (ok, terminal, model_error, invalid)
	TurnsTotal *prometheus.CounterVec

	// CompletionsTotal counts conversations reaching the terminal state.
	// Labels: reason (PROGRESSING, ESCALATION, MAX_TURNS)
	CompletionsTotal *prometheus.CounterVec

	// TurnDurationSeconds measures end-to-end turn latency including the
	// model call.
	// Labels: mode
	TurnDurationSeconds *prometheus.HistogramVec

	// ModelErrorsTotal counts failed language model invocations.
	ModelErrorsTotal prometheus.Counter
}

// NewTurnMetrics registers the turn metrics against reg.
func NewTurnMetrics(reg prometheus.Registerer) *TurnMetrics {
	factory := promauto.With(reg)
	return &TurnMetrics{
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: intakeSubsystem,
			Name:      "turns_total",
			Help:      "Total turns processed by persona mode and outcome status.",
		}, []string{"mode", "status"}),

		CompletionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: intakeSubsystem,
			Name:      "completions_total",
			Help:      "Conversations that reached a terminal state, by reason.",
		}, []string{"reason"}),

		TurnDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: intakeSubsystem,
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn latency including the model call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),

		ModelErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: intakeSubsystem,
			Name:      "model_errors_total",
			Help:      "Language model invocations that returned an error.",
		}),
	}
}

// Default is the singleton instance bound to the default registerer.
var Default = NewTurnMetrics(prometheus.DefaultRegisterer)
