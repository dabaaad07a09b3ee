// Package metrics defines the console's operational metrics and their Prometheus
// and no-op implementations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsoleMetrics records service operations, undo traffic and lifecycle transitions.
type ConsoleMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordUndoPushed(ctx context.Context, kind string)
	RecordUndoExecuted(ctx context.Context, kind, outcome string)
	RecordCommandDispatch(ctx context.Context, commandType, outcome string)
	RecordTransition(ctx context.Context, event, outcome string)
}

// Outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeMalformed   = "malformed"
	OutcomeUnsupported = "unsupported"
	OutcomeDeclined    = "declined"
	OutcomeRejected    = "rejected"
)

type prometheusMetrics struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	undoPushed  *prometheus.CounterVec
	undoRuns    *prometheus.CounterVec
	dispatches  *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewPrometheus registers the console collectors on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) ConsoleMetrics {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Service operations that completed without error.",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failure_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"service", "operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		undoPushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_pushed_total",
			Help:      "Undo entries pushed into a scope slot.",
		}, []string{"kind"}),
		undoRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_executed_total",
			Help:      "Undo executions by entry kind and outcome.",
		}, []string{"kind", "outcome"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_dispatch_total",
			Help:      "Compensating command dispatches by type and outcome.",
		}, []string{"type", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "round_transitions_total",
			Help:      "Round lifecycle events by outcome.",
		}, []string{"event", "outcome"}),
	}
	reg.MustRegister(m.attempts, m.successes, m.failures, m.durations, m.undoPushed, m.undoRuns, m.dispatches, m.transitions)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordUndoPushed(_ context.Context, kind string) {
	m.undoPushed.WithLabelValues(kind).Inc()
}

func (m *prometheusMetrics) RecordUndoExecuted(_ context.Context, kind, outcome string) {
	m.undoRuns.WithLabelValues(kind, outcome).Inc()
}

func (m *prometheusMetrics) RecordCommandDispatch(_ context.Context, commandType, outcome string) {
	m.dispatches.WithLabelValues(commandType, outcome).Inc()
}

func (m *prometheusMetrics) RecordTransition(_ context.Context, event, outcome string) {
	m.transitions.WithLabelValues(event, outcome).Inc()
}

type noopMetrics struct{}

// NewNoop returns metrics that discard everything.
func NewNoop() ConsoleMetrics { return noopMetrics{} }

func (noopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (noopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noopMetrics) RecordUndoPushed(context.Context, string)                               {}
func (noopMetrics) RecordUndoExecuted(context.Context, string, string)                     {}
func (noopMetrics) RecordCommandDispatch(context.Context, string, string)                  {}
func (noopMetrics) RecordTransition(context.Context, string, string)                       {}
