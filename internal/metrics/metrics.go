// Package metrics records poll, skip and preliminary check activity for the harness.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	metricPrefix = "pitests_"

	// OutcomeSuccess labels a poll that converged
	OutcomeSuccess = "success"
	// OutcomeTimeout labels a poll that ran out of time
	OutcomeTimeout = "timeout"
	// OutcomeFatal labels a poll aborted by a non-retryable error
	OutcomeFatal = "fatal"
	// OutcomeCanceled labels a poll stopped by its context
	OutcomeCanceled = "canceled"

	// DecisionRun labels a requirement that allowed the test to run
	DecisionRun = "run"
	// DecisionSkip labels a requirement that skipped the test
	DecisionSkip = "skip"
	// DecisionFatal labels a strict requirement that failed the test
	DecisionFatal = "fatal"
)

var (
	registerOnce sync.Once
	registry     *prometheus.Registry

	pollAttempts *prometheus.CounterVec
	pollDuration *prometheus.HistogramVec

	skipDecisions *prometheus.CounterVec

	checkResults *prometheus.CounterVec
	checkLatency *prometheus.HistogramVec
)

// Init registers the harness metrics on a dedicated registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		registry = prometheus.NewRegistry()

		pollAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_attempts_total",
				Help: "Total probe invocations by poll outcome",
			},
			[]string{"outcome"},
		)
		pollDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "poll_duration_seconds",
				Help:    "Wall time spent polling for convergence",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		)
		skipDecisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "skip_decisions_total",
				Help: "Total evaluated skip requirements by decision",
			},
			[]string{"requirement", "decision"},
		)
		checkResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "check_results_total",
				Help: "Total preliminary check results by outcome",
			},
			[]string{"check", "outcome"},
		)
		checkLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "check_duration_seconds",
				Help:    "Preliminary check duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"check"},
		)

		registry.MustRegister(
			pollAttempts,
			pollDuration,
			skipDecisions,
			checkResults,
			checkLatency,
		)
	})
}

// Registry returns the harness registry, initializing it if needed.
func Registry() *prometheus.Registry {
	Init()
	return registry
}

// ObservePoll records one completed poll.
func ObservePoll(outcome string, attempts int, duration time.Duration) {
	if pollAttempts != nil {
		pollAttempts.WithLabelValues(outcome).Add(float64(attempts))
	}
	if pollDuration != nil {
		pollDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}

// IncSkipDecision counts an evaluated requirement.
func IncSkipDecision(requirement, decision string) {
	if skipDecisions != nil {
		skipDecisions.WithLabelValues(requirement, decision).Inc()
	}
}

// ObserveCheck records a preliminary check result.
func ObserveCheck(check, outcome string, duration time.Duration) {
	if checkResults != nil {
		checkResults.WithLabelValues(check, outcome).Inc()
	}
	if checkLatency != nil {
		checkLatency.WithLabelValues(check).Observe(duration.Seconds())
	}
}

// Push sends the registry to a Prometheus Pushgateway under the given job name.
func Push(gatewayURL, job, instance string) error {
	pusher := push.New(gatewayURL, job).Gatherer(Registry())
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
