package checks

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/db/models"
	"github.com/celestiaorg/pitests/internal/fixtures"
	"github.com/celestiaorg/pitests/internal/logger"
	"github.com/celestiaorg/pitests/internal/metrics"
	"github.com/celestiaorg/pitests/internal/skip"
)

// DefaultTimeout bounds each check
const DefaultTimeout = 30 * time.Second

// UnconfiguredHost is recorded as the host of a run without a PIWebAPI setting
const UnconfiguredHost = "unconfigured"

// Recorder persists finished check runs
type Recorder interface {
	Create(ctx context.Context, run *models.CheckRun) error
}

// Options configures a Runner
type Options struct {
	Timeout   time.Duration
	Evaluator *skip.Evaluator
	Recorder  Recorder
	Resolver  Resolver
	// Checks replaces the built-in check list
	Checks []Check
}

// Option configures a Runner
type Option func(*Options)

// WithTimeout bounds each check
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithEvaluator shares a skip evaluator with the runner
func WithEvaluator(e *skip.Evaluator) Option {
	return func(o *Options) { o.Evaluator = e }
}

// WithRecorder stores every finished run
func WithRecorder(r Recorder) Option {
	return func(o *Options) { o.Recorder = r }
}

// WithResolver replaces the DNS lookup of the connection checks
func WithResolver(r Resolver) Option {
	return func(o *Options) { o.Resolver = r }
}

// WithChecks replaces the built-in check list
func WithChecks(checks ...Check) Option {
	return func(o *Options) { o.Checks = checks }
}

// Runner runs the preliminary checks in order
type Runner struct {
	settings *config.Settings
	opts     Options
	target   *target
}

// NewRunner creates a Runner for the deployment described by the settings
func NewRunner(settings *config.Settings, opts ...Option) *Runner {
	o := Options{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Resolver == nil {
		o.Resolver = net.DefaultResolver.LookupHost
	}
	if o.Evaluator == nil {
		var env skip.Environment
		if e, err := fixtures.NewEnvironment(settings, o.Timeout); err != nil {
			logger.WarnWithFields("product versions will not be available", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			env = e
		}
		o.Evaluator = skip.NewEvaluator(settings.Store(), env, nil)
	}

	return &Runner{
		settings: settings,
		opts:     o,
		target: &target{
			settings:  settings,
			timeout:   o.Timeout,
			resolve:   o.Resolver,
			evaluator: o.Evaluator,
		},
	}
}

// Checks lists the checks the runner executes
func (r *Runner) Checks() []Check {
	if r.opts.Checks != nil {
		return r.opts.Checks
	}
	return r.target.checks()
}

// Run executes every check, records the run when a recorder is configured and returns it.
// A check failure is reported in the run, not as an error; the error is only set when the
// run could not be recorded.
func (r *Runner) Run(ctx context.Context) (*models.CheckRun, error) {
	host := hostOf(r.settings.PIWebAPI())
	if host == "" {
		host = UnconfiguredHost
	}

	run := &models.CheckRun{
		Host:      host,
		StartedAt: time.Now().UTC(),
	}
	for _, check := range r.Checks() {
		run.Results = append(run.Results, r.runCheck(ctx, check))
	}
	run.FinishedAt = time.Now().UTC()
	run.Tally()

	logger.InfoWithFields("preliminary checks finished", map[string]interface{}{
		"host":    run.Host,
		"passed":  run.Passed,
		"failed":  run.Failed,
		"skipped": run.Skipped,
	})

	if r.opts.Recorder != nil {
		if err := r.opts.Recorder.Create(ctx, run); err != nil {
			return run, fmt.Errorf("failed to record check run: %w", err)
		}
	}
	return run, nil
}

func (r *Runner) runCheck(ctx context.Context, check Check) (result models.CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	start := time.Now()
	result.Name = check.Name

	defer func() {
		if p := recover(); p != nil {
			result.Outcome = models.OutcomeFailed
			result.Message = fmt.Sprintf("check panicked: %v", p)
		}
		elapsed := time.Since(start)
		result.DurationMS = elapsed.Milliseconds()
		metrics.ObserveCheck(check.Name, string(result.Outcome), elapsed)
		logger.DebugWithFields("preliminary check", map[string]interface{}{
			"check":   check.Name,
			"outcome": result.Outcome,
			"message": result.Message,
		})
	}()

	message, err := check.Run(ctx)
	switch {
	case err == nil:
		result.Outcome = models.OutcomePassed
		result.Message = message
	case IsSkipped(err):
		result.Outcome = models.OutcomeSkipped
		result.Message = err.Error()
	default:
		result.Outcome = models.OutcomeFailed
		result.Message = err.Error()
	}
	return result
}
