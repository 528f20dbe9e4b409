// Package eventually polls the PI System until it converges to an expected state.
//
// Remote state converges asynchronously: a value written to the Data Archive or an element
// created through PI Web API may not be visible to the very next read. A Probe reports one
// of three outcomes on every attempt:
//
//   - Succeed: the expected state was observed, polling stops.
//   - Retry: not there yet, the reason is kept and polling continues until the timeout.
//   - Fatal: something unrelated to convergence went wrong, polling stops immediately
//     and the error is returned unchanged.
//
// A timeout is reported once, with the reason from the last attempt.
package eventually

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/pitests/internal/metrics"
)

type outcome int

const (
	outcomeRetry outcome = iota
	outcomeSuccess
	outcomeFatal
)

// Result is the tagged outcome of one probe invocation.
type Result struct {
	outcome outcome
	reason  string
	err     error
}

// Succeed reports that the expected state was observed.
func Succeed() Result {
	return Result{outcome: outcomeSuccess}
}

// Retry reports that the expected state was not observed yet.
func Retry(format string, args ...interface{}) Result {
	return Result{outcome: outcomeRetry, reason: fmt.Sprintf(format, args...)}
}

// Fatal reports an error that retrying cannot fix.
func Fatal(err error) Result {
	if err == nil {
		err = fmt.Errorf("probe reported a fatal result without an error")
	}
	return Result{outcome: outcomeFatal, err: err}
}

// Probe is invoked on every poll attempt.
type Probe func() Result

// FromBool adapts a boolean condition. False retries with no reason.
func FromBool(cond func() bool) Probe {
	return func() Result {
		if cond() {
			return Succeed()
		}
		return Retry("")
	}
}

// FromCheck adapts a condition that can also fail. Errors are fatal.
func FromCheck(check func() (bool, error)) Probe {
	return func() Result {
		ok, err := check()
		if err != nil {
			return Fatal(err)
		}
		if ok {
			return Succeed()
		}
		return Retry("")
	}
}

// TimeoutError is returned when the probe did not succeed before the timeout.
type TimeoutError struct {
	Host       string
	Timeout    time.Duration
	Attempts   int
	Message    string
	LastReason string
}

func (e *TimeoutError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Waited for %s.", e.Timeout))
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	if e.LastReason != "" {
		b.WriteString(" ")
		b.WriteString(e.LastReason)
	}
	msg := b.String()
	if e.Message == "" && e.LastReason == "" {
		msg = "No Message"
	}
	return e.Host + ": " + msg
}

// Poll invokes probe every cadence.Interval until it succeeds, fails fatally, or
// cadence.Timeout elapses. It blocks the calling goroutine.
func Poll(probe Probe, cadence Cadence, message string) error {
	return PollContext(context.Background(), probe, cadence, message)
}

// PollContext is Poll with early cancellation through ctx.
func PollContext(ctx context.Context, probe Probe, cadence Cadence, message string) error {
	cadence = cadence.normalize()
	start := time.Now()
	deadline := start.Add(cadence.Timeout)

	attempts := 0
	lastReason := ""
	for {
		attempts++
		res := probe()
		switch res.outcome {
		case outcomeSuccess:
			metrics.ObservePoll(metrics.OutcomeSuccess, attempts, time.Since(start))
			return nil
		case outcomeFatal:
			metrics.ObservePoll(metrics.OutcomeFatal, attempts, time.Since(start))
			return res.err
		}
		lastReason = res.reason

		remaining := time.Until(deadline)
		if remaining <= 0 {
			metrics.ObservePoll(metrics.OutcomeTimeout, attempts, time.Since(start))
			return &TimeoutError{
				Host:       hostName(),
				Timeout:    cadence.Timeout,
				Attempts:   attempts,
				Message:    message,
				LastReason: lastReason,
			}
		}

		wait := cadence.Interval
		if remaining < wait {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			metrics.ObservePoll(metrics.OutcomeCanceled, attempts, time.Since(start))
			return fmt.Errorf("polling canceled after %d attempts: %w", attempts, ctx.Err())
		case <-timer.C:
		}
	}
}

// True polls cond until it returns true and fails the test otherwise.
func True(t require.TestingT, cond func() bool, cadence Cadence, format string, args ...interface{}) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if err := Poll(FromBool(cond), cadence, fmt.Sprintf(format, args...)); err != nil {
		require.Fail(t, err.Error())
	}
}

// Equal polls actual until it returns a value equal to expected and fails the test
// otherwise. An error from actual fails the test immediately.
func Equal[T any](t require.TestingT, expected T, actual func() (T, error), cadence Cadence, msgAndArgs ...interface{}) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if err := Poll(EqualProbe(expected, actual), cadence, messageFromArgs(msgAndArgs...)); err != nil {
		require.Fail(t, err.Error())
	}
}

// EqualProbe builds a probe that succeeds once actual returns a value equal to expected.
func EqualProbe[T any](expected T, actual func() (T, error)) Probe {
	return func() Result {
		got, err := actual()
		if err != nil {
			return Fatal(err)
		}
		if assert.ObjectsAreEqual(expected, got) {
			return Succeed()
		}
		return Retry("Expected: %v, Actual: %v", expected, got)
	}
}

func messageFromArgs(msgAndArgs ...interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs[0])
}

func hostName() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "UNKNOWN-HOST"
	}
	return strings.ToUpper(name)
}
