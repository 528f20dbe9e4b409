// Package skip decides, before a test body runs, whether the environment under test can
// support it.
//
// A Decision is either "run" or "skip with a reason". Strict decisions fail the test
// instead of skipping it, for preconditions that must hold on every deployment.
// Decisions are cheap: they read settings and, at most once per process, ask the
// environment for a product version.
package skip

import (
	"fmt"
	"testing"
)

// Decision is the outcome of evaluating a precondition.
type Decision struct {
	// Reason is empty when the test should run.
	Reason string
	// Fatal turns the skip into a test failure.
	Fatal bool
}

// Run is the decision to run the test.
func Run() Decision {
	return Decision{}
}

// Skip is the decision to skip the test with a formatted reason.
func Skip(format string, args ...interface{}) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Skipped reports whether the test should not run.
func (d Decision) Skipped() bool {
	return d.Reason != ""
}

// Strict returns d with skips promoted to failures.
func (d Decision) Strict() Decision {
	if d.Skipped() {
		d.Fatal = true
	}
	return d
}

func (d Decision) String() string {
	if !d.Skipped() {
		return "run"
	}
	if d.Fatal {
		return "fatal: " + d.Reason
	}
	return "skip: " + d.Reason
}

// Apply skips or fails t according to d. It returns only when the test should run.
func (d Decision) Apply(t testing.TB) {
	t.Helper()
	if !d.Skipped() {
		return
	}
	if d.Fatal {
		t.Fatal(d.Reason)
	}
	t.Skip(d.Reason)
}

// Unless applies the first decision that is not "run".
func Unless(t testing.TB, decisions ...Decision) {
	t.Helper()
	for _, d := range decisions {
		if d.Skipped() {
			d.Apply(t)
			return
		}
	}
}
