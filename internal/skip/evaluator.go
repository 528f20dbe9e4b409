package skip

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/logger"
	"github.com/celestiaorg/pitests/internal/metrics"
	"github.com/celestiaorg/pitests/internal/version"
)

// ErrNoVersionSource is returned by an Environment that cannot query a product.
var ErrNoVersionSource = errors.New("no version source is available for this product")

// Environment reports installed product versions. Implementations perform I/O.
type Environment interface {
	ProductVersion(ctx context.Context, product Product) (string, error)
}

// EnvironmentFunc adapts a function to Environment.
type EnvironmentFunc func(ctx context.Context, product Product) (string, error)

// ProductVersion implements Environment
func (f EnvironmentFunc) ProductVersion(ctx context.Context, product Product) (string, error) {
	return f(ctx, product)
}

// Decide evaluates a version threshold against the environment. It never panics and
// never returns an error: anything that prevents evaluation becomes a skip reason.
func Decide(ctx context.Context, store config.Store, env Environment, th Threshold) Decision {
	kind, err := th.SettingKind()
	if err != nil {
		return Skip("%s", err.Error()).Strict()
	}
	if d := ForSetting(store, th.Setting, kind); d.Skipped() {
		return d
	}
	if env == nil {
		return initializationError(ErrNoVersionSource)
	}

	installed, err := productVersion(ctx, env, th.Product)
	if err != nil {
		return initializationError(err)
	}

	actual, err := version.Parse(installed)
	if err != nil {
		return initializationError(fmt.Errorf("%s reported an unreadable version: %w", th.Product, err))
	}
	minimum, err := version.Parse(th.Minimum)
	if err != nil {
		return initializationError(err)
	}

	if actual.AtLeast(minimum) {
		return Run()
	}
	if th.Critical {
		return Skip("Warning! You do not have the critical patch: %s! Please consider upgrading to avoid data loss! You are currently on %s", th.Label, actual)
	}
	return Skip("Warning! You do not have the latest update: %s! Please consider upgrading! You are currently on %s", th.Label, actual)
}

func productVersion(ctx context.Context, env Environment, product Product) (v string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("version lookup for %s panicked: %v", product, r)
		}
	}()
	return env.ProductVersion(ctx, product)
}

func initializationError(err error) Decision {
	return Skip("Test skipped due to the initialization error [%s].", err.Error())
}

// CheckFunc evaluates an arbitrary environment precondition.
type CheckFunc func(ctx context.Context) Decision

type memo struct {
	mu       sync.Mutex
	done     bool
	decision Decision
}

// Evaluator memoizes decisions for the lifetime of the process. A decision made while the
// caller's context was already done is returned but not kept. It is safe for concurrent use.
type Evaluator struct {
	store      config.Store
	env        Environment
	thresholds Thresholds

	mu    sync.Mutex
	memos map[string]*memo
}

// NewEvaluator creates an Evaluator. A nil thresholds table selects the embedded one.
func NewEvaluator(store config.Store, env Environment, thresholds Thresholds) *Evaluator {
	if store == nil {
		store = config.MapStore{}
	}
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	return &Evaluator{
		store:      store,
		env:        env,
		thresholds: thresholds,
		memos:      make(map[string]*memo),
	}
}

// Thresholds returns the table the evaluator checks features against.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Setting decides a setting gate.
func (e *Evaluator) Setting(name string, kind Kind) Decision {
	return e.memoize("setting:"+name+":"+kind.String(), func() (Decision, bool) {
		return ForSetting(e.store, name, kind), true
	})
}

// Feature decides a version threshold. Strict promotes a skip to a failure.
func (e *Evaluator) Feature(ctx context.Context, feature Feature, strict bool) Decision {
	d := e.memoize("feature:"+string(feature), func() (Decision, bool) {
		th, ok := e.thresholds.Lookup(feature)
		if !ok {
			return Skip("Unknown feature %q.", feature), true
		}
		d := Decide(ctx, e.store, e.env, th)
		return d, ctx.Err() == nil
	})
	if strict {
		d = d.Strict()
	}
	return d
}

// Check decides a named precondition once. A panicking check becomes a skip.
func (e *Evaluator) Check(ctx context.Context, name string, fn CheckFunc) Decision {
	return e.memoize("check:"+name, func() (Decision, bool) {
		d := runCheck(ctx, fn)
		return d, ctx.Err() == nil
	})
}

func runCheck(ctx context.Context, fn CheckFunc) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = initializationError(fmt.Errorf("%v", r))
		}
	}()
	return fn(ctx)
}

// memoize evaluates a requirement once per key. Evaluations reporting keep=false are
// returned to the caller and evaluated again on the next call.
func (e *Evaluator) memoize(key string, eval func() (d Decision, keep bool)) Decision {
	e.mu.Lock()
	m, ok := e.memos[key]
	if !ok {
		m = &memo{}
		e.memos[key] = m
	}
	e.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return m.decision
	}

	d, keep := eval()
	outcome := metrics.DecisionRun
	switch {
	case d.Fatal:
		outcome = metrics.DecisionFatal
	case d.Skipped():
		outcome = metrics.DecisionSkip
	}
	metrics.IncSkipDecision(key, outcome)
	logger.DebugWithFields("evaluated test precondition", map[string]interface{}{
		"requirement": key,
		"decision":    outcome,
		"reason":      d.Reason,
		"kept":        keep,
	})

	if keep {
		m.decision, m.done = d, true
	}
	return d
}
