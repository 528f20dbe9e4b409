package test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/internal/db/repos"
	"github.com/celestiaorg/pitests/internal/eventually"
	"github.com/celestiaorg/pitests/internal/fixtures"
	"github.com/celestiaorg/pitests/internal/logger"
	"github.com/celestiaorg/pitests/internal/skip"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
	"github.com/celestiaorg/pitests/test/mocks"
)

// Suite encapsulates everything an acceptance test needs:
//   - Settings of the deployment under test, live or fake
//   - The skip evaluator backed by the product versions of the deployment
//   - The PI Web API fixture with its AF and PI fixtures
//   - An optional check history database
type Suite struct {
	t *testing.T // The testing.T instance for this suite

	// Fake PI Web API, nil in live mode
	Mock *mocks.PIWebAPI

	Settings    *config.Settings
	Evaluator   *skip.Evaluator
	Environment *fixtures.Environment

	// WebAPI is nil when the fixture could not be built; RequireWebAPI skips then
	WebAPI  *fixtures.PIWebAPIFixture
	initErr error

	// Database components
	DB        *gorm.DB
	CheckRuns *repos.CheckRunRepository

	store    config.Store
	mockOpts *mocks.PIWebAPIOptions
	withDB   bool

	// Context management
	ctx        context.Context
	cancelFunc context.CancelFunc

	// Cleanup function
	cleanup func()
}

// SetS sets the suite instance for this suite
func (s *Suite) SetS(_ suite.TestingSuite) {}

// SetT sets the testing.T instance for this suite
func (s *Suite) SetT(t *testing.T) {
	s.t = t
}

// T returns the testing.T instance for this suite
func (s *Suite) T() *testing.T {
	return s.t
}

// NewSuite creates a suite against the fake PI Web API, or against the deployment of the
// settings file when PITESTS_LIVE is set. The suite must be cleaned up after use by
// calling Cleanup.
func NewSuite(t *testing.T, opts ...Option) *Suite {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)
	s := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
	}

	s.cleanup = func() {
		if s.WebAPI != nil {
			s.WebAPI.Close(context.Background())
		}
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		if Live() {
			store, err := liveSettings()
			s.Require().NoError(err)
			s.store = store
		} else {
			SetupMockPIWebAPI(s, s.mockOpts)
		}
	}
	s.Settings = config.NewSettings(s.store)

	SetupFixtures(s)
	if s.withDB {
		SetupTestDB(s, nil)
	}
	return s
}

// SetupFixtures builds the environment, the evaluator and the PI Web API fixture. Against
// the fake PI Web API a fixture error fails the test; against a live deployment it becomes
// the skip reason of every test that needs PI Web API.
func SetupFixtures(s *Suite) {
	env, err := fixtures.NewEnvironment(s.Settings, client.DefaultTimeout)
	if err != nil {
		s.initErr = err
	} else {
		s.Environment = env
	}

	if s.Environment != nil {
		s.Evaluator = skip.NewEvaluator(s.store, s.Environment, nil)
	} else {
		s.Evaluator = skip.NewEvaluator(s.store, nil, nil)
	}

	if s.initErr == nil && s.Settings.PIWebAPI() != "" {
		s.WebAPI, s.initErr = fixtures.NewPIWebAPIFixture(s.ctx, s.Settings, fixtures.WithEvaluator(s.Evaluator))
	}

	if s.initErr != nil {
		if s.Mock != nil {
			s.Require().NoError(s.initErr, "Failed to set up fixtures against the fake PI Web API")
		}
		logger.WarnWithFields("PI Web API fixture unavailable", map[string]interface{}{
			"error": s.initErr.Error(),
		})
	}
}

// Cleanup tears down the suite, removing the entities its fixtures created.
// This should be deferred immediately after creating the suite.
func (s *Suite) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// RequireSetting skips the test unless the setting is configured
func (s *Suite) RequireSetting(name string, kind skip.Kind) {
	s.t.Helper()
	s.Evaluator.Setting(name, kind).Apply(s.t)
}

// RequireFeature skips the test unless the product meets the feature's minimum version.
// Strict fails the test instead.
func (s *Suite) RequireFeature(feature skip.Feature, strict bool) {
	s.t.Helper()
	s.Evaluator.Feature(s.ctx, feature, strict).Apply(s.t)
}

// RequireWebAPI skips the test unless the PI Web API fixture is available and returns it
func (s *Suite) RequireWebAPI() *fixtures.PIWebAPIFixture {
	s.t.Helper()
	s.RequireSetting(constants.SettingPIWebAPI, skip.KindString)
	if s.initErr != nil {
		skip.Skip("Test skipped due to the initialization error [%s].", s.initErr.Error()).Apply(s.t)
	}
	return s.WebAPI
}

// RequireCondition skips the test unless PI Web API meets the condition
func (s *Suite) RequireCondition(cond fixtures.Condition) *fixtures.PIWebAPIFixture {
	s.t.Helper()
	webAPI := s.RequireWebAPI()
	webAPI.SkipReason(s.ctx, cond).Apply(s.t)
	return webAPI
}

// RequireWrites skips the test when PI Web API has writes disabled
func (s *Suite) RequireWrites() *fixtures.PIWebAPIFixture {
	s.t.Helper()
	webAPI := s.RequireWebAPI()
	if webAPI.DisableWrites {
		skip.Skip("Test skipped because PI Web API at [%s] has DisableWrites set.", webAPI.BaseURL).Apply(s.t)
	}
	return webAPI
}

// Eventually polls the probe with the cadence of the operation class and fails the test
// when it does not converge
func (s *Suite) Eventually(class string, probe eventually.Probe, format string, args ...interface{}) {
	s.t.Helper()
	err := eventually.PollContext(s.ctx, probe, eventually.For(class), fmt.Sprintf(format, args...))
	s.Require().NoError(err)
}

// ForT returns a shallow copy of the suite bound to a subtest, so requirement helpers
// skip or fail the subtest instead of the parent
func (s *Suite) ForT(t *testing.T) *Suite {
	c := *s
	c.t = t
	return &c
}
