package test

import (
	"context"
	"time"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/test/mocks"
)

// DefaultTestTimeout is the default timeout for a suite
const DefaultTestTimeout = 5 * time.Minute

// Option represents a configuration option for the suite
type Option func(*Suite)

// WithTimeout returns an option that sets the suite timeout
func WithTimeout(timeout time.Duration) Option {
	return func(s *Suite) {
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.ctx, s.cancelFunc = context.WithTimeout(context.Background(), timeout)
	}
}

// WithCleanupFunc returns an option that adds a cleanup function to be
// called when the suite is cleaned up
func WithCleanupFunc(cleanup func()) Option {
	return func(s *Suite) {
		oldCleanup := s.cleanup
		s.cleanup = func() {
			if cleanup != nil {
				cleanup()
			}
			if oldCleanup != nil {
				oldCleanup()
			}
		}
	}
}

// WithMockOptions configures the fake PI Web API. Ignored in live mode.
func WithMockOptions(opts *mocks.PIWebAPIOptions) Option {
	return func(s *Suite) {
		s.mockOpts = opts
	}
}

// WithSettings runs the suite against the deployment the store describes
func WithSettings(store config.Store) Option {
	return func(s *Suite) {
		s.store = store
	}
}

// WithHistoryDB gives the suite a file based check history database
func WithHistoryDB() Option {
	return func(s *Suite) {
		s.withDB = true
	}
}
