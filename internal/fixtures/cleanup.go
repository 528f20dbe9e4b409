package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/celestiaorg/pitests/internal/logger"
)

// cleanupTimeout bounds every cleanup action
const cleanupTimeout = 30 * time.Second

type cleanupAction struct {
	name string
	fn   func(ctx context.Context) error
}

// Cleanup is a stack of best-effort teardown actions. It is not safe for concurrent use.
type Cleanup struct {
	actions []cleanupAction
}

// NewCleanup creates an empty cleanup stack
func NewCleanup() *Cleanup {
	return &Cleanup{}
}

// Push registers an action. Actions run in reverse order of registration.
func (c *Cleanup) Push(name string, fn func(ctx context.Context) error) {
	c.actions = append(c.actions, cleanupAction{name: name, fn: fn})
}

// Len returns the number of pending actions
func (c *Cleanup) Len() int {
	return len(c.actions)
}

// Run executes and clears the pending actions. It returns the number of failed actions;
// failures are logged, never raised.
func (c *Cleanup) Run(ctx context.Context) int {
	failed := 0
	for i := len(c.actions) - 1; i >= 0; i-- {
		action := c.actions[i]
		if err := runAction(ctx, action); err != nil {
			failed++
			logger.WarnWithFields("cleanup action failed", map[string]interface{}{
				"action": action.name,
				"error":  err.Error(),
			})
		}
	}
	c.actions = nil
	return failed
}

func runAction(ctx context.Context, action cleanupAction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()
	return action.fn(ctx)
}
