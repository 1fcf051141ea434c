package vex

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vexhq/vex/provider"
)

// Call is one in-flight invocation: a future for the terminal value plus
// the cancellation side channel. Cancel may be invoked at any time from
// any goroutine; once the terminal value is set it is a no-op.
type Call struct {
	id uuid.UUID

	cancelled atomic.Bool
	cancelCtx context.CancelFunc

	once   sync.Once
	done   chan struct{}
	result *provider.ParsedResult
	err    *provider.CallError
}

// ID identifies this call in progress events.
func (c *Call) ID() uuid.UUID {
	return c.id
}

// Cancel requests a cooperative abort. The worker observes the flag at its
// next state transition or suspension point and terminates with a
// CallError matching provider.ErrCancelled.
func (c *Call) Cancel() {
	c.cancelled.Store(true)
	if c.cancelCtx != nil {
		c.cancelCtx()
	}
}

// Done is closed once the terminal value is available.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Get blocks until the call terminates and returns its single terminal
// value.
func (c *Call) Get() (*provider.ParsedResult, error) {
	<-c.done
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func (c *Call) abortRequested() bool {
	return c.cancelled.Load()
}

// complete sets the terminal value exactly once. A cancellation that races
// the final chunk of a real response still wins: the cancelled flag is
// re-checked under the once, so a Cancel issued before the terminal
// emission can never be answered with a ParsedResult.
func (c *Call) complete(stage provider.Stage, result *provider.ParsedResult, err *provider.CallError) {
	c.once.Do(func() {
		if err == nil && c.cancelled.Load() {
			result = nil
			err = provider.Cancelled(stage)
		}
		c.result = result
		c.err = err
		close(c.done)
	})
}
