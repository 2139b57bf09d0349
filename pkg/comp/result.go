package comp

import (
	"context"
	"sync"
)

// Outcome is the resolution of a Pending result. A nil Model is treated as a failure.
type Outcome[M any] struct {
	Model *M
	Err   error
}

// Result is the value returned by an action.
type Result[M any] struct {
	pending <-chan Outcome[M]
}

// Immediate reports that the action completed synchronously.
func Immediate[M any]() Result[M] {
	return Result[M]{}
}

// Pending reports that the action continues asynchronously. The component renders
// again once an Outcome is received on ch. A closed channel counts as a nil model.
func Pending[M any](ch <-chan Outcome[M]) Result[M] {
	return Result[M]{pending: ch}
}

// Async runs fn in a new goroutine and returns a Pending result for its outcome.
func Async[M any](fn func() (*M, error)) Result[M] {
	ch := make(chan Outcome[M], 1)
	go func() {
		model, err := fn()
		ch <- Outcome[M]{Model: model, Err: err}
	}()
	return Pending(ch)
}

// IsPending reports whether the result carries a continuation.
func (r Result[M]) IsPending() bool {
	return r.pending != nil
}

// Call tracks one action invocation.
type Call struct {
	Component string
	Action    string

	pending bool
	done    chan struct{}
	once    sync.Once
	err     error
}

func newCall(component, action string) *Call {
	return &Call{
		Component: component,
		Action:    action,
		done:      make(chan struct{}),
	}
}

func (c *Call) finish(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Pending reports whether the action returned a Pending result.
func (c *Call) Pending() bool {
	return c.pending
}

// Done is closed once the last render of the call has run.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Err returns the error of the call's last render, or nil while it is still running.
func (c *Call) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the call is done or ctx is cancelled.
func (c *Call) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
