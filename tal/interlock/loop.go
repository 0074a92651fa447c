package interlock

import (
	"context"

	"nyiyui.ca/hato/shingo/notify"
)

type request struct {
	fn   func(il *Interlocking) error
	done chan error
}

// Loop serialises all access to an Interlocking through one goroutine, so each command is applied
// as one step.
type Loop struct {
	il   *Interlocking
	reqs chan request
}

func NewLoop(il *Interlocking) *Loop {
	return &Loop{
		il:   il,
		reqs: make(chan request),
	}
}

// Run applies commands until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-l.reqs:
			req.done <- req.fn(l.il)
		}
	}
}

// Do runs fn on the loop and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(il *Interlocking) error) error {
	done := make(chan error, 1)
	select {
	case l.reqs <- request{fn: fn, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the event multiplexer. It is safe to call from any goroutine.
func (l *Loop) Events() *notify.Multiplexer[Event] {
	return l.il.Events
}
