// Copyright 2021 The httpi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

import (
	"context"
)

// A Stream is a lazy, push-based sequence of events.
//
// Nothing happens until the stream is subscribed to. Subscribing runs
// the function on the calling goroutine: it delivers each event to emit
// in order, and returns when the stream is over. A nil return means the
// stream completed normally; a non-nil return is the stream's error
// channel, typically carrying an *ErrorResponse.
//
// Every subscription is an independent execution. Subscribing to the
// same stream twice does all the work twice, which is what makes
// retry-by-resubscription possible.
//
// The subscriber cancels by cancelling ctx. Once ctx is done a stream
// must release its resources and return promptly, and it must not emit
// any further events. Use Subscribe rather than calling the function
// directly: Subscribe enforces the latter rule even for streams that
// get it wrong.
type Stream func(ctx context.Context, emit func(Event)) error

// Subscribe runs the stream, delivering events to emit, and returns the
// stream's terminal error. A nil emit discards events.
func (s Stream) Subscribe(ctx context.Context, emit func(Event)) error {
	if s == nil {
		panic("httpi/response: nil stream")
	}
	if ctx == nil {
		panic("httpi/response: nil context")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s(ctx, func(ev Event) {
		if emit != nil && ctx.Err() == nil {
			emit(ev)
		}
	})
}

// Collect subscribes to the stream and returns all the events it
// emitted, along with its terminal error.
func (s Stream) Collect(ctx context.Context) ([]Event, error) {
	var evs []Event
	err := s.Subscribe(ctx, func(ev Event) {
		evs = append(evs, ev)
	})
	return evs, err
}

// Filter returns a stream which only passes on the events for which
// keep returns true. Errors pass through unchanged.
func (s Stream) Filter(keep func(Event) bool) Stream {
	return func(ctx context.Context, emit func(Event)) error {
		return s.Subscribe(ctx, func(ev Event) {
			if keep(ev) {
				emit(ev)
			}
		})
	}
}

// Map returns a stream which passes on f(ev) for every event ev.
func (s Stream) Map(f func(Event) Event) Stream {
	return func(ctx context.Context, emit func(Event)) error {
		return s.Subscribe(ctx, func(ev Event) {
			emit(f(ev))
		})
	}
}

// Tap returns a stream which behaves like s but also calls onEvent for
// each event and onDone with the terminal error once the stream ends.
// Either function may be nil.
func (s Stream) Tap(onEvent func(Event), onDone func(error)) Stream {
	return func(ctx context.Context, emit func(Event)) error {
		err := s.Subscribe(ctx, func(ev Event) {
			if onEvent != nil {
				onEvent(ev)
			}
			emit(ev)
		})
		if onDone != nil {
			onDone(err)
		}
		return err
	}
}

// Defer returns a stream which calls factory on every subscription and
// subscribes to the stream it returns.
func Defer(factory func() Stream) Stream {
	return func(ctx context.Context, emit func(Event)) error {
		return factory().Subscribe(ctx, emit)
	}
}

// Of returns a stream which emits the given events and completes.
func Of(evs ...Event) Stream {
	return func(ctx context.Context, emit func(Event)) error {
		for _, ev := range evs {
			if err := ctx.Err(); err != nil {
				return err
			}
			emit(ev)
		}
		return nil
	}
}

// Fail returns a stream which emits nothing and fails with err.
func Fail(err error) Stream {
	return func(context.Context, func(Event)) error {
		return err
	}
}

// IsResponse reports whether ev is the terminal *Response event. It is
// handy as a Filter predicate.
func IsResponse(ev Event) bool {
	_, ok := ev.(*Response)
	return ok
}
