// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"context"
	"sync"
	"time"
)

//
// Sinks: operators that run an observable and send the output somewhere.
//

// ToSlice runs 'src' on the virtual scheduler until it terminates and
// returns the emitted items. Running a stream that never terminates makes
// ToSlice loop forever or, if nothing is scheduled, return what was emitted
// so far with a nil error.
func ToSlice[T any](vs *VirtualScheduler, src Observable[T]) (items []T, err error) {
	items = make([]T, 0)
	src.Subscribe(vs, Observer[T]{
		Next:  func(item T) { items = append(items, item) },
		Error: func(e error) { err = e },
	})
	vs.Flush()
	return
}

// Recorded is an item together with the time it was emitted at, relative to
// the subscription.
type Recorded[T any] struct {
	Offset time.Duration
	Value  T
}

// Record is ToSlice that also records when each item was emitted.
func Record[T any](vs *VirtualScheduler, src Observable[T]) (items []Recorded[T], err error) {
	items = make([]Recorded[T], 0)
	start := vs.Now()
	src.Subscribe(vs, Observer[T]{
		Next: func(item T) {
			items = append(items, Recorded[T]{Offset: vs.Now().Sub(start), Value: item})
		},
		Error: func(e error) { err = e },
	})
	vs.Flush()
	return
}

// ToChannels runs 'src' on the loop and returns an item channel and error channel.
// When the source terminates both channels are closed and an error (which may be nil)
// is always sent to the error channel. Cancelling 'ctx' cancels the subscription and
// sends ctx.Err().
//
// Items are sent from the loop goroutine: a slow reader holds up every other
// stream running on the same loop.
func ToChannels[T any](ctx context.Context, l *Loop, src Observable[T]) (<-chan T, <-chan error) {
	out := make(chan T, 16)
	errs := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)
	var (
		once sync.Once
		sub  *Subscription // only accessed from the loop
	)
	finish := func(err error) {
		once.Do(func() {
			errs <- err
			close(out)
			close(errs)
			cancel()
		})
	}

	context.AfterFunc(ctx, func() {
		l.Post(func() {
			if sub != nil {
				sub.Cancel()
			}
			finish(ctx.Err())
		})
	})

	l.Post(func() {
		if ctx.Err() != nil {
			finish(ctx.Err())
			return
		}
		src.Subscribe(l, Observer[T]{
			Start: func(s *Subscription) { sub = s },
			Next: func(item T) {
				select {
				case out <- item:
				case <-ctx.Done():
				}
			},
			Error:    finish,
			Complete: func() { finish(nil) },
		})
	})
	return out, errs
}

// Collect runs 'src' on the loop and blocks until it terminates or 'ctx' is
// cancelled. The loop must be running.
func Collect[T any](ctx context.Context, l *Loop, src Observable[T]) (items []T, err error) {
	items = make([]T, 0)
	out, errs := ToChannels(ctx, l, src)
	for item := range out {
		items = append(items, item)
	}
	err = <-errs
	return
}
