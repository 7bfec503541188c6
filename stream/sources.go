// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"time"
)

//
// Sources, e.g. operators that create new observables.
//

// Of creates an observable that emits the given items and completes.
func Of[T any](items ...T) Observable[T] {
	return FromSlice(items)
}

// Just creates an observable with a single item.
func Just[T any](item T) Observable[T] {
	return FromSlice([]T{item})
}

// FromSlice converts a slice into an Observable. The items are emitted
// synchronously from Subscribe.
func FromSlice[T any](items []T) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			for _, item := range items {
				if s.Done() {
					return
				}
				s.Next(item)
			}
			s.Complete()
		})
}

// Range creates an observable that emits integers in range from...to-1.
func Range(from, to int) Observable[int] {
	return Create(
		func(sch Scheduler, s *Subscriber[int]) {
			for i := from; i < to; i++ {
				if s.Done() {
					return
				}
				s.Next(i)
			}
			s.Complete()
		})
}

// Never creates an observable that never emits anything and never
// completes. Mainly meant for testing.
func Never[T any]() Observable[T] {
	return Create(func(Scheduler, *Subscriber[T]) {})
}

// Error creates an observable that fails immediately with given error.
func Error[T any](err error) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			s.Error(err)
		})
}

// Empty creates an empty observable that completes immediately.
func Empty[T any]() Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			s.Complete()
		})
}

// Interval emits an increasing counter value every 'period', starting one
// period after subscribing.
func Interval(period time.Duration) Observable[int] {
	return Create(
		func(sch Scheduler, s *Subscriber[int]) {
			var (
				n      int
				cancel func()
				tick   func()
			)
			tick = func() {
				cancel = nil
				s.Next(n)
				n++
				if !s.Done() {
					cancel = sch.Schedule(period, tick)
				}
			}
			cancel = sch.Schedule(period, tick)
			s.Add(func() {
				if cancel != nil {
					cancel()
				}
			})
		})
}

// Timer emits 0 after 'delay' and completes.
func Timer(delay time.Duration) Observable[int] {
	return Create(
		func(sch Scheduler, s *Subscriber[int]) {
			s.Add(sch.Schedule(delay, func() {
				s.Next(0)
				s.Complete()
			}))
		})
}

// Defer calls 'factory' on each subscription and subscribes to the
// observable it returns.
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			observe(s.Subscription, sch, factory(), forward(s))
		})
}

// forward returns an observer that passes every notification on to 's'.
func forward[T any](s *Subscriber[T]) Observer[T] {
	return Observer[T]{
		Next:     s.Next,
		Error:    s.Error,
		Complete: s.Complete,
	}
}
