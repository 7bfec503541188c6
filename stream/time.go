// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

//
// Time-based operators
//

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validateConfig(cfg any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid %T: %w", cfg, err)
	}
	return nil
}

type DebounceConfig struct {
	// Duration is the quiet period after the latest item before it is
	// emitted.
	Duration time.Duration `validate:"gt=0"`
}

type ThrottleConfig struct {
	// Duration is the cooldown window opened by every emitted item.
	Duration time.Duration `validate:"gt=0"`
}

// DebounceTime emits an item only after 'duration' has passed without the
// source emitting another item.
func DebounceTime[T any](src Observable[T], duration time.Duration) Observable[T] {
	return Debounce(src, DebounceConfig{Duration: duration})
}

// Debounce emits the latest item of the source once cfg.Duration has passed
// without a newer one. When the source completes, a pending item is emitted
// before completing. An error drops the pending item.
func Debounce[T any](src Observable[T], cfg DebounceConfig) Observable[T] {
	if err := validateConfig(cfg); err != nil {
		return Error[T](err)
	}
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			var (
				pending    T
				hasPending bool
				cancel     func()
			)
			stop := func() {
				if cancel != nil {
					cancel()
					cancel = nil
				}
			}
			flush := func() {
				if hasPending {
					item := pending
					var zero T
					pending, hasPending = zero, false
					s.Next(item)
				}
			}
			s.Add(stop)

			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(item T) {
					stop()
					pending, hasPending = item, true
					cancel = sch.Schedule(cfg.Duration, func() {
						cancel = nil
						flush()
					})
				},
				Error: func(err error) {
					stop()
					hasPending = false
					s.Error(err)
				},
				Complete: func() {
					stop()
					flush()
					s.Complete()
				},
			})
		})
}

// ThrottleTime emits an item and then ignores the source for 'duration'.
func ThrottleTime[T any](src Observable[T], duration time.Duration) Observable[T] {
	return Throttle(src, ThrottleConfig{Duration: duration})
}

// Throttle emits the first item and opens a cooldown window of cfg.Duration
// in which items are dropped. The first item after the window opens the next
// one. Completion and errors pass through immediately.
func Throttle[T any](src Observable[T], cfg ThrottleConfig) Observable[T] {
	if err := validateConfig(cfg); err != nil {
		return Error[T](err)
	}
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			// A single token refilled once per window. The limiter is fed
			// the scheduler's clock so virtual time works too.
			limiter := rate.NewLimiter(rate.Every(cfg.Duration), 1)
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(item T) {
					if limiter.AllowN(sch.Now(), 1) {
						s.Next(item)
					}
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// Delay shifts the items and the completion of the source by 'duration'.
// Errors are forwarded immediately and drop the items still in flight.
func Delay[T any](src Observable[T], duration time.Duration) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(item T) {
					var detach func()
					detach = s.Add(sch.Schedule(duration, func() {
						detach()
						s.Next(item)
					}))
				},
				Error: s.Error,
				Complete: func() {
					s.Add(sch.Schedule(duration, s.Complete))
				},
			})
		})
}
