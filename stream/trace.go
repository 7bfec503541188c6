// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

import (
	"github.com/rs/zerolog"
)

// Trace logs the lifecycle of every subscription to 'src' at debug level:
// subscribe, each item, error, completion and cancellation.
func Trace[T any](src Observable[T], log zerolog.Logger, name string) Observable[T] {
	log = log.With().Str("stream", name).Logger()
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			start := sch.Now()
			elapsed := func() int64 { return sch.Now().Sub(start).Milliseconds() }
			terminated := false

			log.Debug().Msg("subscribe")
			s.Add(func() {
				if !terminated {
					log.Debug().Int64("elapsed_ms", elapsed()).Msg("cancelled")
				}
			})
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(item T) {
					log.Debug().Int64("elapsed_ms", elapsed()).Interface("value", item).Msg("next")
					s.Next(item)
				},
				Error: func(err error) {
					terminated = true
					log.Debug().Int64("elapsed_ms", elapsed()).Err(err).Msg("error")
					s.Error(err)
				},
				Complete: func() {
					terminated = true
					log.Debug().Int64("elapsed_ms", elapsed()).Msg("complete")
					s.Complete()
				},
			})
		})
}
