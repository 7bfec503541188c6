// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

import (
	"time"

	"github.com/google/uuid"

	"github.com/rxcards/rxcards/stream"
)

// Replay runs 'card' in virtual time with clicks at the given offsets. The
// run is cancelled with ErrRunTimeout if it has not terminated once
// 'timeout' of virtual time has passed. Replay returns instantly regardless
// of the card's durations.
func Replay(card Card, timeout time.Duration, clicks ...time.Duration) *Result {
	vs := stream.NewVirtualScheduler()
	res := &Result{
		ID:     uuid.NewString(),
		Card:   card.Key,
		Output: make([]Emission, 0),
	}

	terminated := false
	sub := materialize(card.Build(clickSource(nil, clicks))).Subscribe(vs, stream.Observer[Event]{
		Next: func(ev Event) {
			res.Duration = ev.Offset
			switch ev.Type {
			case EventNext:
				res.Output = append(res.Output, Emission{Offset: ev.Offset, Value: ev.Value})
			case EventError:
				res.Err = ev.err
				res.Error = ev.Error
			}
		},
		Complete: func() { terminated = true },
	})

	vs.AdvanceBy(timeout)
	if !terminated {
		sub.Cancel()
		res.Cancelled = true
		res.Err = ErrRunTimeout
		res.Error = ErrRunTimeout.Error()
		res.Duration = timeout
	}
	return res
}
