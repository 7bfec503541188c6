// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

import (
	"time"

	"github.com/rxcards/rxcards/stream"
)

type EventType string

const (
	EventNext      EventType = "next"
	EventError     EventType = "error"
	EventComplete  EventType = "complete"
	EventCancelled EventType = "cancelled"
)

// Event is a notification of a card run. Offset is relative to the start of
// the run.
type Event struct {
	Type   EventType     `json:"type"`
	Offset time.Duration `json:"offset"`
	Value  any           `json:"value,omitempty"`
	Error  string        `json:"error,omitempty"`

	err error
}

// Emission is an item in the output of a run.
type Emission struct {
	Offset time.Duration `json:"offset"`
	Value  any           `json:"value"`
}

// materialize turns the notifications of 'src' into events. The resulting
// stream always completes normally after the terminal event.
func materialize(src stream.Observable[any]) stream.Observable[Event] {
	return stream.Create(
		func(sch stream.Scheduler, s *stream.Subscriber[Event]) {
			start := sch.Now()
			offset := func() time.Duration { return sch.Now().Sub(start) }
			src.Subscribe(sch, stream.Observer[any]{
				Start: func(sub *stream.Subscription) { s.Add(sub.Cancel) },
				Next: func(item any) {
					s.Next(Event{Type: EventNext, Offset: offset(), Value: item})
				},
				Error: func(err error) {
					s.Next(Event{Type: EventError, Offset: offset(), Error: err.Error(), err: err})
					s.Complete()
				},
				Complete: func() {
					s.Next(Event{Type: EventComplete, Offset: offset()})
					s.Complete()
				},
			})
		})
}

// clickSource numbers the clicks coming from 'live' and from timers at the
// given offsets. It never completes.
func clickSource(live stream.Observable[struct{}], offsets []time.Duration) stream.Observable[Click] {
	srcs := []stream.Observable[struct{}]{stream.Never[struct{}]()}
	if live != nil {
		srcs = append(srcs, live)
	}
	for _, offset := range offsets {
		srcs = append(srcs, stream.Map(stream.Timer(offset), func(int) struct{} { return struct{}{} }))
	}
	return stream.Scan(
		stream.Merge(srcs...),
		Click{},
		func(last Click, _ struct{}) Click { return Click{Seq: last.Seq + 1} })
}
