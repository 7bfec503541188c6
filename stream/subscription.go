// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

import (
	"container/list"
)

// Subscription is the handle to a running stream. It owns the teardown
// functions (pending timers, upstream and inner subscriptions) of the
// execution and runs them when cancelled.
//
// A subscription belongs to the scheduler it was created on and must only
// be used from that scheduler's goroutine. Use Loop.Post to cancel from
// elsewhere.
type Subscription struct {
	closed    bool
	teardowns *list.List
}

func NewSubscription() *Subscription {
	return &Subscription{teardowns: list.New()}
}

// Add registers a teardown function to run on cancellation. If the
// subscription is already closed the teardown runs immediately. The returned
// function detaches the teardown without running it.
func (s *Subscription) Add(teardown func()) (detach func()) {
	if s.closed {
		teardown()
		return func() {}
	}
	elem := s.teardowns.PushBack(teardown)
	return func() {
		if !s.closed && elem.Value != nil {
			s.teardowns.Remove(elem)
			elem.Value = nil
		}
	}
}

// Cancel stops the delivery of any further notifications and runs all
// teardowns in the order they were added. Cancelling more than once is a
// no-op.
func (s *Subscription) Cancel() {
	if s.closed {
		return
	}
	s.closed = true
	for elem := s.teardowns.Front(); elem != nil; elem = s.teardowns.Front() {
		s.teardowns.Remove(elem)
		if teardown, ok := elem.Value.(func()); ok {
			elem.Value = nil
			teardown()
		}
	}
}

// Closed returns true if the subscription has been cancelled or its stream
// has terminated.
func (s *Subscription) Closed() bool {
	return s.closed
}
