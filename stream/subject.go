// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

// Subject is a hot observable that is fed by its owner. Every subscriber
// receives the items emitted after it subscribed. Once the subject has
// terminated, new subscribers receive the terminal notification right away.
//
// Like the rest of the engine a subject is not safe for concurrent use: feed
// it from the scheduler goroutine (e.g. with Loop.Post).
type Subject[T any] struct {
	subs  map[*Subscriber[T]]struct{}
	order []*Subscriber[T]
	done  bool
	err   error
}

func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[*Subscriber[T]]struct{})}
}

func (sub *Subject[T]) Subscribe(sch Scheduler, obs Observer[T]) *Subscription {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			if sub.done {
				if sub.err != nil {
					s.Error(sub.err)
				} else {
					s.Complete()
				}
				return
			}
			sub.subs[s] = struct{}{}
			sub.order = append(sub.order, s)
			s.Add(func() { sub.remove(s) })
		}).Subscribe(sch, obs)
}

func (sub *Subject[T]) remove(s *Subscriber[T]) {
	if _, ok := sub.subs[s]; !ok {
		return
	}
	delete(sub.subs, s)
	for i, o := range sub.order {
		if o == s {
			sub.order = append(sub.order[:i:i], sub.order[i+1:]...)
			break
		}
	}
}

// snapshot returns the current subscribers in subscription order so that
// subscribers added or removed during delivery do not disturb the loop.
func (sub *Subject[T]) snapshot() []*Subscriber[T] {
	return append([]*Subscriber[T](nil), sub.order...)
}

// Next emits 'item' to all current subscribers.
func (sub *Subject[T]) Next(item T) {
	if sub.done {
		return
	}
	for _, s := range sub.snapshot() {
		s.Next(item)
	}
}

// Error terminates the subject and all its subscribers with 'err'.
func (sub *Subject[T]) Error(err error) {
	if sub.done {
		return
	}
	sub.done, sub.err = true, err
	for _, s := range sub.snapshot() {
		s.Error(err)
	}
}

// Complete terminates the subject and all its subscribers.
func (sub *Subject[T]) Complete() {
	if sub.done {
		return
	}
	sub.done = true
	for _, s := range sub.snapshot() {
		s.Complete()
	}
}

// Observers returns the number of live subscribers.
func (sub *Subject[T]) Observers() int {
	return len(sub.subs)
}
