// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

type Observable[T any] interface {
	// Subscribe starts a new, independent execution of the stream on the
	// given scheduler and returns its subscription.
	//
	// Implementations of Subscribe() must maintain the following invariants:
	// - obs.Start is called exactly once, before any other callback, with the
	//   returned subscription.
	// - obs.Next is never called after obs.Error or obs.Complete, and at most
	//   one of those two is called, at most once.
	// - No callback is invoked after the subscription has been cancelled.
	// - Any timers or upstream subscriptions are torn down when the
	//   subscription is cancelled or the stream terminates.
	//
	// Values may be delivered synchronously from within Subscribe() (e.g. Of)
	// or later from scheduler tasks (e.g. Interval). Use Create() to implement
	// new observables, it takes care of the invariants above.
	Subscribe(sch Scheduler, obs Observer[T]) *Subscription
}

// Observer is the set of callbacks a subscriber receives. Nil callbacks are
// ignored.
type Observer[T any] struct {
	// Start is called with the subscription before anything else, which allows
	// cancelling from within Next even when values are emitted synchronously.
	Start func(*Subscription)

	Next     func(T)
	Error    func(error)
	Complete func()
}

// FuncObservable wraps a function that implements Subscribe. Convenience when declaring
// a struct to implement Subscribe() is overkill.
type FuncObservable[T any] func(Scheduler, Observer[T]) *Subscription

func (f FuncObservable[T]) Subscribe(sch Scheduler, obs Observer[T]) *Subscription {
	return f(sch, obs)
}

// Subscriber is the producing end of a subscription. It forwards to the
// observer while the subscription is live and tears the subscription down on
// termination.
type Subscriber[T any] struct {
	*Subscription

	obs  Observer[T]
	done bool
}

func newSubscriber[T any](obs Observer[T]) *Subscriber[T] {
	return &Subscriber[T]{Subscription: NewSubscription(), obs: obs}
}

// Next emits an item. Dropped if the subscriber has terminated or was
// cancelled.
func (s *Subscriber[T]) Next(item T) {
	if s.Done() {
		return
	}
	if s.obs.Next != nil {
		s.obs.Next(item)
	}
}

// Error terminates the stream with an error.
func (s *Subscriber[T]) Error(err error) {
	if s.Done() {
		return
	}
	s.done = true
	if s.obs.Error != nil {
		s.obs.Error(err)
	}
	s.Cancel()
}

// Complete terminates the stream successfully.
func (s *Subscriber[T]) Complete() {
	if s.Done() {
		return
	}
	s.done = true
	if s.obs.Complete != nil {
		s.obs.Complete()
	}
	s.Cancel()
}

// Done returns true once the subscriber has terminated or has been
// cancelled. Producers should stop emitting when this returns true.
func (s *Subscriber[T]) Done() bool {
	return s.done || s.Closed()
}

// Create builds an observable from a producer function. For each subscription
// 'produce' is called with a fresh Subscriber after the observer has received
// its subscription. The producer registers teardowns with Subscriber.Add.
func Create[T any](produce func(sch Scheduler, s *Subscriber[T])) Observable[T] {
	return FuncObservable[T](
		func(sch Scheduler, obs Observer[T]) *Subscription {
			s := newSubscriber(obs)
			if obs.Start != nil {
				obs.Start(s.Subscription)
			}
			if !s.Done() {
				produce(sch, s)
			}
			return s.Subscription
		})
}

// observe subscribes to 'src' on behalf of 'parent': the upstream
// subscription is attached to parent before the first item is delivered and
// detached again when the upstream terminates.
func observe[T any](parent *Subscription, sch Scheduler, src Observable[T], obs Observer[T]) *Subscription {
	var detach func()
	wrapped := Observer[T]{
		Start: func(sub *Subscription) {
			detach = parent.Add(sub.Cancel)
			if obs.Start != nil {
				obs.Start(sub)
			}
		},
		Next: obs.Next,
		Error: func(err error) {
			if detach != nil {
				detach()
			}
			if obs.Error != nil {
				obs.Error(err)
			}
		},
		Complete: func() {
			if detach != nil {
				detach()
			}
			if obs.Complete != nil {
				obs.Complete()
			}
		},
	}
	return src.Subscribe(sch, wrapped)
}
