// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

//
// Higher-order operators: map each item to an observable and flatten.
//

// SwitchMap maps each item to an observable and emits the items of the most
// recent one. A new item cancels the previous inner observable. The result
// completes when the source and the active inner observable have completed.
func SwitchMap[A, B any](src Observable[A], apply func(A) Observable[B]) Observable[B] {
	return Create(
		func(sch Scheduler, s *Subscriber[B]) {
			var (
				inner     *Subscription
				outerDone bool
			)
			s.Add(func() {
				if inner != nil {
					inner.Cancel()
				}
			})

			observe(s.Subscription, sch, src, Observer[A]{
				Next: func(a A) {
					if inner != nil {
						inner.Cancel()
						inner = nil
					}
					var current *Subscription
					apply(a).Subscribe(sch, Observer[B]{
						Start: func(sub *Subscription) {
							current = sub
							inner = sub
						},
						Next:  s.Next,
						Error: s.Error,
						Complete: func() {
							if inner == current {
								inner = nil
							}
							if outerDone {
								s.Complete()
							}
						},
					})
				},
				Error: s.Error,
				Complete: func() {
					outerDone = true
					if inner == nil {
						s.Complete()
					}
				},
			})
		})
}

// MergeMap maps each item to an observable and subscribes to all of them at
// once. Items are forwarded as they arrive. The result completes when the
// source and all inner observables have completed.
func MergeMap[A, B any](src Observable[A], apply func(A) Observable[B]) Observable[B] {
	return MergeMapN(src, 0, apply)
}

// ConcatMap maps each item to an observable and subscribes to them one at a
// time in the order of the source items.
func ConcatMap[A, B any](src Observable[A], apply func(A) Observable[B]) Observable[B] {
	return MergeMapN(src, 1, apply)
}

// FlatMap is an alias of MergeMap.
func FlatMap[A, B any](src Observable[A], apply func(A) Observable[B]) Observable[B] {
	return MergeMap(src, apply)
}

// Flatten takes an observable of slices of T and returns an observable of T.
func Flatten[T any](src Observable[[]T]) Observable[T] {
	return ConcatMap(
		src,
		func(items []T) Observable[T] {
			return FromSlice(items)
		})
}

// MergeMapN is MergeMap with at most 'concurrency' active inner observables.
// Source items that arrive while the limit is reached are queued and mapped
// in order as inner observables complete. A concurrency of zero or less
// means no limit.
func MergeMapN[A, B any](src Observable[A], concurrency int, apply func(A) Observable[B]) Observable[B] {
	return Create(
		func(sch Scheduler, s *Subscriber[B]) {
			var (
				active    = make(map[*Subscription]struct{})
				queue     []A
				outerDone bool
				run       func(a A)
			)
			s.Add(func() {
				for sub := range active {
					sub.Cancel()
				}
			})

			full := func() bool {
				return concurrency > 0 && len(active) >= concurrency
			}
			maybeComplete := func() {
				if outerDone && len(active) == 0 && len(queue) == 0 {
					s.Complete()
				}
			}

			run = func(a A) {
				var current *Subscription
				apply(a).Subscribe(sch, Observer[B]{
					Start: func(sub *Subscription) {
						current = sub
						active[sub] = struct{}{}
					},
					Next:  s.Next,
					Error: s.Error,
					Complete: func() {
						delete(active, current)
						for len(queue) > 0 && !full() && !s.Done() {
							next := queue[0]
							queue = queue[1:]
							run(next)
						}
						maybeComplete()
					},
				})
			}

			observe(s.Subscription, sch, src, Observer[A]{
				Next: func(a A) {
					if full() {
						queue = append(queue, a)
						return
					}
					run(a)
				},
				Error: s.Error,
				Complete: func() {
					outerDone = true
					maybeComplete()
				},
			})
		})
}
