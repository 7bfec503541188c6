// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

// Map applies a function onto an observable.
func Map[A, B any](src Observable[A], apply func(A) B) Observable[B] {
	return Create(
		func(sch Scheduler, s *Subscriber[B]) {
			observe(s.Subscription, sch, src, Observer[A]{
				Next:     func(a A) { s.Next(apply(a)) },
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// TryMap applies a fallible function onto an observable. The first error
// returned by 'apply' terminates the stream with that error.
func TryMap[A, B any](src Observable[A], apply func(A) (B, error)) Observable[B] {
	return Create(
		func(sch Scheduler, s *Subscriber[B]) {
			observe(s.Subscription, sch, src, Observer[A]{
				Next: func(a A) {
					b, err := apply(a)
					if err != nil {
						s.Error(err)
						return
					}
					s.Next(b)
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// Tap calls the supplied function on each emitted item and passes the item
// on unchanged.
func Tap[T any](src Observable[T], f func(T)) Observable[T] {
	return Map(src, func(item T) T {
		f(item)
		return item
	})
}

// TryTap is Tap with a fallible side effect. An error from 'f' terminates
// the stream.
func TryTap[T any](src Observable[T], f func(T) error) Observable[T] {
	return TryMap(src, func(item T) (T, error) {
		return item, f(item)
	})
}

// Filter keeps only the elements for which the filter function returns true.
func Filter[T any](src Observable[T], filter func(T) bool) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(x T) {
					if filter(x) {
						s.Next(x)
					}
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// Pluck emits the value stored under 'key' in each map emitted by the source,
// or the zero value if the key is missing.
//
// Deprecated: use Map with an accessor function.
func Pluck[K comparable, V any](src Observable[map[K]V], key K) Observable[V] {
	return Map(src, func(m map[K]V) V { return m[key] })
}

// DistinctUntilChanged suppresses items that are equal to the previously
// emitted item. The first item is always emitted.
func DistinctUntilChanged[T comparable](src Observable[T]) Observable[T] {
	return DistinctUntilChangedFunc(src, func(a, b T) bool { return a == b })
}

// DistinctUntilChangedFunc is DistinctUntilChanged with a custom equality.
func DistinctUntilChangedFunc[T any](src Observable[T], equal func(prev, cur T) bool) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			var (
				last    T
				hasLast bool
			)
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(x T) {
					if hasLast && equal(last, x) {
						return
					}
					last, hasLast = x, true
					s.Next(x)
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// Reduce takes an initial state, and a function 'reduce' that is called on each element
// along with a state and returns an observable with a single result state produced
// by the last call to 'reduce'.
func Reduce[T, Result any](src Observable[T], init Result, reduce func(Result, T) Result) Observable[Result] {
	return Create(
		func(sch Scheduler, s *Subscriber[Result]) {
			result := init
			observe(s.Subscription, sch, src, Observer[T]{
				Next:  func(x T) { result = reduce(result, x) },
				Error: s.Error,
				Complete: func() {
					s.Next(result)
					s.Complete()
				},
			})
		})
}

// Scan takes an initial state and a step function that is called on each element with the
// previous state and returns an observable of the states returned by the step function.
// E.g. Scan is like Reduce that emits the intermediate states.
func Scan[In, Out any](src Observable[In], init Out, step func(Out, In) Out) Observable[Out] {
	return Create(
		func(sch Scheduler, s *Subscriber[Out]) {
			prev := init
			observe(s.Subscription, sch, src, Observer[In]{
				Next: func(x In) {
					prev = step(prev, x)
					s.Next(prev)
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// Take takes 'n' items from the source 'src' and completes. The source is
// cancelled as soon as the n'th item has been emitted.
func Take[T any](n int, src Observable[T]) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			if n <= 0 {
				s.Complete()
				return
			}
			remaining := n
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(item T) {
					if remaining <= 0 {
						return
					}
					remaining--
					s.Next(item)
					if remaining == 0 {
						s.Complete()
					}
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// TakeWhile takes items from the source until 'pred' returns false after which
// the observable is completed.
func TakeWhile[T any](pred func(T) bool, src Observable[T]) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(item T) {
					if pred(item) {
						s.Next(item)
					} else {
						s.Complete()
					}
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// Skip skips the first 'n' items from the source.
func Skip[T any](n int, src Observable[T]) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			skip := n
			observe(s.Subscription, sch, src, Observer[T]{
				Next: func(item T) {
					if skip > 0 {
						skip--
						return
					}
					s.Next(item)
				},
				Error:    s.Error,
				Complete: s.Complete,
			})
		})
}

// StartWith emits 'items' before the items of 'src'.
func StartWith[T any](src Observable[T], items ...T) Observable[T] {
	return Concat(FromSlice(items), src)
}

//
// Retrying and error handling
//

// CatchError replaces the first error of 'src' with the observable returned
// by 'handler'. Errors from the fallback observable are not caught. A nil
// fallback completes the stream.
func CatchError[T any](src Observable[T], handler func(error) Observable[T]) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			observe(s.Subscription, sch, src, Observer[T]{
				Next: s.Next,
				Error: func(err error) {
					fallback := handler(err)
					if fallback == nil {
						s.Complete()
						return
					}
					observe(s.Subscription, sch, fallback, forward(s))
				},
				Complete: s.Complete,
			})
		})
}

// RetryFunc decides whether the processing should be retried for the given
// error. 'retries' is the number of times the current subscription has
// already been retried.
type RetryFunc func(err error, retries int) bool

// Retry resubscribes to the observable if it completes with an error.
// The retry count starts from zero for every subscription.
func Retry[T any](src Observable[T], shouldRetry RetryFunc) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			retries := 0
			var attempt func()
			attempt = func() {
				observe(s.Subscription, sch, src, Observer[T]{
					Next: s.Next,
					Error: func(err error) {
						if s.Done() {
							return
						}
						if shouldRetry(err, retries) {
							retries++
							// Resubscribe from a task to keep the stack
							// bounded when the source fails synchronously.
							var detach func()
							detach = s.Add(sch.Schedule(0, func() {
								detach()
								attempt()
							}))
							return
						}
						s.Error(err)
					},
					Complete: s.Complete,
				})
			}
			attempt()
		})
}

// AlwaysRetry always asks for a retry regardless of the error.
func AlwaysRetry(err error, retries int) bool {
	return true
}

// LimitRetries limits the number of retries with the given retry method.
// e.g. LimitRetries(AlwaysRetry, 5)
func LimitRetries(shouldRetry RetryFunc, numRetries int) RetryFunc {
	return func(err error, retries int) bool {
		return retries < numRetries && shouldRetry(err, retries)
	}
}
