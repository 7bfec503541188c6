// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

import (
	"errors"
	"fmt"
)

// ErrNoElements is returned by ForkJoin when a source completes without
// emitting anything.
var ErrNoElements = errors.New("no elements in sequence")

// Merge multiple observables into one. Items are forwarded in the order they
// arrive. The result completes when all sources have completed. Error from
// any one of the sources cancels the others and terminates the stream.
func Merge[T any](srcs ...Observable[T]) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			running := len(srcs)
			if running == 0 {
				s.Complete()
				return
			}
			for _, src := range srcs {
				if s.Done() {
					return
				}
				observe(s.Subscription, sch, src, Observer[T]{
					Next:  s.Next,
					Error: s.Error,
					Complete: func() {
						running--
						if running == 0 {
							s.Complete()
						}
					},
				})
			}
		})
}

// Concat takes one or more observable of the same type and emits the items from each of
// them in order.
func Concat[T any](srcs ...Observable[T]) Observable[T] {
	return ConcatMap(
		FromSlice(srcs),
		func(src Observable[T]) Observable[T] { return src })
}

// ForkJoin waits for all sources to complete and emits a single slice with
// the last item of each source, in the order of the sources. If a source
// completes without emitting the result fails with ErrNoElements.
func ForkJoin[T any](srcs ...Observable[T]) Observable[[]T] {
	return Create(
		func(sch Scheduler, s *Subscriber[[]T]) {
			n := len(srcs)
			if n == 0 {
				s.Complete()
				return
			}
			var (
				last    = make([]T, n)
				has     = make([]bool, n)
				running = n
			)
			for i, src := range srcs {
				if s.Done() {
					return
				}
				i := i
				observe(s.Subscription, sch, src, Observer[T]{
					Next: func(item T) {
						last[i], has[i] = item, true
					},
					Error: s.Error,
					Complete: func() {
						if !has[i] {
							s.Error(fmt.Errorf("ForkJoin source %d: %w", i, ErrNoElements))
							return
						}
						running--
						if running == 0 {
							s.Next(append([]T(nil), last...))
							s.Complete()
						}
					},
				})
			}
		})
}

// CombineLatest emits a slice of the latest item of each source whenever any
// source emits, once every source has emitted at least once. It completes when
// all sources have completed, or as soon as a source completes without ever
// having emitted.
func CombineLatest[T any](srcs ...Observable[T]) Observable[[]T] {
	return Create(
		func(sch Scheduler, s *Subscriber[[]T]) {
			n := len(srcs)
			if n == 0 {
				s.Complete()
				return
			}
			var (
				latest  = make([]T, n)
				has     = make([]bool, n)
				seen    int
				running = n
			)
			for i, src := range srcs {
				if s.Done() {
					return
				}
				i := i
				observe(s.Subscription, sch, src, Observer[T]{
					Next: func(item T) {
						latest[i] = item
						if !has[i] {
							has[i] = true
							seen++
						}
						if seen == n {
							s.Next(append([]T(nil), latest...))
						}
					},
					Error: s.Error,
					Complete: func() {
						running--
						if !has[i] || running == 0 {
							s.Complete()
						}
					},
				})
			}
		})
}

// Zip pairs up the items of the sources by index: the i'th emitted slice
// holds the i'th item of every source. Items are buffered until all sources
// have produced them. The result completes once a completed source has no
// buffered items left.
func Zip[T any](srcs ...Observable[T]) Observable[[]T] {
	return Create(
		func(sch Scheduler, s *Subscriber[[]T]) {
			n := len(srcs)
			if n == 0 {
				s.Complete()
				return
			}
			var (
				buffers   = make([][]T, n)
				completed = make([]bool, n)
			)
			exhausted := func() bool {
				for i := range buffers {
					if completed[i] && len(buffers[i]) == 0 {
						return true
					}
				}
				return false
			}
			for i, src := range srcs {
				if s.Done() {
					return
				}
				i := i
				observe(s.Subscription, sch, src, Observer[T]{
					Next: func(item T) {
						buffers[i] = append(buffers[i], item)
						for _, buf := range buffers {
							if len(buf) == 0 {
								return
							}
						}
						tuple := make([]T, n)
						for j := range buffers {
							tuple[j] = buffers[j][0]
							buffers[j] = buffers[j][1:]
						}
						s.Next(tuple)
						if exhausted() {
							s.Complete()
						}
					},
					Error: s.Error,
					Complete: func() {
						completed[i] = true
						if len(buffers[i]) == 0 {
							s.Complete()
						}
					},
				})
			}
		})
}
