// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"errors"
	"testing"
	"time"
)

//
// Test helpers
//

func assertSlice[T comparable](t *testing.T, what string, expected []T, actual []T) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("assertSlice[%s]: expected %d items, got %d (%v)", what, len(expected), len(actual), actual)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Fatalf("assertSlice[%s]: at index %d, expected %v, got %v", what, i, expected[i], actual[i])
		}
	}
}

func assertTuples[T comparable](t *testing.T, what string, expected [][]T, actual [][]T) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("assertTuples[%s]: expected %d tuples, got %d (%v)", what, len(expected), len(actual), actual)
	}
	for i := range expected {
		assertSlice(t, what, expected[i], actual[i])
	}
}

func assertNil(t *testing.T, what string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error in %s: %s", what, err)
	}
}

func assertErrorIs(t *testing.T, what string, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("%s: expected error %q, got %v", what, target, err)
	}
}

var errTest = errors.New("test error")

// timed creates a cold observable that emits the given items at their offsets
// from the subscription and completes at 'complete'.
func timed[T any](complete time.Duration, items ...Recorded[T]) Observable[T] {
	return Create(
		func(sch Scheduler, s *Subscriber[T]) {
			for _, item := range items {
				item := item
				s.Add(sch.Schedule(item.Offset, func() { s.Next(item.Value) }))
			}
			s.Add(sch.Schedule(complete, s.Complete))
		})
}

func at[T any](offset time.Duration, value T) Recorded[T] {
	return Recorded[T]{Offset: offset, Value: value}
}

// recorder is an observer that keeps track of everything it receives, including
// calls that violate the observer contract.
type recorder[T any] struct {
	vs        *VirtualScheduler
	start     time.Time
	sub       *Subscription
	items     []Recorded[T]
	err       error
	errors    int
	completes int
	late      int
}

func record[T any](vs *VirtualScheduler, src Observable[T]) *recorder[T] {
	r := &recorder[T]{vs: vs, start: vs.Now()}
	r.sub = src.Subscribe(vs, r.observer())
	return r
}

func (r *recorder[T]) terminated() bool {
	return r.errors+r.completes > 0
}

func (r *recorder[T]) observer() Observer[T] {
	return Observer[T]{
		Start: func(sub *Subscription) { r.sub = sub },
		Next: func(item T) {
			if r.terminated() {
				r.late++
			}
			r.items = append(r.items, Recorded[T]{Offset: r.vs.Now().Sub(r.start), Value: item})
		},
		Error: func(err error) {
			r.errors++
			r.err = err
		},
		Complete: func() { r.completes++ },
	}
}

func (r *recorder[T]) values() []T {
	out := make([]T, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Value)
	}
	return out
}

func (r *recorder[T]) offsets() []time.Duration {
	out := make([]time.Duration, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item.Offset)
	}
	return out
}

func (r *recorder[T]) assertCompleted(t *testing.T, what string) {
	t.Helper()
	if r.completes != 1 || r.errors != 0 || r.late != 0 {
		t.Fatalf("%s: expected a single completion, got completes=%d errors=%d (%v) late=%d",
			what, r.completes, r.errors, r.err, r.late)
	}
}

func (r *recorder[T]) assertError(t *testing.T, what string, target error) {
	t.Helper()
	if r.errors != 1 || r.completes != 0 || r.late != 0 {
		t.Fatalf("%s: expected a single error, got completes=%d errors=%d late=%d",
			what, r.completes, r.errors, r.late)
	}
	assertErrorIs(t, what, r.err, target)
}

func (r *recorder[T]) assertRunning(t *testing.T, what string) {
	t.Helper()
	if r.terminated() {
		t.Fatalf("%s: expected stream to be running, got completes=%d errors=%d (%v)",
			what, r.completes, r.errors, r.err)
	}
}
