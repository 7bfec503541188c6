// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

import (
	"testing"
	"time"
)

const ms = time.Millisecond

func TestDebounceTime(t *testing.T) {
	// 1. burst followed by silence: only the last item, one period later
	{
		vs := NewVirtualScheduler()
		src := timed(5*time.Second, at(0, 1), at(200*ms, 2), at(400*ms, 3))
		r := record(vs, DebounceTime(src, time.Second))
		vs.AdvanceBy(1399 * ms)
		if len(r.items) != 0 {
			t.Fatalf("case 1: expected nothing before 1400ms, got %v", r.values())
		}
		vs.Flush()
		assertSlice(t, "case 1", []int{3}, r.values())
		assertSlice(t, "case 1 offsets", []time.Duration{1400 * ms}, r.offsets())
		r.assertCompleted(t, "case 1")
	}

	// 2. completion flushes the pending item
	{
		vs := NewVirtualScheduler()
		src := timed(500*ms, at(0, 1), at(100*ms, 2))
		r := record(vs, DebounceTime(src, time.Second))
		vs.Flush()
		assertSlice(t, "case 2", []int{2}, r.values())
		assertSlice(t, "case 2 offsets", []time.Duration{500 * ms}, r.offsets())
		r.assertCompleted(t, "case 2")
		if vs.Elapsed() != 500*ms {
			t.Fatalf("case 2: debounce timer should have been cancelled, clock at %s", vs.Elapsed())
		}
	}

	// 3. separate bursts
	{
		vs := NewVirtualScheduler()
		src := timed(10*time.Second, at(0, 1), at(2*time.Second, 2), at(2500*ms, 3))
		r := record(vs, DebounceTime(src, time.Second))
		vs.Flush()
		assertSlice(t, "case 3", []int{1, 3}, r.values())
		assertSlice(t, "case 3 offsets", []time.Duration{time.Second, 3500 * ms}, r.offsets())
	}

	// 4. an error drops the pending item
	{
		vs := NewVirtualScheduler()
		src := Concat(timed(100*ms, at(0, 1)), Error[int](errTest))
		r := record(vs, DebounceTime(src, time.Second))
		vs.Flush()
		assertSlice(t, "case 4", []int{}, r.values())
		r.assertError(t, "case 4", errTest)
	}

	// 5. empty source completes right away
	{
		vs := NewVirtualScheduler()
		r := record(vs, DebounceTime(Empty[int](), time.Second))
		r.assertCompleted(t, "case 5")
	}
}

func TestDebounceInvalidConfig(t *testing.T) {
	_, err := ToSlice(NewVirtualScheduler(), Debounce(Of(1), DebounceConfig{}))
	if err == nil {
		t.Fatalf("expected validation error for zero duration")
	}
	_, err = ToSlice(NewVirtualScheduler(), ThrottleTime(Of(1), -time.Second))
	if err == nil {
		t.Fatalf("expected validation error for negative duration")
	}
}

func TestThrottleTime(t *testing.T) {
	vs := NewVirtualScheduler()
	src := timed(3*time.Second,
		at(0, 1),
		at(300*ms, 2),
		at(900*ms, 3),
		at(1200*ms, 4),
		at(1500*ms, 5),
		at(2600*ms, 6),
	)
	r := record(vs, ThrottleTime(src, time.Second))
	vs.Flush()
	assertSlice(t, "values", []int{1, 4, 6}, r.values())
	assertSlice(t, "offsets", []time.Duration{0, 1200 * ms, 2600 * ms}, r.offsets())
	r.assertCompleted(t, "ThrottleTime")

	// Completion passes through while the window is open.
	vs = NewVirtualScheduler()
	r = record(vs, ThrottleTime(timed(100*ms, at(0, 1), at(50*ms, 2)), time.Second))
	vs.Flush()
	assertSlice(t, "case 2", []int{1}, r.values())
	assertSlice(t, "case 2 offsets", []time.Duration{0}, r.offsets())
	r.assertCompleted(t, "case 2")
	if vs.Elapsed() != 100*ms {
		t.Fatalf("case 2: expected completion at 100ms, clock at %s", vs.Elapsed())
	}
}

func TestDelay(t *testing.T) {
	vs := NewVirtualScheduler()
	r := record(vs, Delay(Of(1, 2), 250*ms))
	if len(r.items) != 0 {
		t.Fatalf("expected no items before the delay, got %v", r.values())
	}
	vs.Flush()
	assertSlice(t, "values", []int{1, 2}, r.values())
	assertSlice(t, "offsets", []time.Duration{250 * ms, 250 * ms}, r.offsets())
	r.assertCompleted(t, "Delay")

	// Cancelling drops the items in flight.
	vs = NewVirtualScheduler()
	r = record(vs, Delay(Of(1, 2), 250*ms))
	r.sub.Cancel()
	vs.Flush()
	if len(r.items) != 0 || r.terminated() {
		t.Fatalf("expected nothing after cancel, got %v", r.values())
	}
}
