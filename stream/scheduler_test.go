// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

import (
	"context"
	"testing"
	"time"
)

func TestVirtualSchedulerOrder(t *testing.T) {
	vs := NewVirtualScheduler()
	var order []string
	push := func(s string) func() { return func() { order = append(order, s) } }

	vs.Schedule(time.Second, push("b1"))
	vs.Schedule(0, push("a"))
	vs.Schedule(time.Second, push("b2"))
	vs.Schedule(-time.Second, push("negative"))
	vs.Schedule(time.Second, func() {
		push("b3")()
		// scheduled for the same instant, runs after everything already due
		vs.Schedule(0, push("b4"))
	})
	vs.Schedule(2*time.Second, push("c"))

	vs.Flush()
	assertSlice(t, "order", []string{"a", "negative", "b1", "b2", "b3", "b4", "c"}, order)
	if vs.Elapsed() != 2*time.Second {
		t.Fatalf("expected clock at 2s, got %s", vs.Elapsed())
	}
}

func TestVirtualSchedulerCancel(t *testing.T) {
	vs := NewVirtualScheduler()
	ran := 0
	cancel := vs.Schedule(time.Second, func() { ran++ })
	vs.Schedule(time.Second, func() { ran += 10 })
	if vs.Pending() != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", vs.Pending())
	}
	cancel()
	cancel()
	if vs.Pending() != 1 {
		t.Fatalf("expected 1 pending task, got %d", vs.Pending())
	}
	vs.Flush()
	if ran != 10 {
		t.Fatalf("cancelled task ran")
	}

	// A task cancelled by a task due at the same instant does not run.
	var cancel2 func()
	vs.Schedule(time.Second, func() { cancel2() })
	cancel2 = vs.Schedule(time.Second, func() { ran++ })
	vs.Flush()
	if ran != 10 {
		t.Fatalf("task cancelled at its due time ran")
	}
}

func TestVirtualSchedulerAdvance(t *testing.T) {
	vs := NewVirtualScheduler()
	var times []time.Duration
	for _, d := range []time.Duration{100 * ms, 200 * ms, 300 * ms} {
		vs.Schedule(d, func() { times = append(times, vs.Elapsed()) })
	}

	vs.AdvanceBy(250 * ms)
	assertSlice(t, "AdvanceBy", []time.Duration{100 * ms, 200 * ms}, times)
	if vs.Elapsed() != 250*ms {
		t.Fatalf("expected clock at 250ms, got %s", vs.Elapsed())
	}

	// Moving backwards keeps the clock.
	vs.AdvanceTo(VirtualEpoch)
	if vs.Elapsed() != 250*ms {
		t.Fatalf("clock moved backwards to %s", vs.Elapsed())
	}

	vs.AdvanceTo(VirtualEpoch.Add(time.Second))
	assertSlice(t, "AdvanceTo", []time.Duration{100 * ms, 200 * ms, 300 * ms}, times)
	if vs.Elapsed() != time.Second || vs.Pending() != 0 {
		t.Fatalf("expected clock at 1s with nothing pending, got %s and %d", vs.Elapsed(), vs.Pending())
	}
}

func TestLoop(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- l.Run(ctx) }()

	done := make(chan []int, 1)
	var order []int
	l.Schedule(30*time.Millisecond, func() {
		order = append(order, 3)
		done <- order
	})
	l.Schedule(10*time.Millisecond, func() { order = append(order, 2) })
	l.Post(func() { order = append(order, 1) })
	cancelled := l.Schedule(20*time.Millisecond, func() { order = append(order, -1) })
	cancelled()

	select {
	case got := <-done:
		assertSlice(t, "order", []int{1, 2, 3}, got)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for tasks")
	}

	cancel()
	if err := <-errs; err != context.Canceled {
		t.Fatalf("expected context.Canceled from Run, got %v", err)
	}
}

func TestLoopInterval(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go l.Run(ctx)

	start := time.Now()
	xs, err := Collect(ctx, l, Take(3, Interval(10*time.Millisecond)))
	assertNil(t, "Collect", err)
	assertSlice(t, "Collect", []int{0, 1, 2}, xs)
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected at least 30ms to pass, got %s", elapsed)
	}
}
