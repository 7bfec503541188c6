// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package stream

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Scheduler drives the time-based parts of a stream. All tasks of a
// scheduler run sequentially on a single goroutine.
type Scheduler interface {
	// Now returns the current time of the scheduler.
	Now() time.Time

	// Schedule runs 'task' after 'delay'. Tasks that are due at the same
	// instant run in the order they were scheduled. The returned function
	// cancels the task; a cancelled task never runs.
	Schedule(delay time.Duration, task func()) (cancel func())
}

type timerTask struct {
	due       time.Time
	seq       uint64
	task      func()
	index     int
	cancelled bool
}

// timerQueue is a min-heap of tasks ordered by due time and then by
// scheduling order.
type timerQueue []*timerTask

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timerTask)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

func (q *timerQueue) peek() *timerTask {
	if len(*q) == 0 {
		return nil
	}
	return (*q)[0]
}

func (q *timerQueue) remove(t *timerTask) {
	t.cancelled = true
	if t.index >= 0 {
		heap.Remove(q, t.index)
	}
}

//
// Virtual time
//

// VirtualEpoch is the time at which every VirtualScheduler starts.
var VirtualEpoch = time.Unix(0, 0).UTC()

// VirtualScheduler is a scheduler with a manually advanced clock. Time only
// moves inside AdvanceBy, AdvanceTo and Flush, and every task observes Now()
// as its own due time. Meant for tests and for deterministic replays.
type VirtualScheduler struct {
	now   time.Time
	seq   uint64
	queue timerQueue
}

func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{now: VirtualEpoch}
}

func (vs *VirtualScheduler) Now() time.Time {
	return vs.now
}

// Elapsed returns the virtual time passed since VirtualEpoch.
func (vs *VirtualScheduler) Elapsed() time.Duration {
	return vs.now.Sub(VirtualEpoch)
}

func (vs *VirtualScheduler) Schedule(delay time.Duration, task func()) func() {
	if delay < 0 {
		delay = 0
	}
	t := &timerTask{due: vs.now.Add(delay), seq: vs.seq, task: task}
	vs.seq++
	heap.Push(&vs.queue, t)
	return func() {
		if !t.cancelled {
			vs.queue.remove(t)
		}
	}
}

// Pending returns the number of tasks waiting to run.
func (vs *VirtualScheduler) Pending() int {
	return len(vs.queue)
}

// AdvanceBy moves the clock forward by 'd', running every task that falls due
// on the way, including tasks scheduled by those tasks.
func (vs *VirtualScheduler) AdvanceBy(d time.Duration) {
	vs.AdvanceTo(vs.now.Add(d))
}

// AdvanceTo moves the clock to 't'. Moving backwards is not possible, the
// due tasks are run and the clock stays where it was.
func (vs *VirtualScheduler) AdvanceTo(t time.Time) {
	for {
		next := vs.queue.peek()
		if next == nil || next.due.After(t) {
			break
		}
		vs.runNext()
	}
	if t.After(vs.now) {
		vs.now = t
	}
}

// Flush runs tasks until the queue is empty. A source that never stops
// scheduling (e.g. Interval without Take) makes Flush loop forever.
func (vs *VirtualScheduler) Flush() {
	for vs.queue.Len() > 0 {
		vs.runNext()
	}
}

func (vs *VirtualScheduler) runNext() {
	t := heap.Pop(&vs.queue).(*timerTask)
	if t.due.After(vs.now) {
		vs.now = t.due
	}
	if !t.cancelled {
		t.cancelled = true
		t.task()
	}
}

//
// Real time
//

// Loop is a real-time scheduler that executes all of its tasks on the
// goroutine that calls Run. Schedule and Post may be called from any
// goroutine, which makes Loop the bridge between the stream engine and the
// rest of the program.
type Loop struct {
	mu    sync.Mutex
	seq   uint64
	queue timerQueue
	wake  chan struct{}
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) Schedule(delay time.Duration, task func()) func() {
	if delay < 0 {
		delay = 0
	}
	l.mu.Lock()
	t := &timerTask{due: time.Now().Add(delay), seq: l.seq, task: task}
	l.seq++
	heap.Push(&l.queue, t)
	first := l.queue.peek() == t
	l.mu.Unlock()

	if first {
		l.notify()
	}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if !t.cancelled {
			l.queue.remove(t)
		}
	}
}

// Post runs 'task' on the loop goroutine as soon as possible.
func (l *Loop) Post(task func()) {
	l.Schedule(0, task)
}

// Pending returns the number of tasks waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes tasks as they fall due until 'ctx' is cancelled. Tasks still
// queued when Run returns are kept and run by the next call to Run.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		l.mu.Lock()
		next := l.queue.peek()
		var wait time.Duration
		if next != nil {
			wait = time.Until(next.due)
			if wait <= 0 {
				heap.Pop(&l.queue)
				next.cancelled = true
				l.mu.Unlock()

				next.task()
				if err := ctx.Err(); err != nil {
					return err
				}
				continue
			}
		} else {
			wait = time.Hour
		}
		l.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
	}
}
