// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rxcards/rxcards/metrics"
	"github.com/rxcards/rxcards/stream"
	"github.com/rxcards/rxcards/tracing"
)

// Config configures the runner.
type Config struct {
	// Timeout cancels runs that have not terminated in time.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// TimeScale multiplies the durations of the timed cards.
	TimeScale float64 `mapstructure:"time_scale" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		TimeScale: 1,
	}
}

// Result is the outcome of a finished run. Output holds the emitted items in
// order. Err is the error the card terminated with, or ErrRunTimeout or the
// context error when the run was cancelled.
type Result struct {
	ID        string        `json:"id"`
	Card      string        `json:"card"`
	Output    []Emission    `json:"output"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Cancelled bool          `json:"cancelled"`
}

// Runner executes cards on a single event loop.
type Runner struct {
	cfg    Config
	log    zerolog.Logger
	loop   *stream.Loop
	tracer trace.Tracer

	stop func()
	wg   sync.WaitGroup
}

// NewRunner creates a runner and starts its loop. Close stops it.
func NewRunner(cfg Config, log zerolog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		cfg:    cfg,
		log:    log.With().Str("component", "runner").Logger(),
		loop:   stream.NewLoop(),
		tracer: tracing.Tracer(),
		stop:   cancel,
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop.Run(ctx)
	}()
	return r
}

// Close stops the loop. Runs still in progress never finish.
func (r *Runner) Close() {
	r.stop()
	r.wg.Wait()
}

// Loop returns the loop the runner executes on.
func (r *Runner) Loop() *stream.Loop {
	return r.loop
}

type runOptions struct {
	clicks []time.Duration
}

type RunOption func(*runOptions)

// WithClicks clicks at the given offsets from the start of the run.
func WithClicks(offsets ...time.Duration) RunOption {
	return func(o *runOptions) { o.clicks = append(o.clicks, offsets...) }
}

// Run executes the card 'key' and waits for it to terminate, for 'ctx' to be
// cancelled or for the run timeout.
func (r *Runner) Run(ctx context.Context, key string, opts ...RunOption) (*Result, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	run, err := r.start(ctx, key, o.clicks)
	if err != nil {
		return nil, err
	}
	for range run.Events() {
	}
	return run.Result(), nil
}

// Start begins a live run of the card 'key'. The caller must drain
// Run.Events.
func (r *Runner) Start(key string) (*Run, error) {
	return r.start(context.Background(), key, nil)
}

func (r *Runner) start(ctx context.Context, key string, clicks []time.Duration) (*Run, error) {
	card, err := Lookup(key)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := r.log.With().Str("run_id", id).Str("card", key).Logger()
	card = card.WithTimeScale(r.cfg.TimeScale).WithLogger(log)

	ctx, span := r.tracer.Start(ctx, "card.run",
		trace.WithAttributes(tracing.AttrCard.String(key), tracing.AttrRunID.String(id)))
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)

	run := &Run{
		ID:     id,
		Card:   card,
		loop:   r.loop,
		clicks: stream.NewSubject[struct{}](),
		cancel: cancel,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		output: make([]Emission, 0),
	}

	pipeline := materialize(stream.Trace(card.Build(clickSource(run.clicks, clicks)), log, key))
	items, errs := stream.ToChannels(ctx, r.loop, pipeline)

	metrics.ActiveRuns.Inc()
	log.Info().Str("kind", string(card.Kind)).Msg("Run started")
	start := time.Now()

	go func() {
		defer close(run.done)
		defer close(run.events)
		defer cancel()
		defer metrics.ActiveRuns.Dec()
		defer span.End()

		outcome := "complete"
		for ev := range items {
			switch ev.Type {
			case EventNext:
				run.output = append(run.output, Emission{Offset: ev.Offset, Value: ev.Value})
				metrics.EmissionsTotal.WithLabelValues(key).Inc()
			case EventError:
				outcome = "error"
				run.err = ev.err
			}
			run.duration = ev.Offset
			metrics.LoopTasks.Set(float64(r.loop.Pending()))
			run.events <- ev
		}

		if err := <-errs; err != nil {
			outcome = "cancelled"
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = "timeout"
				err = ErrRunTimeout
			}
			run.err = err
			run.cancelled = true
			run.duration = time.Since(start)
			run.events <- Event{Type: EventCancelled, Offset: run.duration, Error: err.Error(), err: err}
		}

		span.SetAttributes(tracing.AttrItems.Int(len(run.output)))
		if run.err != nil {
			span.RecordError(run.err)
			span.SetStatus(codes.Error, run.err.Error())
		}
		metrics.RunsTotal.WithLabelValues(key, outcome).Inc()
		metrics.LoopTasks.Set(float64(r.loop.Pending()))
		metrics.RunDuration.WithLabelValues(key).Observe(run.duration.Seconds())

		ev := log.Info()
		if run.err != nil {
			ev = ev.Err(run.err)
		}
		ev.Str("outcome", outcome).
			Int("items", len(run.output)).
			Dur("duration", run.duration).
			Msg("Run finished")
	}()
	return run, nil
}

// Run is a card run in progress.
type Run struct {
	ID   string
	Card Card

	loop   *stream.Loop
	clicks *stream.Subject[struct{}]
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}

	// Written by the run goroutine before 'done' is closed.
	output    []Emission
	err       error
	cancelled bool
	duration  time.Duration
}

// Events returns the notifications of the run. The channel is closed after
// the terminal event (complete, error or cancelled).
func (r *Run) Events() <-chan Event {
	return r.events
}

// Click delivers a click to the run.
func (r *Run) Click() {
	r.loop.Post(func() { r.clicks.Next(struct{}{}) })
}

// Cancel stops the run. The last event is then a cancelled event.
func (r *Run) Cancel() {
	r.cancel()
}

// Done is closed when the run has finished and its events have been
// consumed.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Result waits for the run to finish and returns its result.
func (r *Run) Result() *Result {
	<-r.done
	res := &Result{
		ID:        r.ID,
		Card:      r.Card.Key,
		Output:    r.output,
		Err:       r.err,
		Duration:  r.duration,
		Cancelled: r.cancelled,
	}
	if r.err != nil {
		res.Error = r.err.Error()
	}
	return res
}
