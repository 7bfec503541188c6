// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

import (
	"errors"
	"strconv"
	"time"

	"github.com/rxcards/rxcards/stream"
)

var operatorCards = []Card{
	{
		Key:     "map",
		Name:    "Map",
		Details: "Transforms each value emitted by the source observable by applying a mapping function to it.",
		Snippet: `src := stream.Of(1, 2, 3)
mapped := stream.Map(src, func(x int) int { return x * 2 })`,
		Color: "yellow",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Map(stream.Of(1, 2, 3), func(x int) int { return x * 2 }))
		},
	},
	{
		Key:        "pluck",
		Name:       "Pluck",
		Details:    "Retrieves the value of a specified property from each emitted object in the source observable.",
		Deprecated: true,
		Snippet: `src := stream.Of(
	map[string]any{"name": "John", "age": 30},
	map[string]any{"name": "Alice", "age": 25})
plucked := stream.Pluck(src, "name")`,
		Color: "blue",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.Pluck(
				stream.Of(
					map[string]any{"name": "John", "age": 30},
					map[string]any{"name": "Alice", "age": 25}),
				"name")
		},
	},
	{
		Key:     "switchMap",
		Name:    "SwitchMap",
		Details: "Maps each value emitted by the source observable to an inner observable and switches to the new inner observable.",
		Snippet: `src := stream.Of(1, 2, 3)
switched := stream.SwitchMap(src, func(x int) stream.Observable[int] {
	return stream.Of(x * 10)
})`,
		Color: "green",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.SwitchMap(stream.Of(1, 2, 3),
				func(x int) stream.Observable[int] { return stream.Of(x * 10) }))
		},
	},
	{
		Key:     "concatMap",
		Name:    "ConcatMap",
		Details: "Maps each value emitted by the source observable to an inner observable and concatenates the resulting observables.",
		Snippet: `src := stream.Of(1, 2, 3)
concatenated := stream.ConcatMap(src, func(x int) stream.Observable[int] {
	return stream.Of(x, x+1)
})`,
		Color: "indigo",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.ConcatMap(stream.Of(1, 2, 3),
				func(x int) stream.Observable[int] { return stream.Of(x, x+1) }))
		},
	},
	{
		Key:     "mergeMap",
		Name:    "MergeMap",
		Details: "Maps each value emitted by the source observable to an inner observable and merges the resulting observables.",
		Snippet: `src := stream.Of(1, 2, 3)
merged := stream.MergeMap(src, func(x int) stream.Observable[int] {
	return stream.Of(x, x+1)
})`,
		Color: "purple",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.MergeMap(stream.Of(1, 2, 3),
				func(x int) stream.Observable[int] { return stream.Of(x, x+1) }))
		},
	},
	{
		Key:     "tap",
		Name:    "Tap",
		Details: "Performs a side effect for each value emitted by the source observable without modifying the emitted values.",
		Snippet: `src := stream.Of(1, 2, 3)
tapped := stream.Tap(src, func(x int) {
	log.Info().Int("value", x).Msg("Received value")
})`,
		Color: "pink",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Tap(stream.Of(1, 2, 3), func(x int) {
				e.log.Info().Int("value", x).Msg("Received value")
			}))
		},
	},
	{
		Key:     "debounceTime",
		Name:    "Debounce Time",
		Details: "Delays the emission of values from the source observable until a specified amount of time has passed without any new values.",
		Snippet: `debounced := stream.DebounceTime(clicks, time.Second)`,
		Color:   "yellow",
		Kind:    KindEvent,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Take(1, stream.DebounceTime(e.clicks, e.d(time.Second))))
		},
	},
	{
		Key:     "distinctUntilChanged",
		Name:    "Distinct Until Changed",
		Details: "Suppresses consecutive duplicate values emitted by the source observable.",
		Snippet: `src := stream.Of(1, 1, 2, 2, 3, 3)
distinct := stream.DistinctUntilChanged(src)`,
		Color: "blue",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.DistinctUntilChanged(stream.Of(1, 1, 2, 2, 3, 3)))
		},
	},
	{
		Key:     "catchError",
		Name:    "Catch Error",
		Details: "Catches errors occurring in the source observable and replaces them with a fallback observable or value.",
		Snippet: `src := stream.Create(func(sch stream.Scheduler, s *stream.Subscriber[any]) {
	s.Next(1)
	s.Next(2)
	s.Error(errors.New("Error"))
	s.Next(3)
	s.Complete()
})
caught := stream.CatchError(src, func(err error) stream.Observable[any] {
	return stream.Of[any]("Fallback")
})`,
		Color: "red",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			src := stream.Create(func(sch stream.Scheduler, s *stream.Subscriber[any]) {
				s.Next(1)
				s.Next(2)
				s.Error(errors.New("Error"))
				s.Next(3)
				s.Complete()
			})
			return stream.CatchError(src, func(err error) stream.Observable[any] {
				return stream.Of[any]("Fallback")
			})
		},
	},
	{
		Key:     "merge",
		Name:    "Merge",
		Details: "Combines multiple observables into one observable by merging their emissions.",
		Snippet: `src1 := stream.Of(1, 2, 3)
src2 := stream.Of(4, 5, 6)
merged := stream.Merge(src1, src2)`,
		Color: "orange",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Merge(stream.Of(1, 2, 3), stream.Of(4, 5, 6)))
		},
	},
	{
		Key:     "forkJoin",
		Name:    "Fork Join",
		Details: "Waits for all source observables to complete and then combines their last emitted values into an array.",
		Snippet: `src1 := stream.Of(1, 2, 3)
src2 := stream.Of(4, 5, 6)
joined := stream.ForkJoin(src1, src2)`,
		Color: "yellow",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.ForkJoin(stream.Of(1, 2, 3), stream.Of(4, 5, 6)))
		},
	},
	{
		Key:     "combineLatest",
		Name:    "Combine Latest",
		Details: "Combines the latest values from multiple source observables into an array or object.",
		Snippet: `src1 := stream.Take(3, stream.Interval(time.Second))
src2 := stream.Take(3, stream.Interval(2*time.Second))
combined := stream.CombineLatest(src1, src2)`,
		Color: "green",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.CombineLatest(
				stream.Take(3, stream.Interval(e.d(time.Second))),
				stream.Take(3, stream.Interval(e.d(2*time.Second)))))
		},
	},
	{
		Key:     "zip",
		Name:    "Zip",
		Details: "Combines the values from multiple source observables together, emitted in sequence.",
		Snippet: `src1 := stream.Of("A", "B", "C")
src2 := stream.Of(1, 2, 3)
zipped := stream.Zip2(src1, src2)`,
		Color: "blue",
		Kind:  KindOperator,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Zip(
				stream.ToAny(stream.Of("A", "B", "C")),
				stream.ToAny(stream.Of(1, 2, 3))))
		},
	},
	{
		Key:     "throttleTime",
		Name:    "Throttle Time",
		Details: "Emits a value from the source observable, then ignores subsequent values for a specified amount of time.",
		Snippet: `throttled := stream.ThrottleTime(clicks, time.Second)`,
		Color:   "purple",
		Kind:    KindEvent,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Take(1, stream.ThrottleTime(e.clicks, e.d(2*time.Second))))
		},
	},
}

// tracks are the three circle tracks: red every second, green every 500ms
// and blue every 200ms, three circles each.
func tracks(e env) []stream.Observable[Circle] {
	track := func(color string, period time.Duration) stream.Observable[Circle] {
		return stream.Map(
			stream.Take(3, stream.Interval(e.d(period))),
			func(i int) Circle { return Circle{Color: color, Name: strconv.Itoa(i)} })
	}
	return []stream.Observable[Circle]{
		track("red", time.Second),
		track("green", 500*time.Millisecond),
		track("blue", 200*time.Millisecond),
	}
}

var trackCards = []Card{
	{
		Key:     "tracks-merge",
		Name:    "Merge tracks",
		Details: "Emits every circle of the three tracks as it arrives.",
		Snippet: `stream.Merge(red, green, blue)`,
		Color:   "orange",
		Kind:    KindTrack,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Merge(tracks(e)...))
		},
	},
	{
		Key:     "tracks-forkJoin",
		Name:    "ForkJoin tracks",
		Details: "Waits for all tracks to finish and emits the last circle of each.",
		Snippet: `stream.Flatten(stream.ForkJoin(red, green, blue))`,
		Color:   "yellow",
		Kind:    KindTrack,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Flatten(stream.ForkJoin(tracks(e)...)))
		},
	},
	{
		Key:     "tracks-combineLatest",
		Name:    "CombineLatest tracks",
		Details: "Once every track has a circle, emits the latest circle of each track whenever any track moves.",
		Snippet: `stream.Flatten(stream.CombineLatest(red, green, blue))`,
		Color:   "green",
		Kind:    KindTrack,
		build: func(e env) stream.Observable[any] {
			return stream.ToAny(stream.Flatten(stream.CombineLatest(tracks(e)...)))
		},
	},
}
