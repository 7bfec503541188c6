// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

const ms = time.Millisecond

func assertOutput(t *testing.T, what string, expected []any, output []Emission) {
	t.Helper()
	if len(expected) != len(output) {
		t.Fatalf("%s: expected %d items, got %d (%v)", what, len(expected), len(output), output)
	}
	for i := range expected {
		if !reflect.DeepEqual(expected[i], output[i].Value) {
			t.Fatalf("%s: at index %d, expected %#v, got %#v", what, i, expected[i], output[i].Value)
		}
	}
}

func assertOffsets(t *testing.T, what string, expected []time.Duration, output []Emission) {
	t.Helper()
	if len(expected) != len(output) {
		t.Fatalf("%s: expected %d items, got %d", what, len(expected), len(output))
	}
	for i := range expected {
		if expected[i] != output[i].Offset {
			t.Fatalf("%s: at index %d, expected offset %s, got %s", what, i, expected[i], output[i].Offset)
		}
	}
}

func circles(specs ...string) []any {
	out := make([]any, 0, len(specs))
	for _, s := range specs {
		color, name, _ := strings.Cut(s, ":")
		out = append(out, Circle{Color: color, Name: name})
	}
	return out
}

func TestCatalog(t *testing.T) {
	keys := []string{
		"map", "pluck", "switchMap", "concatMap", "mergeMap", "tap",
		"debounceTime", "distinctUntilChanged", "catchError", "merge",
		"forkJoin", "combineLatest", "zip", "throttleTime",
		"tracks-merge", "tracks-forkJoin", "tracks-combineLatest",
	}
	catalog := Catalog()
	if len(catalog) != len(keys) {
		t.Fatalf("expected %d cards, got %d", len(keys), len(catalog))
	}
	for i, c := range catalog {
		if c.Key != keys[i] {
			t.Fatalf("at index %d, expected %q, got %q", i, keys[i], c.Key)
		}
		if c.Name == "" || c.Details == "" || c.Snippet == "" || c.Kind == "" {
			t.Fatalf("card %q is missing descriptive fields", c.Key)
		}
	}

	if c, err := Lookup("pluck"); err != nil || !c.Deprecated {
		t.Fatalf("expected deprecated pluck card, got %+v, %v", c, err)
	}
	if _, err := Lookup("nope"); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}
}

func TestOperatorCards(t *testing.T) {
	cases := []struct {
		key      string
		clicks   []time.Duration
		expected []any
	}{
		{"map", nil, []any{2, 4, 6}},
		{"pluck", nil, []any{"John", "Alice"}},
		{"switchMap", nil, []any{10, 20, 30}},
		{"concatMap", nil, []any{1, 2, 2, 3, 3, 4}},
		{"mergeMap", nil, []any{1, 2, 2, 3, 3, 4}},
		{"tap", nil, []any{1, 2, 3}},
		{"distinctUntilChanged", nil, []any{1, 2, 3}},
		{"catchError", nil, []any{1, 2, "Fallback"}},
		{"merge", nil, []any{1, 2, 3, 4, 5, 6}},
		{"forkJoin", nil, []any{[]int{3, 6}}},
		{"zip", nil, []any{[]any{"A", 1}, []any{"B", 2}, []any{"C", 3}}},
		{"debounceTime", []time.Duration{0, 200 * ms, 400 * ms}, []any{Click{Seq: 3}}},
		{"throttleTime", []time.Duration{100 * ms, 300 * ms, 2500 * ms}, []any{Click{Seq: 1}}},
	}
	for _, tc := range cases {
		card, err := Lookup(tc.key)
		if err != nil {
			t.Fatalf("Lookup(%q): %s", tc.key, err)
		}
		res := Replay(card, time.Minute, tc.clicks...)
		if res.Err != nil || res.Cancelled {
			t.Fatalf("%s: unexpected result %+v", tc.key, res)
		}
		assertOutput(t, tc.key, tc.expected, res.Output)
	}
}

func TestTimedCards(t *testing.T) {
	// debounceTime emits the last click one second after the burst
	{
		card, _ := Lookup("debounceTime")
		res := Replay(card, time.Minute, 0, 200*ms, 400*ms)
		assertOffsets(t, "debounceTime", []time.Duration{1400 * ms}, res.Output)
		if res.Duration != 1400*ms {
			t.Fatalf("debounceTime: expected completion at 1400ms, got %s", res.Duration)
		}
	}

	// combineLatest of two intervals
	{
		card, _ := Lookup("combineLatest")
		res := Replay(card, time.Minute)
		assertOutput(t, "combineLatest",
			[]any{[]int{0, 0}, []int{1, 0}, []int{2, 0}, []int{2, 1}, []int{2, 2}},
			res.Output)
		assertOffsets(t, "combineLatest",
			[]time.Duration{2000 * ms, 2000 * ms, 3000 * ms, 4000 * ms, 6000 * ms},
			res.Output)
	}

	// time scale shortens the durations
	{
		card, _ := Lookup("combineLatest")
		res := Replay(card.WithTimeScale(0.5), time.Minute)
		if res.Duration != 3*time.Second {
			t.Fatalf("combineLatest: expected completion at 3s with half scale, got %s", res.Duration)
		}
	}

	// event cards without clicks time out
	for _, key := range []string{"debounceTime", "throttleTime"} {
		card, _ := Lookup(key)
		res := Replay(card, 10*time.Second)
		if !res.Cancelled || !errors.Is(res.Err, ErrRunTimeout) || len(res.Output) != 0 {
			t.Fatalf("%s: expected a timeout, got %+v", key, res)
		}
	}
}

func TestTrackCards(t *testing.T) {
	{
		card, _ := Lookup("tracks-merge")
		res := Replay(card, time.Minute)
		assertOutput(t, "tracks-merge",
			circles("blue:0", "blue:1", "green:0", "blue:2", "red:0", "green:1", "green:2", "red:1", "red:2"),
			res.Output)
		assertOffsets(t, "tracks-merge",
			[]time.Duration{200 * ms, 400 * ms, 500 * ms, 600 * ms, 1000 * ms, 1000 * ms, 1500 * ms, 2000 * ms, 3000 * ms},
			res.Output)
	}
	{
		card, _ := Lookup("tracks-forkJoin")
		res := Replay(card, time.Minute)
		assertOutput(t, "tracks-forkJoin", circles("red:2", "green:2", "blue:2"), res.Output)
		if res.Duration != 3*time.Second {
			t.Fatalf("tracks-forkJoin: expected completion at 3s, got %s", res.Duration)
		}
	}
	{
		card, _ := Lookup("tracks-combineLatest")
		res := Replay(card, time.Minute)
		assertOutput(t, "tracks-combineLatest",
			circles(
				"red:0", "green:0", "blue:2",
				"red:0", "green:1", "blue:2",
				"red:0", "green:2", "blue:2",
				"red:1", "green:2", "blue:2",
				"red:2", "green:2", "blue:2"),
			res.Output)
	}
}

func TestTapCardLogs(t *testing.T) {
	var buf bytes.Buffer
	card, _ := Lookup("tap")
	res := Replay(card.WithLogger(testLogger(&buf)), time.Minute)
	assertOutput(t, "tap", []any{1, 2, 3}, res.Output)
	if n := strings.Count(buf.String(), "Received value"); n != 3 {
		t.Fatalf("expected 3 log lines, got %d: %s", n, buf.String())
	}
}
