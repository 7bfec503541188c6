// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	rxcards "github.com/rxcards/rxcards/cards"
	"github.com/rxcards/rxcards/config"
	"github.com/rxcards/rxcards/server"
	"github.com/rxcards/rxcards/stream"
)

func startServer(t *testing.T, runRate float64) *Client {
	runner := rxcards.NewRunner(rxcards.Config{Timeout: 200 * time.Millisecond, TimeScale: 0.1}, zerolog.Nop())
	t.Cleanup(runner.Close)
	s := server.New(config.Server{Host: "127.0.0.1", RunRate: runRate, RunBurst: 1}, runner, zerolog.Nop())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHeader("X-Test", "1"))
}

func startLoop(t *testing.T) *stream.Loop {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	l := stream.NewLoop()
	go l.Run(ctx)
	return l
}

func TestClient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := startServer(t, 1000)

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %s", err)
	}
	if len(list) != len(rxcards.Catalog()) {
		t.Fatalf("expected %d cards, got %d", len(rxcards.Catalog()), len(list))
	}

	card, err := c.Get(ctx, "zip")
	if err != nil || card.Name != "Zip" {
		t.Fatalf("unexpected Get result %+v, %v", card, err)
	}
	if _, err := c.Get(ctx, "nope"); !errors.Is(err, rxcards.ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}

	res, err := c.Run(ctx, "distinctUntilChanged")
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if len(res.Output) != 3 || res.Output[2].Value != float64(3) || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = c.Run(ctx, "throttleTime", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if len(res.Output) != 1 {
		t.Fatalf("expected one click, got %+v", res)
	}

	// No clicks: the run times out on the server.
	res, err = c.Run(ctx, "debounceTime")
	if err != nil {
		t.Fatalf("Run: %s", err)
	}
	if !res.Cancelled || !errors.Is(res.Err, rxcards.ErrRunTimeout) {
		t.Fatalf("expected a timed out run, got %+v", res)
	}
}

func TestClientRateLimited(t *testing.T) {
	c := startServer(t, 0.001)
	ctx := context.Background()
	if _, err := c.Run(ctx, "map"); err != nil {
		t.Fatalf("Run: %s", err)
	}
	_, err := c.Run(ctx, "map")
	var apiErr *APIError
	if !errors.Is(err, ErrRateLimited) || !errors.As(err, &apiErr) || apiErr.StatusCode != 429 {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestClientStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := startServer(t, 1000)
	l := startLoop(t)

	// 1. a card that completes on its own
	events, err := stream.Collect(ctx, l, c.Stream(l, "merge"))
	if err != nil {
		t.Fatalf("Collect: %s", err)
	}
	if len(events) != 7 || events[6].Type != rxcards.EventComplete {
		t.Fatalf("unexpected events %+v", events)
	}

	// 2. clicks are forwarded to the run
	commands := stream.Map(
		stream.Timer(10*time.Millisecond),
		func(int) rxcards.Command { return rxcards.Command{Type: rxcards.CommandClick} })
	events, err = stream.Collect(ctx, l, c.StreamCommands(l, "throttleTime", commands))
	if err != nil {
		t.Fatalf("Collect: %s", err)
	}
	if len(events) != 2 || events[0].Type != rxcards.EventNext || events[1].Type != rxcards.EventComplete {
		t.Fatalf("unexpected events %+v", events)
	}

	// 3. unknown cards fail the stream
	_, err = stream.Collect(ctx, l, c.Stream(l, "nope"))
	if !errors.Is(err, rxcards.ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}
}
