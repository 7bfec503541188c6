// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rxcards/rxcards/stream"
)

func fatal(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

type circle struct {
	track string
	n     int
}

func track(name string, period time.Duration) stream.Observable[circle] {
	return stream.Map(
		stream.Take(3, stream.Interval(period)),
		func(n int) circle { return circle{name, n} })
}

func main() {
	// Create a context in which to run the streams.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// All streams run on the event loop goroutine.
	loop := stream.NewLoop()
	go loop.Run(ctx)

	red := track("red", 100*time.Millisecond)
	green := track("green", 50*time.Millisecond)
	blue := track("blue", 20*time.Millisecond)

	// Merge the tracks and print the circles as they arrive.
	start := time.Now()
	merged := stream.Tap(
		stream.Merge(red, green, blue),
		func(c circle) {
			fmt.Printf("%6s %-5s %d\n", time.Since(start).Round(10*time.Millisecond), c.track, c.n)
		})

	if _, err := stream.Collect(ctx, loop, merged); err != nil {
		fatal("error: %s", err)
	}

	// Run the tracks again and report the last circle of each.
	last, err := stream.Collect(ctx, loop, stream.ForkJoin(red, green, blue))
	if err != nil {
		fatal("error: %s", err)
	}
	fmt.Println("last:", last)
}
