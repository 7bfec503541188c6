// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

// Command rxcards serves the card catalog over HTTP and runs cards from the
// command line.
//
//	rxcards serve [flags]
//	rxcards list
//	rxcards run [--virtual] [--click 200ms ...] <card>
//	rxcards diff [--click 200ms ...] <card>
//	rxcards remote [--url http://127.0.0.1:8080] [--click 200ms ...] <card>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/rxcards/rxcards/cards"
	client "github.com/rxcards/rxcards/clients/cards"
	"github.com/rxcards/rxcards/config"
	"github.com/rxcards/rxcards/logging"
	"github.com/rxcards/rxcards/server"
	"github.com/rxcards/rxcards/tracing"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <serve|list|run|diff|remote> [flags] [card]\n", os.Args[0])
	os.Exit(2)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]

	flags := pflag.NewFlagSet(cmd, pflag.ExitOnError)
	config.RegisterFlags(flags)
	virtual := flags.Bool("virtual", false, "Run the card in virtual time")
	clicks := flags.DurationSlice("click", nil, "Click offsets relative to the start of the run")
	baseURL := flags.String("url", "http://127.0.0.1:8080", "API address for 'remote'")
	if err := flags.Parse(args); err != nil {
		fatal("%s", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fatal("%s", err)
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, log)
	case "list":
		err = list()
	case "run":
		err = run(ctx, cfg, log, cardArg(flags), *virtual, *clicks)
	case "diff":
		err = diff(ctx, cfg, log, cardArg(flags), *clicks)
	case "remote":
		err = remote(ctx, *baseURL, cardArg(flags), *clicks)
	default:
		usage()
	}
	if err != nil {
		fatal("%s", err)
	}
}

func cardArg(flags *pflag.FlagSet) string {
	if flags.NArg() != 1 {
		usage()
	}
	return flags.Arg(0)
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, "rxcards", version, log)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn().Err(err).Msg("Flushing traces failed")
		}
	}()

	runner := cards.NewRunner(cfg.Runner, logging.Component(log, "runner"))
	defer runner.Close()

	srv := server.New(cfg.Server, runner, logging.Component(log, "server"))
	addr, err := srv.Start()
	if err != nil {
		return err
	}
	log.Info().Stringer("addr", addr).Str("version", version).Msg("Serving cards")

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(stopCtx)
}

func list() error {
	for _, card := range cards.Catalog() {
		deprecated := ""
		if card.Deprecated {
			deprecated = " (deprecated)"
		}
		fmt.Printf("%-22s %-9s %s%s\n", card.Key, card.Kind, card.Name, deprecated)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, key string, virtual bool, clicks []time.Duration) error {
	var res *cards.Result
	if virtual {
		card, err := cards.Lookup(key)
		if err != nil {
			return err
		}
		res = cards.Replay(card.WithLogger(log), cfg.Runner.Timeout, clicks...)
	} else {
		runner := cards.NewRunner(cfg.Runner, log)
		defer runner.Close()
		var err error
		res, err = runner.Run(ctx, key, cards.WithClicks(clicks...))
		if err != nil {
			return err
		}
	}
	printResult(res)
	return nil
}

// diff runs the card for real and in virtual time and prints how the
// emitted values differ.
func diff(ctx context.Context, cfg *config.Config, log zerolog.Logger, key string, clicks []time.Duration) error {
	card, err := cards.Lookup(key)
	if err != nil {
		return err
	}
	runner := cards.NewRunner(cfg.Runner, log)
	defer runner.Close()
	live, err := runner.Run(ctx, key, cards.WithClicks(clicks...))
	if err != nil {
		return err
	}
	replayed := cards.Replay(card.WithTimeScale(cfg.Runner.TimeScale), cfg.Runner.Timeout, clicks...)

	changes := pretty.Diff(values(replayed), values(live))
	if len(changes) == 0 {
		fmt.Println("no differences")
		return nil
	}
	for _, change := range changes {
		fmt.Println(change)
	}
	return nil
}

func remote(ctx context.Context, baseURL, key string, clicks []time.Duration) error {
	res, err := client.New(baseURL).Run(ctx, key, clicks...)
	if errors.Is(err, cards.ErrUnknownCard) {
		return fmt.Errorf("no card %q on %s", key, baseURL)
	}
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func values(res *cards.Result) []any {
	out := make([]any, len(res.Output))
	for i, em := range res.Output {
		out[i] = em.Value
	}
	return out
}

func printResult(res *cards.Result) {
	for _, em := range res.Output {
		fmt.Printf("%8s  %# v\n", em.Offset.Round(time.Millisecond), pretty.Formatter(em.Value))
	}
	switch {
	case res.Cancelled:
		fmt.Printf("%8s  cancelled: %s\n", res.Duration.Round(time.Millisecond), res.Error)
	case res.Error != "":
		fmt.Printf("%8s  error: %s\n", res.Duration.Round(time.Millisecond), res.Error)
	default:
		fmt.Printf("%8s  complete\n", res.Duration.Round(time.Millisecond))
	}
}
