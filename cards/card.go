// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

// Package cards is the catalog of demo streams, one per operator, and the
// runner that executes them.
package cards

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rxcards/rxcards/stream"
)

var (
	ErrUnknownCard = errors.New("unknown card")
	ErrRunTimeout  = errors.New("run timed out")
)

type Kind string

const (
	// KindOperator cards run to completion on their own.
	KindOperator Kind = "operator"
	// KindEvent cards react to clicks and never terminate without them.
	KindEvent Kind = "event"
	// KindTrack cards combine the three circle tracks.
	KindTrack Kind = "track"
)

// Click is a user click delivered to event cards. Seq counts the clicks of a
// run starting from 1.
type Click struct {
	Seq int `json:"seq"`
}

// Circle is the item of the track demos.
type Circle struct {
	Color string `json:"color"`
	Name  string `json:"name"`
}

// Card describes one demo stream.
type Card struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Details    string `json:"details"`
	Snippet    string `json:"snippet"`
	Deprecated bool   `json:"deprecated,omitempty"`
	Color      string `json:"color"`
	Kind       Kind   `json:"kind"`

	scale float64
	log   zerolog.Logger
	build func(env) stream.Observable[any]
}

// env is what a card pipeline is built from.
type env struct {
	clicks stream.Observable[Click]
	log    zerolog.Logger
	scale  float64
}

// d scales a duration by the card's time scale.
func (e env) d(d time.Duration) time.Duration {
	return time.Duration(float64(d) * e.scale)
}

// WithTimeScale returns a copy of the card whose durations are multiplied by
// 'scale'. A scale of 0.1 runs the timed demos ten times faster.
func (c Card) WithTimeScale(scale float64) Card {
	c.scale = scale
	return c
}

// WithLogger returns a copy of the card that logs side effects to 'log'.
func (c Card) WithLogger(log zerolog.Logger) Card {
	c.log = log
	return c
}

// Build constructs the card's pipeline. Event cards subscribe to 'clicks';
// the other cards ignore it. A nil 'clicks' never clicks.
func (c Card) Build(clicks stream.Observable[Click]) stream.Observable[any] {
	if clicks == nil {
		clicks = stream.Never[Click]()
	}
	scale := c.scale
	if scale <= 0 {
		scale = 1
	}
	return c.build(env{clicks: clicks, log: c.log, scale: scale})
}

// Catalog returns all cards in display order.
func Catalog() []Card {
	cards := append(append([]Card(nil), operatorCards...), trackCards...)
	for i := range cards {
		cards[i].log = zerolog.Nop()
	}
	return cards
}

// Lookup returns the card with the given key.
func Lookup(key string) (Card, error) {
	for _, c := range Catalog() {
		if c.Key == key {
			return c, nil
		}
	}
	return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, key)
}
