// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

// Package cards is a client for the rxcards HTTP API.
package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	rxcards "github.com/rxcards/rxcards/cards"
)

var ErrRateLimited = errors.New("rate limited")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Is maps the status codes to the corresponding sentinel errors.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusNotFound:
		return target == rxcards.ErrUnknownCard
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	}
	return false
}

type Option func(*http.Request)

func WithHeader(key, value string) Option {
	return func(req *http.Request) {
		req.Header.Add(key, value)
	}
}

type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	options []Option
}

// New returns a client for the API at 'baseURL', e.g. "http://localhost:8080".
// The options are applied to every request.
func New(baseURL string, options ...Option) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		dialer:  websocket.DefaultDialer,
		options: options,
	}
}

// List returns the card catalog.
func (c *Client) List(ctx context.Context) ([]rxcards.Card, error) {
	var out []rxcards.Card
	err := c.do(ctx, "GET", "/api/cards", nil, &out)
	return out, err
}

// Get returns a single card.
func (c *Client) Get(ctx context.Context, key string) (rxcards.Card, error) {
	var out rxcards.Card
	err := c.do(ctx, "GET", "/api/cards/"+url.PathEscape(key), nil, &out)
	return out, err
}

// Run runs a card on the server with clicks at the given offsets and returns
// the result once the run has finished.
func (c *Client) Run(ctx context.Context, key string, clicks ...time.Duration) (*rxcards.Result, error) {
	req := rxcards.RunRequest{ClicksMS: make([]int64, 0, len(clicks))}
	for _, click := range clicks {
		req.ClicksMS = append(req.ClicksMS, click.Milliseconds())
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var res rxcards.Result
	if err := c.do(ctx, "POST", "/api/cards/"+url.PathEscape(key)+"/run", bytes.NewReader(body), &res); err != nil {
		return nil, err
	}
	switch res.Error {
	case "":
	case rxcards.ErrRunTimeout.Error():
		res.Err = rxcards.ErrRunTimeout
	default:
		res.Err = errors.New(res.Error)
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range c.options {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
