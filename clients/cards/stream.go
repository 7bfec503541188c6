// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	rxcards "github.com/rxcards/rxcards/cards"
	"github.com/rxcards/rxcards/stream"
)

// Stream runs a card live on the server. The events of the run are delivered
// on 'l', which must also be the scheduler the stream is subscribed on. The
// stream completes when the server closes the run; cancelling the
// subscription closes the connection and with it the run.
func (c *Client) Stream(l *stream.Loop, key string) stream.Observable[rxcards.Event] {
	return c.StreamCommands(l, key, nil)
}

// StreamCommands is Stream that also forwards 'commands' (clicks and
// cancellation) to the run. 'commands' is subscribed to on 'l'.
func (c *Client) StreamCommands(l *stream.Loop, key string, commands stream.Observable[rxcards.Command]) stream.Observable[rxcards.Event] {
	return stream.Create(
		func(_ stream.Scheduler, s *stream.Subscriber[rxcards.Event]) {
			ctx, cancel := context.WithCancel(context.Background())
			s.Add(cancel)

			wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/cards/" + url.PathEscape(key) + "/ws"
			header := http.Header{}
			if len(c.options) > 0 {
				req := &http.Request{Header: header}
				for _, opt := range c.options {
					opt(req)
				}
			}

			go func() {
				conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
				if err != nil {
					if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
						err = &APIError{StatusCode: resp.StatusCode, Message: err.Error()}
					}
					l.Post(func() { s.Error(err) })
					return
				}
				defer conn.Close()
				stop := context.AfterFunc(ctx, func() { conn.Close() })
				defer stop()

				if commands != nil {
					cmds := make(chan rxcards.Command, 16)
					go func() {
						for {
							select {
							case <-ctx.Done():
								return
							case cmd := <-cmds:
								if err := conn.WriteJSON(cmd); err != nil {
									return
								}
							}
						}
					}()
					l.Post(func() {
						s.Add(commands.Subscribe(l, stream.Observer[rxcards.Command]{
							Next: func(cmd rxcards.Command) {
								select {
								case cmds <- cmd:
								case <-ctx.Done():
								}
							},
						}).Cancel)
					})
				}

				for {
					var ev rxcards.Event
					if err := conn.ReadJSON(&ev); err != nil {
						if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
							l.Post(s.Complete)
						} else {
							l.Post(func() { s.Error(err) })
						}
						return
					}
					l.Post(func() { s.Next(ev) })
				}
			}()
		})
}
