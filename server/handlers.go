// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"

	"github.com/rxcards/rxcards/cards"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The demo UI may be served from anywhere.
		return true
	},
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listCards(c *gin.Context) {
	c.JSON(http.StatusOK, cards.Catalog())
}

func (s *Server) getCard(c *gin.Context) {
	card, err := cards.Lookup(c.Param("key"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) runCard(c *gin.Context) {
	var req cards.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, badRequestError{err})
		return
	}
	clicks := make([]time.Duration, 0, len(req.ClicksMS))
	for _, ms := range req.ClicksMS {
		clicks = append(clicks, time.Duration(ms)*time.Millisecond)
	}

	res, err := s.runner.Run(c.Request.Context(), c.Param("key"), cards.WithClicks(clicks...))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// streamCard runs a card live over a websocket. Every event of the run is
// sent as a JSON message; the connection is closed after the terminal
// event. Closing the connection early cancels the run.
func (s *Server) streamCard(c *gin.Context) {
	key := c.Param("key")
	if _, err := cards.Lookup(key); err != nil {
		abortWithError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	run, err := s.runner.Start(key)
	if err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()))
		return
	}
	log := s.log.With().Str("run_id", run.ID).Logger()
	log.Debug().Str("card", key).Msg("WebSocket client connected")

	// Read pump: commands from the client. A read error means the client
	// went away.
	go func() {
		defer run.Cancel()
		for {
			var cmd cards.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("WebSocket read failed")
				}
				return
			}
			if err := binding.Validator.ValidateStruct(&cmd); err != nil {
				log.Debug().Err(err).Msg("Ignoring invalid command")
				continue
			}
			switch cmd.Type {
			case cards.CommandClick:
				run.Click()
			case cards.CommandCancel:
				run.Cancel()
			}
		}
	}()

	for ev := range run.Events() {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Msg("WebSocket write failed")
			run.Cancel()
			for range run.Events() {
			}
			return
		}
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"),
		time.Now().Add(time.Second))
}
