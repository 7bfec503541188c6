// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rxcards/rxcards/cards"
	"github.com/rxcards/rxcards/metrics"
)

var errRateLimited = errors.New("too many runs, try again later")

// requestLogger logs every request and counts it by route and status.
// Health checks are counted but not logged.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		if route == "/healthz" || route == "/metrics" {
			return
		}

		ev := s.log.Info()
		switch {
		case status >= 500:
			ev = s.log.Error()
		case status >= 400:
			ev = s.log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("Request")
	}
}

// rateLimit rejects runs beyond the configured rate.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			metrics.RateLimited.Inc()
			abortWithError(c, errRateLimited)
			return
		}
		c.Next()
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func statusOf(err error) int {
	var bad badRequestError
	switch {
	case errors.Is(err, cards.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &bad):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(err), errorResponse{Error: err.Error()})
}
