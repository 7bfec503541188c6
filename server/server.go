// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

// Package server exposes the card catalog and card runs over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rxcards/rxcards/cards"
	"github.com/rxcards/rxcards/config"
)

// Server is the rxcards HTTP API.
type Server struct {
	cfg        config.Server
	engine     *gin.Engine
	httpServer *http.Server
	runner     *cards.Runner
	limiter    *rate.Limiter
	log        zerolog.Logger
}

func New(cfg config.Server, runner *cards.Runner, log zerolog.Logger) *Server {
	if log.GetLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		engine:  gin.New(),
		runner:  runner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RunRate), cfg.RunBurst),
		log:     log.With().Str("component", "server").Logger(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api/cards")
	api.GET("", s.listCards)
	api.GET("/:key", s.getCard)
	api.POST("/:key/run", s.rateLimit(), s.runCard)
	api.GET("/:key/ws", s.rateLimit(), s.streamCard)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listen address and serves in the background. It returns
// the bound address, which differs from the configured one when the port
// is 0.
func (s *Server) Start() (net.Addr, error) {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("Server error")
		}
	}()
	s.log.Info().Str("addr", listener.Addr().String()).Msg("HTTP server started")
	return listener.Addr(), nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info().Msg("HTTP server shut down")
	return nil
}
