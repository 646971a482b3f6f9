// Package server is the loopback control plane: the HTTP surface both
// the embedding shell and the remote authority use to trigger actions
// and query machine health.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ohfixit/helperd/internal/helper"
	"github.com/ohfixit/helperd/internal/observability"
	"github.com/ohfixit/helperd/internal/probes"
)

// Config wires the control plane's collaborators.
type Config struct {
	// Addr is the loopback listen address.
	Addr string
	// Service is cloned at construction so the HTTP path owns its copy
	// of the catalog+secret bundle independently of in-process callers.
	Service *helper.Service
	Prober  probes.Prober
}

type Server struct {
	addr    string
	service *helper.Service
	prober  probes.Prober
	router  *gin.Engine
}

func New(cfg Config) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	// Fully permissive by design: the first-party caller is co-located,
	// which also means any local process can reach this surface.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	prober := cfg.Prober
	if prober == nil {
		prober = probes.Unsupported{}
	}

	s := &Server{
		addr:    cfg.Addr,
		service: cfg.Service.Clone(),
		prober:  prober,
		router:  r,
	}
	s.registerRoutes()
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Serve binds and serves until ctx is canceled. If the port is already
// occupied the server logs and returns nil: the host process continues
// in a degraded mode without a control plane, it never crashes.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		log.Warn().Str("addr", s.addr).Err(err).
			Msg("control plane port occupied; continuing without control plane")
		return nil
	}

	srv := &http.Server{Handler: s.router}
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(listener)
	}()
	log.Info().Str("addr", s.addr).Msg("control plane listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
