// Package server exposes the formula engine as a JSON HTTP API.
//
// Routes:
//
//	GET  /healthz           liveness and version
//	GET  /v1/functions      built-in catalogue, ?q= filters by fuzzy name match
//	GET  /v1/test-context   the representative context used by the editor
//	POST /v1/validate       static validation of a formula
//	POST /v1/evaluate       evaluation against a supplied or test context
//	POST /v1/extract        free variables and called functions
//
// Every response carries an X-Request-ID header, echoed from the request
// when present.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/config"
)

// ShutdownTimeout bounds the graceful shutdown in Run.
const ShutdownTimeout = 15 * time.Second

// Server serves the HTTP API.
type Server struct {
	engine *goformula.Engine
	cfg    config.Server
	logger zerolog.Logger
	router *gin.Engine
}

// New creates a Server. A nil cfg uses the configuration defaults.
func New(engine *goformula.Engine, cfg *config.Server, logger zerolog.Logger) *Server {
	if cfg == nil {
		cfg = config.Default().Server
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: engine,
		cfg:    *cfg,
		logger: logger,
		router: gin.New(),
	}
	s.router.Use(requestID(), s.accessLog(), s.recovery(), bodyLimit(s.cfg.MaxBodyBytes))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)

	v1 := s.router.Group("/v1")
	v1.GET("/functions", s.listFunctions)
	v1.GET("/test-context", s.testContext)
	v1.POST("/validate", s.validate)
	v1.POST("/evaluate", s.evaluate)
	v1.POST("/extract", s.extract)

	s.router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
