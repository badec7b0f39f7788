package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/logging"
	"github.com/forPelevin/heatclip/internal/pipeline"
)

// RunFunc runs one job; pipeline.Run in production.
type RunFunc func(ctx context.Context, cfg pipeline.Config) (pipeline.Report, error)

type Config struct {
	Host string
	Port int
	// ClipsDir is the root served under /clips; request outputs live below it.
	ClipsDir string
	// Base carries the defaults a request's options are applied to.
	Base pipeline.Config
}

// Server exposes the clip pipeline over HTTP.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	cfg        Config
	run        RunFunc
	log        zerolog.Logger
}

func New(cfg Config, run RunFunc, log zerolog.Logger) *Server {
	if log.GetLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		cfg:    cfg,
		run:    run,
		log:    logging.WithComponent(log, "server"),
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.engine.Use(recovery(s.log), requestLogger(s.log), cors())
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.POST("/api/process", s.handleProcess)
	s.engine.Static("/clips", s.cfg.ClipsDir)
}

// Handler returns the routed engine.
func (s *Server) Handler() http.Handler { return s.engine }

// Start binds the port and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("server error")
		}
	}()
	s.log.Info().Str("addr", "http://"+listener.Addr().String()).Msg("server running")
	return nil
}

// Stop shuts down gracefully, waiting at most 5 seconds.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}
