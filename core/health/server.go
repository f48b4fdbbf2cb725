// Package health serves liveness, readiness and prometheus metrics over HTTP.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/portfoliobot/core/logger"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

const checkTimeout = 2 * time.Second

// Server is the probe listener.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	checks map[string]Check
}

// New builds a server for listen with the named readiness checks.
func New(listen string, checks map[string]Check) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{engine: gin.New(), checks: checks}
	s.engine.Use(gin.Recovery(), requestLog)
	s.engine.GET("/healthz", s.live)
	s.engine.GET("/readyz", s.ready)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.srv = &http.Server{
		Addr:              listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routes, e.g. for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens in the background until Shutdown.
func (s *Server) Start(ctx context.Context) {
	go func() {
		logger.LogEvent(ctx, logger.HTTP, slog.LevelInfo, "health.listen",
			slog.String("status", "ok"),
			slog.String("listen", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogEvent(ctx, logger.HTTP, slog.LevelError, "health.listen",
				slog.String("status", "error"),
				slog.String("err", logger.ErrAttr(err)),
			)
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	code := http.StatusOK
	results := gin.H{}
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			code = http.StatusServiceUnavailable
			results[name] = err.Error()
			logger.LogEvent(ctx, logger.HTTP, slog.LevelWarn, "health.check",
				slog.String("status", "fail"),
				slog.String("name", name),
				slog.String("err", logger.ErrAttr(err)),
			)
			continue
		}
		results[name] = "ok"
	}
	status := "ok"
	if code != http.StatusOK {
		status = "unavailable"
	}
	c.JSON(code, gin.H{"status": status, "checks": results})
}

func requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	logger.LogEvent(c.Request.Context(), logger.HTTP, slog.LevelDebug, "http.request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Int("code", c.Writer.Status()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
}
