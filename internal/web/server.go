// Package web serves streak snapshots, contribution grids and messages over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/huangsam/streakline/internal/contract"
)

// RequestIDHeader carries the per-request identifier on every response.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// Server is the streakline HTTP API.
type Server struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	router  *gin.Engine
}

// NewServer creates the HTTP API over baseCfg. Requests may override the clock,
// timezone, week start and range but never the source or the stores.
func NewServer(baseCfg *contract.Config, mgr contract.CacheManager) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	s := &Server{
		baseCfg: baseCfg,
		mgr:     mgr,
		router:  router,
	}

	router.GET("/healthz", s.handleHealth)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/snapshot", s.handleGetSnapshot)
		api.POST("/snapshot", s.handlePostSnapshot)
		api.GET("/grid", s.handleGetGrid)
		api.POST("/grid", s.handlePostGrid)
		api.GET("/message", s.handleGetMessage)
	}

	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		_, _ = fmt.Fprintf(os.Stderr, "🌐 Serving streakline API on http://%s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestID echoes a caller-provided request ID or assigns a new UUID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
