package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func NewRouter(h *Handler, hub *Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/status", h.Status)
		api.POST("/monitor/start", h.Start)
		api.POST("/monitor/stop", h.Stop)
		api.PUT("/monitor/interval", h.UpdateInterval)
		api.GET("/breadth", h.Breadth)
		api.GET("/stocks", h.ListStocks)
		api.POST("/stocks", h.AddStock)
		api.DELETE("/stocks/:code", h.DeleteStock)
		api.GET("/signals", h.RecentSignals)
	}
	r.GET("/ws/alerts", hub.ServeWS)
	return r
}

type Server struct {
	srv *http.Server
}

func NewServer(addr string, router *gin.Engine) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("web server shutting down")
	return s.srv.Shutdown(shutdownCtx)
}
