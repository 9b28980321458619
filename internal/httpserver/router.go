package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fittrack/internal/handler"
	"fittrack/pkg/otel"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	Engine *gin.Engine
	logger *zap.Logger
	server *http.Server
}

func NewRouter(
	dashboardHandler *handler.DashboardHandler,
	healthHandler *handler.HealthHandler,
	htmlRender render.HTMLRender,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		TraceMiddleware(),
		otel.GinMiddleware(),
		MetricsMiddleware(),
		AccessLogMiddleware(logger),
	)
	r.HTMLRender = htmlRender

	// Health endpoints
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.HEAD("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Dashboard
	r.GET("/", dashboardHandler.Index)
	r.POST("/workout", dashboardHandler.SubmitWorkout)

	return &Router{Engine: r, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	r.server = &http.Server{
		Addr:              addr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	r.logger.Info("Shutting down HTTP server", zap.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return r.server.Shutdown(shutdownCtx)
}
