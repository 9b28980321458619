package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fittrack/internal/config"
	"fittrack/internal/fitnessapi"
	"fittrack/internal/handler"
	"fittrack/internal/httpserver"
	"fittrack/internal/service/dashboard"
	"fittrack/internal/view"
	"fittrack/pkg/circuitbreaker"
	"fittrack/pkg/logger"
	"fittrack/pkg/metrics"
	"fittrack/pkg/otel"
	redisclient "fittrack/pkg/redis"
	"fittrack/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log)
	defer logger.Sync()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting fitness web client",
		zap.String("port", cfg.Server.Port),
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("user_name", cfg.User.Name),
		zap.Int("revision", cfg.UI.Revision),
	)

	// Tracing
	shutdownOtel, err := otel.Init(cfg.Otel, logger)
	if err != nil {
		logger.Fatal("OpenTelemetry initialization failed", zap.Error(err))
	}
	defer shutdownOtel()

	// Redis (optional)
	rdb, err := redisclient.NewRedisClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Redis initialization failed", zap.Error(err))
	}
	var guard dashboard.SubmissionGuard
	if rdb != nil {
		defer rdb.Close()
		guard = util.NewDeduper(rdb, cfg.Dedup.TTL, logger)
	}

	// Fitness API client
	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold:    cfg.CircuitBreaker.FailureThreshold,
		SuccessThreshold:    cfg.CircuitBreaker.SuccessThreshold,
		Timeout:             cfg.CircuitBreaker.Timeout,
		HalfOpenMaxRequests: cfg.CircuitBreaker.HalfOpenMaxRequests,
	},
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState("fitness_api", int(to))
			logger.Warn("Fitness API circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		}),
		// cancelled page loads and 4xx do not trip the breaker
		circuitbreaker.WithFailurePredicate(fitnessapi.IsUpstreamFailure),
	)
	metrics.SetCircuitBreakerState("fitness_api", int(cb.State()))
	apiClient := fitnessapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cb, logger)

	// Service
	dashboardService := dashboard.NewService(
		apiClient,
		guard,
		cfg.User.Name,
		dashboard.FeaturesForRevision(cfg.UI.Revision),
		logger,
	)

	// Templates
	templates, err := view.Load()
	if err != nil {
		logger.Fatal("Template parsing failed", zap.Error(err))
	}

	// Handlers
	checks := []handler.HealthCheck{{Name: "fitness_api", Check: apiClient.Health}}
	if rdb != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	healthHandler := handler.NewHealthHandler(logger, checks...)

	// Router
	router := httpserver.NewRouter(dashboardHandler, healthHandler, templates, logger)

	if err := router.Run(ctx, cfg.Server.Port, cfg.Server.ShutdownTimeout); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("Fitness web client stopped")
}
