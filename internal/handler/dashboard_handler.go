package handler

import (
	"net/http"

	"fittrack/internal/model"
	"fittrack/internal/service/dashboard"
	"fittrack/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dashboardTemplate = "dashboard.html"

type DashboardHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

func NewDashboardHandler(svc *dashboard.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// Index handles GET /
func (h *DashboardHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithTrace(ctx, h.logger)

	d := h.svc.Load(ctx)

	log.Info("Index: rendered dashboard",
		zap.Int("workout_count", len(d.Workouts)),
		zap.Int("recommendation_count", len(d.Recommendations)),
	)
	c.HTML(http.StatusOK, dashboardTemplate, d)
}

// SubmitWorkout handles POST /workout from the dashboard form.
func (h *DashboardHandler) SubmitWorkout(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithTrace(ctx, h.logger)

	var form model.WorkoutForm
	if err := c.ShouldBind(&form); err != nil {
		// treated as an empty form; validation reports the missing fields
		log.Warn("SubmitWorkout: failed to bind form", zap.Error(err))
		form = model.WorkoutForm{}
	}

	d, result := h.svc.Submit(ctx, form)

	log.Info("SubmitWorkout: done",
		zap.String("result", string(result)),
		zap.Int("workout_count", len(d.Workouts)),
	)

	status := http.StatusOK
	if result == dashboard.ResultInvalid {
		status = http.StatusBadRequest
	}
	c.HTML(status, dashboardTemplate, d)
}
