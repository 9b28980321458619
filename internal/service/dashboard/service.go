package dashboard

import (
	"context"

	"fittrack/internal/fitnessapi"
	"fittrack/internal/model"
	"fittrack/pkg/logger"
	"fittrack/pkg/metrics"
	"fittrack/pkg/otel"
	"fittrack/pkg/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const submitScope = "workout_submit"

// WorkoutAPI is the subset of the fitness API the dashboard needs.
type WorkoutAPI interface {
	CreateWorkout(ctx context.Context, userName string, w model.Workout) error
	ListWorkouts(ctx context.Context, userName string) ([]model.Workout, error)
	GetRecommendations(ctx context.Context, userName string) (*model.Recommendations, error)
}

// SubmissionGuard remembers submission tokens. AcquireOnce returns false for
// a token it has already seen.
type SubmissionGuard interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

// Features selects which sections a client revision shows.
type Features struct {
	Recommendations bool
	Score           bool
}

// FeaturesForRevision maps client revisions 1-3 to their feature set.
// Anything outside that range gets the latest revision.
func FeaturesForRevision(revision int) Features {
	switch revision {
	case 1:
		return Features{}
	case 2:
		return Features{Recommendations: true}
	default:
		return Features{Recommendations: true, Score: true}
	}
}

type SubmitResult string

const (
	ResultCreated   SubmitResult = "created"
	ResultFailed    SubmitResult = "failed"
	ResultDuplicate SubmitResult = "duplicate"
	ResultInvalid   SubmitResult = "invalid"
)

// Dashboard is the view state of one rendered page.
type Dashboard struct {
	UserName        string
	Features        Features
	Workouts        []model.Workout
	Recommendations []string
	Score           *float64
	Form            model.WorkoutForm
	FormErrors      model.FieldErrors
}

type Service struct {
	api      WorkoutAPI
	guard    SubmissionGuard
	userName string
	features Features
	logger   *zap.Logger
	newToken func() string
}

// NewService wires the dashboard. guard may be nil.
func NewService(api WorkoutAPI, guard SubmissionGuard, userName string, features Features, logger *zap.Logger) *Service {
	return &Service{
		api:      api,
		guard:    guard,
		userName: userName,
		features: features,
		logger:   logger,
		newToken: uuid.NewString,
	}
}

// Load fetches the workout list, then the recommendations, and returns the
// page state with an empty form. Fetch failures are logged and leave the
// affected section empty.
func (s *Service) Load(ctx context.Context) *Dashboard {
	ctx, span := otel.StartSpan(ctx, "dashboard.Load")
	defer span.End()

	d := s.newDashboard()
	s.refresh(ctx, d)
	return d
}

// Submit validates the form, then posts the workout, refetches the list and
// refetches the recommendations, strictly in that order.
func (s *Service) Submit(ctx context.Context, form model.WorkoutForm) (d *Dashboard, result SubmitResult) {
	ctx, span := otel.StartSpan(ctx, "dashboard.Submit")
	defer func() {
		span.SetAttributes(attribute.String("submit.result", string(result)))
		span.End()
	}()

	log := logger.WithTrace(ctx, s.logger).With(zap.String("user_name", s.userName))

	if errs := form.Validate(); errs != nil {
		log.Warn("Submit: invalid workout form", zap.Any("field_errors", errs))
		metrics.IncrementWorkoutSubmission(string(ResultInvalid))
		d = s.Load(ctx)
		if form.SubmissionID == "" {
			form.SubmissionID = d.Form.SubmissionID
		}
		d.Form = form
		d.FormErrors = errs
		return d, ResultInvalid
	}

	if s.guard != nil && !s.guard.AcquireOnce(ctx, submitScope, form.SubmissionID) {
		log.Info("Submit: duplicate submission, skipping create",
			zap.String("submission_id", form.SubmissionID),
		)
		metrics.IncrementWorkoutSubmission(string(ResultDuplicate))
		return s.Load(ctx), ResultDuplicate
	}

	workout := form.Workout()
	if err := s.api.CreateWorkout(ctx, s.userName, workout); err != nil {
		log.Error("Submit: failed to create workout",
			zap.String("endpoint", fitnessapi.EndpointCreateWorkout),
			zap.String("error_type", util.ClassifyError(err)),
			zap.Error(err),
		)
		metrics.IncrementWorkoutSubmission(string(ResultFailed))
		d = s.Load(ctx)
		// the old token is already consumed by the guard
		form.SubmissionID = s.newToken()
		d.Form = form
		return d, ResultFailed
	}

	log.Info("Submit: workout created",
		zap.String("workout_type", workout.WorkoutType),
		zap.Float64("duration_minutes", workout.DurationMinutes),
		zap.String("date", workout.Date),
	)
	metrics.IncrementWorkoutSubmission(string(ResultCreated))

	return s.Load(ctx), ResultCreated
}

func (s *Service) newDashboard() *Dashboard {
	return &Dashboard{
		UserName:        s.userName,
		Features:        s.features,
		Workouts:        []model.Workout{},
		Recommendations: []string{},
		Form:            model.WorkoutForm{}.Cleared(s.newToken()),
	}
}

func (s *Service) refresh(ctx context.Context, d *Dashboard) {
	log := logger.WithTrace(ctx, s.logger).With(zap.String("user_name", s.userName))

	workouts, err := s.api.ListWorkouts(ctx, s.userName)
	if err != nil {
		log.Error("failed to fetch workouts",
			zap.String("endpoint", fitnessapi.EndpointListWorkouts),
			zap.String("error_type", util.ClassifyError(err)),
			zap.Error(err),
		)
	} else {
		d.Workouts = workouts
	}

	if !s.features.Recommendations {
		return
	}

	recs, err := s.api.GetRecommendations(ctx, s.userName)
	if err != nil {
		log.Error("failed to fetch recommendations",
			zap.String("endpoint", fitnessapi.EndpointRecommendations),
			zap.String("error_type", util.ClassifyError(err)),
			zap.Error(err),
		)
		return
	}

	d.Recommendations = recs.Items
	if s.features.Score {
		d.Score = recs.Score
	}
}
