package dashboard

import (
	"context"
	"errors"
	"testing"

	"fittrack/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAPI struct {
	calls    []string
	created  []model.Workout
	workouts []model.Workout
	recs     *model.Recommendations

	createErr error
	listErr   error
	recsErr   error
}

func (f *fakeAPI) CreateWorkout(_ context.Context, userName string, w model.Workout) error {
	f.calls = append(f.calls, "create:"+userName)
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, w)
	f.workouts = append(f.workouts, w)
	return nil
}

func (f *fakeAPI) ListWorkouts(_ context.Context, userName string) ([]model.Workout, error) {
	f.calls = append(f.calls, "list:"+userName)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Workout{}, f.workouts...), nil
}

func (f *fakeAPI) GetRecommendations(_ context.Context, userName string) (*model.Recommendations, error) {
	f.calls = append(f.calls, "recs:"+userName)
	if f.recsErr != nil {
		return nil, f.recsErr
	}
	if f.recs == nil {
		return &model.Recommendations{}, nil
	}
	return f.recs, nil
}

type fakeGuard struct{ seen map[string]bool }

func (g *fakeGuard) AcquireOnce(_ context.Context, scope, key string) bool {
	k := scope + ":" + key
	if g.seen[k] {
		return false
	}
	g.seen[k] = true
	return true
}

func score(v float64) *float64 { return &v }

func newTestService(api *fakeAPI, guard SubmissionGuard, revision int) (*Service, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	svc := NewService(api, guard, "Satyam", FeaturesForRevision(revision), zap.New(core))
	n := 0
	svc.newToken = func() string {
		n++
		return "tok-" + string(rune('0'+n))
	}
	return svc, logs
}

var validForm = model.WorkoutForm{
	WorkoutType:     "Running",
	DurationMinutes: "30",
	Date:            "2026-10-01",
	SubmissionID:    "form-1",
}

func TestFeaturesForRevision(t *testing.T) {
	assert.Equal(t, Features{}, FeaturesForRevision(1))
	assert.Equal(t, Features{Recommendations: true}, FeaturesForRevision(2))
	assert.Equal(t, Features{Recommendations: true, Score: true}, FeaturesForRevision(3))
	assert.Equal(t, Features{Recommendations: true, Score: true}, FeaturesForRevision(0))
}

func TestLoad_FetchesListThenRecommendations(t *testing.T) {
	api := &fakeAPI{
		workouts: []model.Workout{{WorkoutType: "Yoga", DurationMinutes: 20, Date: "2026-09-30"}},
		recs:     &model.Recommendations{Items: []string{"Hydrate"}, Score: score(81)},
	}
	svc, _ := newTestService(api, nil, 3)

	d := svc.Load(context.Background())

	assert.Equal(t, []string{"list:Satyam", "recs:Satyam"}, api.calls)
	assert.Equal(t, api.workouts, d.Workouts)
	assert.Equal(t, []string{"Hydrate"}, d.Recommendations)
	require.NotNil(t, d.Score)
	assert.Equal(t, 81.0, *d.Score)
	assert.Equal(t, model.WorkoutForm{SubmissionID: "tok-1"}, d.Form)
	assert.Equal(t, "Satyam", d.UserName)
}

func TestLoad_RevisionOneSkipsRecommendations(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(api, nil, 1)

	d := svc.Load(context.Background())

	assert.Equal(t, []string{"list:Satyam"}, api.calls)
	assert.Empty(t, d.Recommendations)
	assert.Nil(t, d.Score)
}

func TestLoad_RevisionTwoHidesScore(t *testing.T) {
	api := &fakeAPI{recs: &model.Recommendations{Items: []string{"Rest"}, Score: score(50)}}
	svc, _ := newTestService(api, nil, 2)

	d := svc.Load(context.Background())

	assert.Equal(t, []string{"Rest"}, d.Recommendations)
	assert.Nil(t, d.Score)
}

func TestLoad_FailuresAreLoggedAndLeaveSectionsEmpty(t *testing.T) {
	api := &fakeAPI{
		listErr: errors.New("connection refused"),
		recsErr: errors.New("connection refused"),
	}
	svc, logs := newTestService(api, nil, 3)

	d := svc.Load(context.Background())

	assert.Equal(t, []string{"list:Satyam", "recs:Satyam"}, api.calls)
	assert.Empty(t, d.Workouts)
	assert.NotNil(t, d.Workouts)
	assert.Empty(t, d.Recommendations)
	assert.Nil(t, d.Score)
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch workouts").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch recommendations").Len())
}

func TestSubmit_ChainsCreateListRecommendations(t *testing.T) {
	api := &fakeAPI{recs: &model.Recommendations{Items: []string{"Keep going"}, Score: score(64)}}
	svc, _ := newTestService(api, nil, 3)

	d, result := svc.Submit(context.Background(), validForm)

	assert.Equal(t, ResultCreated, result)
	assert.Equal(t, []string{"create:Satyam", "list:Satyam", "recs:Satyam"}, api.calls)
	assert.Equal(t, []model.Workout{{WorkoutType: "Running", DurationMinutes: 30, Date: "2026-10-01"}}, api.created)
	assert.Equal(t, api.created, d.Workouts)
	assert.Equal(t, []string{"Keep going"}, d.Recommendations)
	assert.Equal(t, model.WorkoutForm{SubmissionID: "tok-1"}, d.Form, "form is cleared")
	assert.Nil(t, d.FormErrors)
}

func TestSubmit_RefetchFailureAfterCreate(t *testing.T) {
	api := &fakeAPI{
		listErr: errors.New("connection reset"),
		recsErr: errors.New("connection reset"),
	}
	svc, logs := newTestService(api, nil, 3)

	d, result := svc.Submit(context.Background(), validForm)

	assert.Equal(t, ResultCreated, result)
	assert.Equal(t, []string{"create:Satyam", "list:Satyam", "recs:Satyam"}, api.calls)
	assert.Len(t, api.created, 1)
	assert.Empty(t, d.Workouts)
	assert.Empty(t, d.Recommendations)
	assert.Nil(t, d.Score)
	assert.Equal(t, model.WorkoutForm{SubmissionID: "tok-1"}, d.Form, "form is cleared")
	assert.NotEqual(t, validForm.SubmissionID, d.Form.SubmissionID)
	assert.Nil(t, d.FormErrors)

	assert.Equal(t, 1, logs.FilterMessage("Submit: workout created").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch workouts").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to fetch recommendations").Len())
}

func TestSubmit_RevisionOneOnlyRefetchesList(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(api, nil, 1)

	_, result := svc.Submit(context.Background(), validForm)

	assert.Equal(t, ResultCreated, result)
	assert.Equal(t, []string{"create:Satyam", "list:Satyam"}, api.calls)
}

func TestSubmit_CreateFailureKeepsForm(t *testing.T) {
	api := &fakeAPI{
		createErr: errors.New("connection refused"),
		workouts:  []model.Workout{{WorkoutType: "Yoga", DurationMinutes: 20, Date: "2026-09-30"}},
		recs:      &model.Recommendations{},
	}
	svc, logs := newTestService(api, nil, 3)

	d, result := svc.Submit(context.Background(), validForm)

	assert.Equal(t, ResultFailed, result)
	assert.Equal(t, []string{"create:Satyam", "list:Satyam", "recs:Satyam"}, api.calls)
	assert.Equal(t, "Running", d.Form.WorkoutType)
	assert.Equal(t, "30", d.Form.DurationMinutes)
	assert.Equal(t, "2026-10-01", d.Form.Date)
	assert.NotEqual(t, validForm.SubmissionID, d.Form.SubmissionID)
	assert.Len(t, d.Workouts, 1)

	entries := logs.FilterMessage("Submit: failed to create workout").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "unknown_error", entries[0].ContextMap()["error_type"])
	assert.Equal(t, "Satyam", entries[0].ContextMap()["user_name"])
}

func TestSubmit_InvalidFormSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(api, nil, 3)

	form := model.WorkoutForm{WorkoutType: "Running", DurationMinutes: "abc", Date: "2026-10-01", SubmissionID: "form-1"}
	d, result := svc.Submit(context.Background(), form)

	assert.Equal(t, ResultInvalid, result)
	assert.Empty(t, api.created)
	assert.NotContains(t, api.calls, "create:Satyam")
	assert.Equal(t, form, d.Form)
	assert.Contains(t, d.FormErrors, "duration_minutes")
}

func TestSubmit_DuplicateTokenSkipsCreate(t *testing.T) {
	api := &fakeAPI{recs: &model.Recommendations{}}
	guard := &fakeGuard{seen: map[string]bool{}}
	svc, _ := newTestService(api, guard, 3)

	_, first := svc.Submit(context.Background(), validForm)
	api.calls = nil
	d, second := svc.Submit(context.Background(), validForm)

	assert.Equal(t, ResultCreated, first)
	assert.Equal(t, ResultDuplicate, second)
	assert.Equal(t, []string{"list:Satyam", "recs:Satyam"}, api.calls)
	assert.Len(t, api.created, 1)
	assert.Len(t, d.Workouts, 1)
	assert.Empty(t, d.Form.WorkoutType)
}
