package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workoutRow struct {
	WorkoutType     string
	DurationMinutes float64
	Date            string
}

type page struct {
	Form struct {
		SubmissionID    string
		WorkoutType     string
		DurationMinutes string
		Date            string
	}
	FormErrors map[string]string
	Workouts   []workoutRow
	Features   struct {
		Recommendations bool
		Score           bool
	}
	Recommendations []string
	Score           *float64
}

func TestLoad_RendersDashboard(t *testing.T) {
	tmpls, err := Load()
	require.NoError(t, err)

	var data page
	data.Form.SubmissionID = "tok"
	data.Workouts = []workoutRow{
		{WorkoutType: "<Run>", DurationMinutes: 12.5, Date: "2026-10-01"},
	}
	data.Features.Recommendations = true
	data.Features.Score = true
	data.Recommendations = []string{"Sleep more"}

	rec := httptest.NewRecorder()
	require.NoError(t, tmpls.Instance("dashboard.html", data).Render(rec))

	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `name="submission_id" value="tok"`)
	assert.Contains(t, body, "<strong>&lt;Run&gt;</strong>")
	assert.Contains(t, body, "12.5 mins")
	assert.Contains(t, body, "Date: 2026-10-01")
	assert.Contains(t, body, "<li>Sleep more</li>")
	assert.Contains(t, body, "AI Score: <strong>not available</strong>")
	assert.NotContains(t, body, "No workouts logged.")
}

func TestLoad_EmptyStates(t *testing.T) {
	tmpls, err := Load()
	require.NoError(t, err)

	var data page
	data.Features.Recommendations = true
	data.FormErrors = map[string]string{"date": "Please fill out this field."}

	rec := httptest.NewRecorder()
	require.NoError(t, tmpls.Instance("dashboard.html", data).Render(rec))

	body := rec.Body.String()
	assert.Contains(t, body, "No workouts logged.")
	assert.Contains(t, body, "No recommendations yet.")
	assert.Contains(t, body, `<span class="field-error">Please fill out this field.</span>`)
	assert.NotContains(t, body, "AI Score")
}

func TestInstance_UnknownTemplate(t *testing.T) {
	tmpls, err := Load()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, tmpls.Instance("missing.html", nil).Render(rec))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "30", FormatNumber(30))
	assert.Equal(t, "12.5", FormatNumber(12.5))
	assert.Equal(t, "0", FormatNumber(0))
}
