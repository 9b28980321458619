package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Workout struct {
	WorkoutType     string
	DurationMinutes float64
	Date            string
}

type Recommendations struct {
	Items []string
	Score *float64
}

// WorkoutForm holds the raw form values as posted.
type WorkoutForm struct {
	WorkoutType     string `form:"workout_type"`
	DurationMinutes string `form:"duration_minutes"`
	Date            string `form:"date"`
	SubmissionID    string `form:"submission_id"`
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Validate applies the same constraints the form inputs declare:
// required, type="number" and type="date".
func (f WorkoutForm) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.WorkoutType) == "" {
		errs["workout_type"] = "Please fill out this field."
	}

	switch d := strings.TrimSpace(f.DurationMinutes); {
	case d == "":
		errs["duration_minutes"] = "Please fill out this field."
	default:
		n, err := strconv.ParseFloat(d, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			errs["duration_minutes"] = "Please enter a number."
		}
	}

	switch d := strings.TrimSpace(f.Date); {
	case d == "":
		errs["date"] = "Please fill out this field."
	default:
		if _, err := time.Parse(DateLayout, d); err != nil {
			errs["date"] = "Please enter a valid date."
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Workout converts a validated form. Call Validate first.
func (f WorkoutForm) Workout() Workout {
	duration, _ := strconv.ParseFloat(strings.TrimSpace(f.DurationMinutes), 64)
	return Workout{
		WorkoutType:     strings.TrimSpace(f.WorkoutType),
		DurationMinutes: duration,
		Date:            strings.TrimSpace(f.Date),
	}
}

// Cleared returns an empty form carrying a new submission token.
func (f WorkoutForm) Cleared(submissionID string) WorkoutForm {
	return WorkoutForm{SubmissionID: submissionID}
}
