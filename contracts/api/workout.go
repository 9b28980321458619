package api

// CreateWorkoutRequest is the body of POST /workout.
type CreateWorkoutRequest struct {
	UserName        string  `json:"user_name"`
	WorkoutType     string  `json:"workout_type"`
	DurationMinutes float64 `json:"duration_minutes"`
	Date            string  `json:"date"` // YYYY-MM-DD
}

type WorkoutItem struct {
	WorkoutType     string  `json:"workout_type"`
	DurationMinutes float64 `json:"duration_minutes"`
	Date            string  `json:"date"`
}

// ListWorkoutsResponse is the body of GET /workouts/{user_name}.
type ListWorkoutsResponse struct {
	Workouts []WorkoutItem `json:"workouts"`
}

type RecommendationsData struct {
	Recommendations []string `json:"recommendations"`
	Score           *float64 `json:"score"` // 0-100, absent when not computed
}

// RecommendationsResponse is the body of GET /ai/recommendations/{user_name}.
type RecommendationsResponse struct {
	Data RecommendationsData `json:"data"`
}

// HealthResponse is the body of GET /health on both the API and this client.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
