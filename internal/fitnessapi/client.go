package fitnessapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fittrack/contracts/api"
	"fittrack/internal/model"
	"fittrack/pkg/circuitbreaker"
	"fittrack/pkg/metrics"
	"fittrack/pkg/otel"
	"fittrack/pkg/trace"
	"fittrack/pkg/util"

	"go.uber.org/zap"
)

// Endpoint labels used for metrics and logs. User names are kept out of them.
const (
	EndpointCreateWorkout   = "/workout"
	EndpointListWorkouts    = "/workouts"
	EndpointRecommendations = "/ai/recommendations"
	EndpointHealth          = "/health"
)

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fitness api %s returned status %d", e.Endpoint, e.Code)
}

func (e *StatusError) StatusCode() int { return e.Code }

// Client talks to the remote fitness REST API. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient builds a client. cb may be nil to call the API unguarded.
func NewClient(baseURL string, timeout time.Duration, cb *circuitbreaker.CircuitBreaker, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cb:     cb,
		logger: logger,
	}
}

// CreateWorkout POSTs a workout for userName. The response body is discarded.
func (c *Client) CreateWorkout(ctx context.Context, userName string, w model.Workout) error {
	body := api.CreateWorkoutRequest{
		UserName:        userName,
		WorkoutType:     w.WorkoutType,
		DurationMinutes: w.DurationMinutes,
		Date:            w.Date,
	}
	return c.guarded(func() error {
		return c.do(ctx, EndpointCreateWorkout, http.MethodPost, "/workout", body, nil)
	})
}

// ListWorkouts returns userName's workouts in the order the API sends them.
// A response without a workouts field yields an empty list.
func (c *Client) ListWorkouts(ctx context.Context, userName string) ([]model.Workout, error) {
	var resp api.ListWorkoutsResponse
	err := c.guarded(func() error {
		return c.do(ctx, EndpointListWorkouts, http.MethodGet, "/workouts/"+url.PathEscape(userName), nil, &resp)
	})
	if err != nil {
		return nil, err
	}

	workouts := make([]model.Workout, 0, len(resp.Workouts))
	for _, item := range resp.Workouts {
		workouts = append(workouts, model.Workout{
			WorkoutType:     item.WorkoutType,
			DurationMinutes: item.DurationMinutes,
			Date:            item.Date,
		})
	}
	return workouts, nil
}

// GetRecommendations returns the AI recommendations and score for userName.
func (c *Client) GetRecommendations(ctx context.Context, userName string) (*model.Recommendations, error) {
	var resp api.RecommendationsResponse
	err := c.guarded(func() error {
		return c.do(ctx, EndpointRecommendations, http.MethodGet, "/ai/recommendations/"+url.PathEscape(userName), nil, &resp)
	})
	if err != nil {
		return nil, err
	}

	items := resp.Data.Recommendations
	if items == nil {
		items = []string{}
	}
	return &model.Recommendations{
		Items: items,
		Score: resp.Data.Score,
	}, nil
}

// Health calls GET /health, bypassing the circuit breaker.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, EndpointHealth, http.MethodGet, "/health", nil, nil)
}

// IsUpstreamFailure reports whether err says the API itself is unhealthy:
// transport errors, timeouts and 5xx responses. Cancelled requests, 4xx and
// undecodable bodies do not count. Pass it to the breaker with
// circuitbreaker.WithFailurePredicate.
func IsUpstreamFailure(err error) bool {
	switch util.ClassifyError(err) {
	case "network_timeout", "network_error", "upstream_5xx":
		return true
	default:
		return false
	}
}

func (c *Client) guarded(fn func() error) error {
	if c.cb == nil {
		return fn()
	}
	return c.cb.Execute(fn)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, in, out interface{}) (err error) {
	start := time.Now()
	status := "success"
	defer func() {
		metrics.RecordAPICallLatency(endpoint, status, time.Since(start))
	}()

	var body io.Reader
	if in != nil {
		b, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			status = "error"
			return fmt.Errorf("encode %s request: %w", endpoint, marshalErr)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		status = "error"
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	trace.Inject(ctx, req)

	_, span := otel.StartClientSpan(ctx, "fitnessapi "+method+" "+endpoint, req)
	statusCode := 0
	defer func() { otel.EndClientSpan(span, statusCode, err) }()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status = "error"
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode >= 500 {
			status = "5xx"
		} else {
			status = strconv.Itoa(resp.StatusCode)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		status = "decode_error"
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.logger.Debug("fitness api call succeeded",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
