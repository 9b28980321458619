package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"

	"fittrack/pkg/circuitbreaker"
)

// StatusCoder is implemented by errors carrying an upstream HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// ClassifyError maps an upstream call error to a short label for logs and
// metrics.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "circuit_open"
	}
	if errors.Is(err, context.Canceled) {
		return "context_canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "network_timeout"
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		switch code := sc.StatusCode(); {
		case code >= 500:
			return "upstream_5xx"
		case code >= 400:
			return "upstream_4xx"
		default:
			return "upstream_unexpected_status"
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "decode_error"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "network_error"
	}

	return "unknown_error"
}
