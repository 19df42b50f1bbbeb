// Package upstream defines the contract with the remote forecast
// generator: the expensive service that actually computes predictions.
package upstream

import (
	"context"
	"fmt"

	"github.com/mleray/forecastgate/pkg/forecast"
)

// Request carries the expanded pair set for one aggregated generator
// call. The generator parallelizes or sequences the per-segment work
// internally; this side treats it as one request/response unit.
type Request struct {
	Pairs        []forecast.Pair `json:"pairs"`
	ForecastDays int             `json:"forecast_days"`
	LocationID   string          `json:"location_id,omitempty"`
}

// Response holds the per-pair outcomes of a completed generator call.
// Individual pairs may fail without failing the call.
type Response struct {
	Results        map[forecast.Pair]forecast.PairResult
	ElapsedSeconds float64
}

// Generator is the upstream forecast generator.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Resetter is the quota-reset endpoint.
type Resetter interface {
	ResetQuota(ctx context.Context) error
}

// FailureClass classifies call-level generator failures.
type FailureClass string

const (
	ClassTransport    FailureClass = "transport"
	ClassUnauthorized FailureClass = "unauthorized"
	ClassRateLimited  FailureClass = "rate_limited_upstream"
	ClassServer       FailureClass = "server_error"
	ClassUnknown      FailureClass = "unknown"
)

// Hint returns a human-readable explanation per failure class.
func (c FailureClass) Hint() string {
	switch c {
	case ClassTransport:
		return "could not reach the forecast service; check connectivity and try again"
	case ClassUnauthorized:
		return "forecast service rejected the credentials; check the configured token"
	case ClassRateLimited:
		return "forecast service is rate limiting; wait before retrying"
	case ClassServer:
		return "forecast service failed internally; try again later"
	default:
		return "forecast service returned an unexpected response"
	}
}

// Error is a classified call-level generator failure.
type Error struct {
	Class   FailureClass
	Status  int // HTTP status when applicable, 0 otherwise
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream %s (HTTP %d): %s", e.Class, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Class, e.Message)
}

// ClassifyStatus maps an HTTP status to a failure class.
func ClassifyStatus(status int) FailureClass {
	switch {
	case status == 401 || status == 403:
		return ClassUnauthorized
	case status == 429:
		return ClassRateLimited
	case status >= 500:
		return ClassServer
	default:
		return ClassUnknown
	}
}
