package api

import (
	"github.com/mleray/forecastgate/pkg/forecast"
)

// GenerateRequest is the payload for POST /v1/predictions.
type GenerateRequest struct {
	SegmentScope forecast.Segment        `json:"segment_scope"`
	TypeScope    forecast.PredictionType `json:"type_scope"`
	ForecastDays int                     `json:"forecast_days"`
	LocationID   string                  `json:"location_id,omitempty"`
}

// GenerateResponse is the success/cache-hit payload.
type GenerateResponse struct {
	Kind      string                    `json:"kind"`
	RequestID string                    `json:"request_id"`
	Result    *forecast.SegmentedResult `json:"result"`
}

// RateLimitedResponse is the 429 payload.
type RateLimitedResponse struct {
	Kind             string  `json:"kind"`
	Detail           string  `json:"detail"`
	CoolingRemaining float64 `json:"cooling_remaining_seconds,omitempty"`
	QuotaExhausted   bool    `json:"quota_exhausted"`
	OfferReset       bool    `json:"offer_reset"`
}

// UpstreamFailureResponse is the 502 payload.
type UpstreamFailureResponse struct {
	Kind    string `json:"kind"`
	Class   string `json:"class"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
