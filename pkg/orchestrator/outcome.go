package orchestrator

import (
	"github.com/mleray/forecastgate/pkg/forecast"
	"github.com/mleray/forecastgate/pkg/ratelimit"
	"github.com/mleray/forecastgate/pkg/upstream"
)

// OutcomeKind discriminates the result of a Generate call.
type OutcomeKind string

const (
	// OutcomeCacheHit: served from the result cache; no limiter check,
	// no upstream call.
	OutcomeCacheHit OutcomeKind = "cache_hit"

	// OutcomeSuccess: a fresh upstream exchange completed and the
	// result was cached. Individual pairs may still carry errors.
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeRateLimited: the limiter refused the attempt (cooling or
	// quota exhausted); upstream was not contacted.
	OutcomeRateLimited OutcomeKind = "rate_limited"

	// OutcomeUpstreamFailure: the generator call failed at the call
	// level; nothing was cached.
	OutcomeUpstreamFailure OutcomeKind = "upstream_failure"

	// OutcomeInvalid: the request failed validation before any side
	// effect.
	OutcomeInvalid OutcomeKind = "invalid"

	// OutcomeInFlight: another orchestration is already running; the
	// call was rejected as a no-op, not queued.
	OutcomeInFlight OutcomeKind = "in_flight"
)

// Outcome is the structured result of one Generate call. Exactly the
// fields implied by Kind are set; callers branch on Kind rather than
// catching anything.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	RequestID string      `json:"request_id,omitempty"`

	// Result is set for OutcomeCacheHit and OutcomeSuccess.
	Result *forecast.SegmentedResult `json:"result,omitempty"`

	// RateLimit is set for OutcomeRateLimited.
	RateLimit *ratelimit.AcquireResult `json:"rate_limit,omitempty"`

	// Failure is set for OutcomeUpstreamFailure.
	Failure *upstream.Error `json:"-"`

	// Invalid is set for OutcomeInvalid.
	Invalid *forecast.ValidationError `json:"-"`
}

// Status is the orchestrator's snapshot for the display layer: enough
// to disable the generate action, show a cooldown countdown, and decide
// whether to offer the quota reset.
type Status struct {
	LastOutcome  OutcomeKind      `json:"last_outcome,omitempty"`
	InFlight     bool             `json:"in_flight"`
	RateLimit    ratelimit.Status `json:"rate_limit"`
	OfferReset   bool             `json:"offer_reset"`
	CacheEntries int              `json:"cache_entries"`
}
