package forecast

import (
	"fmt"
	"regexp"
)

const (
	MinForecastDays = 1
	MaxForecastDays = 30
)

// locationIDPattern accepts the identifiers the location service hands
// out: short alphanumeric slugs with dashes or underscores.
var locationIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidationError reports a request rejected before any cache, limiter
// or upstream interaction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PredictionRequest is the immutable user-facing request. Scopes may be
// wildcards; Expand resolves them to concrete pairs.
type PredictionRequest struct {
	SegmentScope Segment        `json:"segment_scope"`
	ForecastDays int            `json:"forecast_days"`
	TypeScope    PredictionType `json:"type_scope"`
	LocationID   string         `json:"location_id,omitempty"`
}

// Validate checks domain constraints. It returns a *ValidationError so
// callers can branch on the failing field.
func (r PredictionRequest) Validate() error {
	if r.ForecastDays < MinForecastDays || r.ForecastDays > MaxForecastDays {
		return &ValidationError{
			Field:  "forecast_days",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinForecastDays, MaxForecastDays, r.ForecastDays),
		}
	}
	if r.SegmentScope != SegmentAll && !KnownSegment(r.SegmentScope) {
		return &ValidationError{
			Field:  "segment_scope",
			Reason: fmt.Sprintf("unknown segment %q", r.SegmentScope),
		}
	}
	if r.TypeScope != TypeAll && !KnownType(r.TypeScope) {
		return &ValidationError{
			Field:  "type_scope",
			Reason: fmt.Sprintf("unknown prediction type %q", r.TypeScope),
		}
	}
	if r.LocationID != "" && !locationIDPattern.MatchString(r.LocationID) {
		return &ValidationError{
			Field:  "location_id",
			Reason: "malformed identifier",
		}
	}
	return nil
}

// Expand resolves the request's scopes into the concrete pair set that
// gets cached against and dispatched upstream.
func (r PredictionRequest) Expand() []Pair {
	return ExpandScopes(r.SegmentScope, r.TypeScope)
}
