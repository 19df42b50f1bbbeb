package forecast

import "time"

// Segment identifies a business division a forecast is computed for.
type Segment string

const (
	SegmentRetail    Segment = "retail"
	SegmentWholesale Segment = "wholesale"
	SegmentCombined  Segment = "combined"

	// SegmentAll is the wildcard scope meaning "every segment".
	SegmentAll Segment = "all"
)

// PredictionType is a forecast kind.
type PredictionType string

const (
	TypeSales    PredictionType = "sales"
	TypeCapacity PredictionType = "capacity"
	TypeStock    PredictionType = "stock"

	// TypeAll is the wildcard scope meaning "every applicable kind".
	TypeAll PredictionType = "all"
)

// Confidence is the discrete confidence level attached to a series.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// confidenceRank orders levels low < medium < high.
func confidenceRank(c Confidence) int {
	switch c {
	case ConfidenceLow:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceHigh:
		return 2
	default:
		return -1
	}
}

// Valid reports whether c is one of the three known levels.
func (c Confidence) Valid() bool {
	return confidenceRank(c) >= 0
}

// SeriesPoint is a single forecasted observation.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Count int64     `json:"count"`
}

// PredictionSeries is the output of the upstream generator for one
// (segment, type) pair. The core never mutates its contents.
type PredictionSeries struct {
	Points     []SeriesPoint `json:"points"`
	Confidence Confidence    `json:"confidence"`
	Method     string        `json:"method,omitempty"`
}

// SegmentError is a per-pair failure reported inside an otherwise
// successful upstream response. It never escalates to a call failure.
type SegmentError struct {
	Message string `json:"message"`
}

// PairResult holds either a series or a segment error for one pair.
// Exactly one of Series and Err is set.
type PairResult struct {
	Series *PredictionSeries `json:"series,omitempty"`
	Err    *SegmentError     `json:"error,omitempty"`
}

// OK reports whether the pair produced a series.
func (r PairResult) OK() bool {
	return r.Series != nil
}

// Pair is a concrete (segment, type) sub-request after scope expansion.
type Pair struct {
	Segment Segment        `json:"segment"`
	Type    PredictionType `json:"type"`
}

// SegmentedResult is the merged output of one orchestration: per segment,
// per type, either a series or an error.
type SegmentedResult struct {
	Segments map[Segment]map[PredictionType]PairResult `json:"segments"`

	// OverallConfidence is the lowest confidence among successful series,
	// empty when no series succeeded.
	OverallConfidence Confidence `json:"overall_confidence,omitempty"`

	ElapsedSeconds float64   `json:"elapsed_seconds"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Set records the result for one pair, allocating the inner map as needed.
func (s *SegmentedResult) Set(p Pair, r PairResult) {
	if s.Segments == nil {
		s.Segments = make(map[Segment]map[PredictionType]PairResult)
	}
	inner, ok := s.Segments[p.Segment]
	if !ok {
		inner = make(map[PredictionType]PairResult)
		s.Segments[p.Segment] = inner
	}
	inner[p.Type] = r
}

// Get returns the result for one pair.
func (s *SegmentedResult) Get(p Pair) (PairResult, bool) {
	inner, ok := s.Segments[p.Segment]
	if !ok {
		return PairResult{}, false
	}
	r, ok := inner[p.Type]
	return r, ok
}

// PairCount returns the total number of recorded pairs and how many of
// them carry errors.
func (s *SegmentedResult) PairCount() (total, failed int) {
	for _, inner := range s.Segments {
		for _, r := range inner {
			total++
			if !r.OK() {
				failed++
			}
		}
	}
	return total, failed
}

// MinConfidence computes the overall confidence of the result: the
// lowest level among successful series, or "" when none succeeded.
func (s *SegmentedResult) MinConfidence() Confidence {
	min := Confidence("")
	for _, inner := range s.Segments {
		for _, r := range inner {
			if !r.OK() || !r.Series.Confidence.Valid() {
				continue
			}
			if min == "" || confidenceRank(r.Series.Confidence) < confidenceRank(min) {
				min = r.Series.Confidence
			}
		}
	}
	return min
}
