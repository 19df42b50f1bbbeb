package upstream

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mleray/forecastgate/pkg/forecast"
)

// MockGenerator synthesizes plausible prediction series locally. The
// daemon falls back to it when no upstream URL is configured, and tests
// use it to script failures.
type MockGenerator struct {
	mu        sync.Mutex
	callCount int

	// FailWith, when set, is returned for every Generate call.
	FailWith error

	// FailPairs lists pairs that respond with a SegmentError instead of
	// a series.
	FailPairs map[forecast.Pair]string

	// Latency is slept before responding, honoring ctx cancellation.
	Latency time.Duration

	baseValue map[forecast.PredictionType]float64
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		baseValue: map[forecast.PredictionType]float64{
			forecast.TypeSales:    1200,
			forecast.TypeCapacity: 0.72,
			forecast.TypeStock:    340,
		},
	}
}

// CallCount reports how many Generate calls were made.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.callCount++
	failWith := m.FailWith
	latency := m.Latency
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return nil, &Error{Class: ClassTransport, Message: ctx.Err().Error()}
		case <-time.After(latency):
		}
	}

	if failWith != nil {
		return nil, failWith
	}

	start := time.Now()
	resp := &Response{Results: make(map[forecast.Pair]forecast.PairResult, len(req.Pairs))}

	for _, pair := range req.Pairs {
		if msg, ok := m.FailPairs[pair]; ok {
			resp.Results[pair] = forecast.PairResult{Err: &forecast.SegmentError{Message: msg}}
			continue
		}
		resp.Results[pair] = forecast.PairResult{Series: m.synthesize(pair, req.ForecastDays)}
	}

	resp.ElapsedSeconds = time.Since(start).Seconds()
	return resp, nil
}

// ResetQuota always succeeds on the mock.
func (m *MockGenerator) ResetQuota(ctx context.Context) error {
	return nil
}

func (m *MockGenerator) synthesize(pair forecast.Pair, days int) *forecast.PredictionSeries {
	base := m.baseValue[pair.Type]
	if pair.Segment == forecast.SegmentCombined {
		base *= 1.8
	}

	points := make([]forecast.SeriesPoint, days)
	day := time.Now().UTC().Truncate(24 * time.Hour)
	for i := range points {
		noise := 1 + (rand.Float64()-0.5)*0.2
		value := base * noise
		points[i] = forecast.SeriesPoint{
			Date:  day.AddDate(0, 0, i+1),
			Value: value,
			Count: int64(value / 25),
		}
	}

	// Confidence degrades with horizon length.
	confidence := forecast.ConfidenceHigh
	switch {
	case days > 21:
		confidence = forecast.ConfidenceLow
	case days > 7:
		confidence = forecast.ConfidenceMedium
	}

	return &forecast.PredictionSeries{
		Points:     points,
		Confidence: confidence,
		Method:     fmt.Sprintf("mock_linear_%s", pair.Type),
	}
}
