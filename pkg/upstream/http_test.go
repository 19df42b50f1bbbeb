package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mleray/forecastgate/pkg/forecast"
)

func TestGenerateDecodesPerPairResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/predictions/generate", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 7, req.ForecastDays)
		assert.Len(t, req.Pairs, 2)

		resp := wireResponse{
			ElapsedSeconds: 2.4,
			Results: []wirePairResult{
				{
					Segment: forecast.SegmentRetail,
					Type:    forecast.TypeSales,
					Series: &forecast.PredictionSeries{
						Points:     []forecast.SeriesPoint{{Value: 100, Count: 4}},
						Confidence: forecast.ConfidenceHigh,
						Method:     "prophet",
					},
				},
				{
					Segment: forecast.SegmentWholesale,
					Type:    forecast.TypeStock,
					Error:   &forecast.SegmentError{Message: "insufficient history"},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "tok-1")
	resp, err := g.Generate(context.Background(), Request{
		Pairs: []forecast.Pair{
			{Segment: forecast.SegmentRetail, Type: forecast.TypeSales},
			{Segment: forecast.SegmentWholesale, Type: forecast.TypeStock},
		},
		ForecastDays: 7,
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.4, resp.ElapsedSeconds, 1e-9)

	ok := resp.Results[forecast.Pair{Segment: forecast.SegmentRetail, Type: forecast.TypeSales}]
	require.True(t, ok.OK())
	assert.Equal(t, forecast.ConfidenceHigh, ok.Series.Confidence)

	failed := resp.Results[forecast.Pair{Segment: forecast.SegmentWholesale, Type: forecast.TypeStock}]
	require.False(t, failed.OK())
	assert.Equal(t, "insufficient history", failed.Err.Message)
}

func TestGenerateClassifiesStatuses(t *testing.T) {
	cases := []struct {
		status int
		class  FailureClass
	}{
		{http.StatusUnauthorized, ClassUnauthorized},
		{http.StatusForbidden, ClassUnauthorized},
		{http.StatusTooManyRequests, ClassRateLimited},
		{http.StatusInternalServerError, ClassServer},
		{http.StatusBadGateway, ClassServer},
		{http.StatusTeapot, ClassUnknown},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))

		g := NewHTTPGenerator(srv.URL, "")
		_, err := g.Generate(context.Background(), Request{ForecastDays: 7})
		srv.Close()

		var uerr *Error
		require.ErrorAs(t, err, &uerr, "status %d", tc.status)
		assert.Equal(t, tc.class, uerr.Class, "status %d", tc.status)
		assert.Equal(t, tc.status, uerr.Status)
	}
}

func TestGenerateTransportFailure(t *testing.T) {
	// A server that is immediately closed produces a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewHTTPGenerator(srv.URL, "")
	_, err := g.Generate(context.Background(), Request{ForecastDays: 7})

	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, ClassTransport, uerr.Class)
	assert.Zero(t, uerr.Status)
}

func TestGenerateUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "")
	_, err := g.Generate(context.Background(), Request{ForecastDays: 7})

	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, ClassUnknown, uerr.Class)
}

func TestResetQuota(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/v1/predictions/quota/reset", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "")
	require.NoError(t, g.ResetQuota(context.Background()))
	assert.True(t, called)
}

func TestResetQuotaFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewHTTPGenerator(srv.URL, "")
	err := g.ResetQuota(context.Background())

	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, ClassUnauthorized, uerr.Class)
}

func TestMockGeneratorSynthesizesAllPairs(t *testing.T) {
	m := NewMockGenerator()
	pairs := forecast.ExpandScopes(forecast.SegmentAll, forecast.TypeAll)

	resp, err := m.Generate(context.Background(), Request{Pairs: pairs, ForecastDays: 7})
	require.NoError(t, err)
	assert.Len(t, resp.Results, len(pairs))
	assert.Equal(t, 1, m.CallCount())

	for pair, res := range resp.Results {
		require.True(t, res.OK(), "pair %v", pair)
		assert.Len(t, res.Series.Points, 7)
	}
}

func TestMockGeneratorFailPairs(t *testing.T) {
	m := NewMockGenerator()
	bad := forecast.Pair{Segment: forecast.SegmentRetail, Type: forecast.TypeCapacity}
	m.FailPairs = map[forecast.Pair]string{bad: "model offline"}

	resp, err := m.Generate(context.Background(), Request{
		Pairs:        []forecast.Pair{bad},
		ForecastDays: 7,
	})
	require.NoError(t, err)
	res := resp.Results[bad]
	require.False(t, res.OK())
	assert.Equal(t, "model offline", res.Err.Message)
}
