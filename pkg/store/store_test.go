package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDB, err := os.CreateTemp("", "forecastgate-test-*.db")
	require.NoError(t, err)
	tmpDB.Close()
	t.Cleanup(func() { os.Remove(tmpDB.Name()) })

	s, err := NewStore(tmpDB.Name())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndReadOutcomes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"req-a", "req-b", "req-c"} {
		err := s.AppendOutcome(ctx, Record{
			RequestID:      id,
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			CacheKey:       "loc-1|7|retail|sales",
			Outcome:        "success",
			ElapsedSeconds: 1.5,
			PairCount:      7,
			FailedPairs:    1,
			ForecastDays:   7,
			LocationID:     "loc-1",
		})
		require.NoError(t, err)
	}

	records, err := s.RecentOutcomes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "req-c", records[0].RequestID)
	assert.Equal(t, "req-b", records[1].RequestID)
	assert.Equal(t, "success", records[0].Outcome)
	assert.Equal(t, 7, records[0].PairCount)
	assert.Equal(t, "loc-1", records[0].LocationID)
}

func TestRecentOutcomesEmpty(t *testing.T) {
	s := newTestStore(t)
	records, err := s.RecentOutcomes(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppendFailureRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.AppendOutcome(ctx, Record{
		RequestID:    "r1",
		Timestamp:    time.Now(),
		CacheKey:     "|7|combined|sales",
		Outcome:      "upstream_failure",
		FailureClass: "transport",
		ForecastDays: 7,
	})
	require.NoError(t, err)

	records, err := s.RecentOutcomes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "transport", records[0].FailureClass)
	assert.Empty(t, records[0].LocationID)
}

func TestDuplicateRequestIDRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := Record{RequestID: "dup", Timestamp: time.Now(), CacheKey: "k", Outcome: "success"}
	require.NoError(t, s.AppendOutcome(ctx, rec))
	assert.Error(t, s.AppendOutcome(ctx, rec))
}
