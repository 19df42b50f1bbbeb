package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T) (*Limiter, *time.Time) {
	t.Helper()
	l := NewLimiter(5*time.Second, 10)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.SetNowFunc(func() time.Time { return now })
	return l, &now
}

func TestFirstAcquireGranted(t *testing.T) {
	l, _ := newTestLimiter(t)
	assert.Equal(t, AcquireGranted, l.TryAcquire().Kind)
}

func TestCooldownEnforced(t *testing.T) {
	l, now := newTestLimiter(t)

	assert.True(t, l.TryAcquire().Granted())
	l.RecordSuccess()

	*now = now.Add(2 * time.Second)
	res := l.TryAcquire()
	assert.Equal(t, AcquireCooling, res.Kind)
	assert.Equal(t, 3*time.Second, res.Remaining)

	// Within 100ms accuracy near the boundary.
	*now = now.Add(2*time.Second + 950*time.Millisecond)
	res = l.TryAcquire()
	assert.Equal(t, AcquireCooling, res.Kind)
	assert.InDelta(t, 0.05, res.Remaining.Seconds(), 0.1)

	*now = now.Add(50 * time.Millisecond)
	assert.True(t, l.TryAcquire().Granted())
}

func TestQuotaExhaustedAfterMax(t *testing.T) {
	l, now := newTestLimiter(t)

	for i := 0; i < 10; i++ {
		assert.True(t, l.TryAcquire().Granted(), "attempt %d", i)
		l.RecordSuccess()
		*now = now.Add(6 * time.Second)
	}

	// The 11th attempt fails regardless of elapsed time.
	*now = now.Add(24 * time.Hour)
	assert.Equal(t, AcquireQuotaExhausted, l.TryAcquire().Kind)
}

func TestQuotaCheckedBeforeCooldown(t *testing.T) {
	l, _ := newTestLimiter(t)
	for i := 0; i < 10; i++ {
		l.RecordSuccess()
	}
	// Still inside the cooldown window, but the quota answer wins.
	assert.Equal(t, AcquireQuotaExhausted, l.TryAcquire().Kind)
}

func TestRecordFailureConsumesQuotaWithoutCooldown(t *testing.T) {
	l, _ := newTestLimiter(t)

	l.RecordFailure()
	assert.Equal(t, 1, l.SessionCount())
	assert.True(t, l.LastSuccessAt().IsZero())

	// No cooldown started, next attempt goes straight through.
	assert.True(t, l.TryAcquire().Granted())
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(t)
	for i := 0; i < 10; i++ {
		l.RecordSuccess()
	}
	assert.Equal(t, AcquireQuotaExhausted, l.TryAcquire().Kind)

	l.Reset()
	assert.Equal(t, 0, l.SessionCount())
	assert.True(t, l.LastSuccessAt().IsZero())
	assert.True(t, l.TryAcquire().Granted())
}

func TestStatus(t *testing.T) {
	l, now := newTestLimiter(t)

	st := l.Status()
	assert.Equal(t, 0, st.Used)
	assert.Equal(t, 10, st.Max)
	assert.False(t, st.Exhausted)
	assert.Zero(t, st.CoolingRemaining)

	l.RecordSuccess()
	*now = now.Add(1700 * time.Millisecond)
	st = l.Status()
	assert.Equal(t, 1, st.Used)
	assert.InDelta(t, 3.3, st.CoolingRemaining, 1e-9)

	for i := 0; i < 9; i++ {
		l.RecordSuccess()
	}
	assert.True(t, l.Status().Exhausted)
}

func TestRoundSeconds(t *testing.T) {
	assert.InDelta(t, 3.3, RoundSeconds(3340*time.Millisecond), 1e-9)
	assert.InDelta(t, 3.4, RoundSeconds(3360*time.Millisecond), 1e-9)
	assert.InDelta(t, 5.0, RoundSeconds(5*time.Second), 1e-9)
}

func TestDefaults(t *testing.T) {
	l := NewLimiter(0, 0)
	assert.Equal(t, DefaultCooldown, l.cooldown)
	assert.Equal(t, DefaultMaxPerSession, l.maxPerSession)
}
