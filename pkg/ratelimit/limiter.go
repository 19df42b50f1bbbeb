// Package ratelimit enforces the generation budget: a minimum cooldown
// between granted acquisitions and a hard per-session quota. It guards
// the upstream generator's compute, not the UI's request rate, so cache
// hits never touch it.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultCooldown      = 5 * time.Second
	DefaultMaxPerSession = 10
)

// AcquireKind discriminates the outcome of TryAcquire.
type AcquireKind string

const (
	AcquireGranted        AcquireKind = "granted"
	AcquireCooling        AcquireKind = "cooling"
	AcquireQuotaExhausted AcquireKind = "quota_exhausted"
)

// AcquireResult is the outcome of a TryAcquire call. Remaining is only
// set for AcquireCooling.
type AcquireResult struct {
	Kind      AcquireKind   `json:"kind"`
	Remaining time.Duration `json:"remaining,omitempty"`
}

// Granted reports whether the caller may proceed upstream.
func (r AcquireResult) Granted() bool {
	return r.Kind == AcquireGranted
}

// Status is a read-only snapshot for the display layer.
type Status struct {
	Used             int     `json:"used"`
	Max              int     `json:"max"`
	Exhausted        bool    `json:"exhausted"`
	CoolingRemaining float64 `json:"cooling_remaining_seconds"`
}

// Limiter owns the session's rate-limit state for the process lifetime.
// The counter only ever decreases through Reset.
type Limiter struct {
	mu            sync.Mutex
	lastSuccessAt time.Time // zero means no granted attempt yet
	sessionCount  int
	cooldown      time.Duration
	maxPerSession int

	nowFunc func() time.Time
}

// NewLimiter creates a limiter. Non-positive arguments fall back to the
// defaults.
func NewLimiter(cooldown time.Duration, maxPerSession int) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if maxPerSession <= 0 {
		maxPerSession = DefaultMaxPerSession
	}
	return &Limiter{
		cooldown:      cooldown,
		maxPerSession: maxPerSession,
		nowFunc:       time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (l *Limiter) SetNowFunc(f func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nowFunc = f
}

// TryAcquire checks whether a fresh upstream call may go out. The quota
// check comes first: once the session count reaches the maximum, the
// answer is QuotaExhausted no matter how much time has passed.
func (l *Limiter) TryAcquire() AcquireResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sessionCount >= l.maxPerSession {
		limiterDecisions.WithLabelValues(string(AcquireQuotaExhausted)).Inc()
		return AcquireResult{Kind: AcquireQuotaExhausted}
	}

	if !l.lastSuccessAt.IsZero() {
		elapsed := l.nowFunc().Sub(l.lastSuccessAt)
		if elapsed < l.cooldown {
			limiterDecisions.WithLabelValues(string(AcquireCooling)).Inc()
			return AcquireResult{Kind: AcquireCooling, Remaining: l.cooldown - elapsed}
		}
	}

	limiterDecisions.WithLabelValues(string(AcquireGranted)).Inc()
	return AcquireResult{Kind: AcquireGranted}
}

// RecordSuccess marks a completed upstream exchange: starts the
// cooldown and consumes one quota slot. A response carrying nothing but
// per-pair errors still lands here, because the generator did the work.
func (l *Limiter) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSuccessAt = l.nowFunc()
	l.sessionCount++
}

// RecordFailure consumes a quota slot without starting the cooldown.
// Used for transport-level failures where no response came back.
func (l *Limiter) RecordFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessionCount++
}

// Reset clears the session counter and the cooldown origin. Only the
// quota-reset path calls this.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessionCount = 0
	l.lastSuccessAt = time.Time{}
}

// Status reports the limiter's current view for the display layer. The
// cooling remainder is rounded to one decimal second.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := Status{
		Used:      l.sessionCount,
		Max:       l.maxPerSession,
		Exhausted: l.sessionCount >= l.maxPerSession,
	}
	if !l.lastSuccessAt.IsZero() {
		if remaining := l.cooldown - l.nowFunc().Sub(l.lastSuccessAt); remaining > 0 {
			st.CoolingRemaining = RoundSeconds(remaining)
		}
	}
	return st
}

// SessionCount returns the number of consumed quota slots.
func (l *Limiter) SessionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionCount
}

// LastSuccessAt returns the cooldown origin, zero when unset.
func (l *Limiter) LastSuccessAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSuccessAt
}

// RoundSeconds rounds a duration to one decimal second for display.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*10) / 10
}
