package orchestrator

import (
	"context"
	"log"

	"github.com/mleray/forecastgate/pkg/ratelimit"
	"github.com/mleray/forecastgate/pkg/upstream"
)

// ResetOutcome is the result of a quota reset attempt.
type ResetOutcome struct {
	Cleared bool   `json:"cleared"`
	Reason  string `json:"reason,omitempty"`
}

// QuotaResetCoordinator invokes the reset collaborator and, on success,
// clears the local limiter state. It never retries on its own; the
// caller may re-invoke Generate once after a successful reset, but that
// convenience lives with the caller.
type QuotaResetCoordinator struct {
	resetter upstream.Resetter
	limiter  *ratelimit.Limiter
}

func NewQuotaResetCoordinator(r upstream.Resetter, l *ratelimit.Limiter) *QuotaResetCoordinator {
	return &QuotaResetCoordinator{resetter: r, limiter: l}
}

// Reset calls the reset endpoint. The limiter is only cleared when the
// collaborator confirms success; a failed reset leaves the session
// state exactly as it was.
func (c *QuotaResetCoordinator) Reset(ctx context.Context) ResetOutcome {
	if err := c.resetter.ResetQuota(ctx); err != nil {
		log.Printf("quota reset failed: %v", err)
		quotaResets.WithLabelValues("failed").Inc()
		return ResetOutcome{Cleared: false, Reason: err.Error()}
	}
	c.limiter.Reset()
	quotaResets.WithLabelValues("cleared").Inc()
	return ResetOutcome{Cleared: true}
}
