// Package orchestrator is the façade over prediction generation: it
// validates requests, consults the limiter and result cache, expands
// scopes into concrete sub-requests, dispatches one aggregated call to
// the upstream generator, and merges what comes back.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mleray/forecastgate/pkg/cache"
	"github.com/mleray/forecastgate/pkg/forecast"
	"github.com/mleray/forecastgate/pkg/ratelimit"
	"github.com/mleray/forecastgate/pkg/store"
	"github.com/mleray/forecastgate/pkg/upstream"
)

// Journal receives one record per orchestration attempt. Optional;
// nothing on the generation path depends on it.
type Journal interface {
	AppendOutcome(ctx context.Context, rec store.Record) error
}

// Orchestrator coordinates cache, limiter, and the upstream generator.
// At most one upstream call is in flight per instance; a second caller
// is rejected immediately rather than queued.
type Orchestrator struct {
	cache     cache.ResultCache
	limiter   *ratelimit.Limiter
	generator upstream.Generator
	journal   Journal

	inFlight atomic.Bool

	mu          sync.Mutex
	lastOutcome OutcomeKind

	nowFunc func() time.Time
}

// New wires an orchestrator. journal may be nil.
func New(c cache.ResultCache, l *ratelimit.Limiter, g upstream.Generator, journal Journal) *Orchestrator {
	return &Orchestrator{
		cache:     c,
		limiter:   l,
		generator: g,
		journal:   journal,
		nowFunc:   time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (o *Orchestrator) SetNowFunc(f func() time.Time) {
	o.nowFunc = f
}

// Generate runs one orchestration. The order of checks is fixed: cache
// before limiter (a cached answer costs the upstream nothing), limiter
// before the in-flight guard, guard before the upstream dispatch.
func (o *Orchestrator) Generate(ctx context.Context, req forecast.PredictionRequest) Outcome {
	requestID := uuid.NewString()

	if err := req.Validate(); err != nil {
		var verr *forecast.ValidationError
		errors.As(err, &verr)
		return o.finish(Outcome{Kind: OutcomeInvalid, RequestID: requestID, Invalid: verr})
	}

	pairs := req.Expand()
	if len(pairs) == 0 {
		// Every requested pair was inapplicable and silently dropped.
		// There is nothing to compute, so nothing to charge quota for.
		result := &forecast.SegmentedResult{GeneratedAt: o.nowFunc()}
		return o.finish(Outcome{Kind: OutcomeSuccess, RequestID: requestID, Result: result})
	}

	key := cache.BuildKey(req.LocationID, req.ForecastDays, pairs)

	if result, ok := o.cache.Get(ctx, key); ok {
		outcome := Outcome{Kind: OutcomeCacheHit, RequestID: requestID, Result: result}
		o.journalOutcome(ctx, requestID, key, req, outcome)
		return o.finish(outcome)
	}

	acquire := o.limiter.TryAcquire()
	if !acquire.Granted() {
		outcome := Outcome{Kind: OutcomeRateLimited, RequestID: requestID, RateLimit: &acquire}
		o.journalOutcome(ctx, requestID, key, req, outcome)
		return o.finish(outcome)
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return Outcome{Kind: OutcomeInFlight, RequestID: requestID}
	}
	defer o.inFlight.Store(false)

	start := o.nowFunc()
	resp, err := o.generator.Generate(ctx, upstream.Request{
		Pairs:        pairs,
		ForecastDays: req.ForecastDays,
		LocationID:   req.LocationID,
	})
	upstreamLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		// No response came back: the attempt still consumes a session
		// slot but does not start the cooldown, and the cache is left
		// untouched.
		o.limiter.RecordFailure()
		uerr := asUpstreamError(err)
		upstreamFailures.WithLabelValues(string(uerr.Class)).Inc()
		outcome := Outcome{Kind: OutcomeUpstreamFailure, RequestID: requestID, Failure: uerr}
		o.journalOutcome(ctx, requestID, key, req, outcome)
		return o.finish(outcome)
	}

	// A completed exchange consumes quota and arms the cooldown even
	// when every pair came back as a SegmentError: the generator did
	// the compute work either way.
	o.limiter.RecordSuccess()

	result := o.merge(pairs, resp)
	o.cache.Put(ctx, key, result)

	outcome := Outcome{Kind: OutcomeSuccess, RequestID: requestID, Result: result}
	o.journalOutcome(ctx, requestID, key, req, outcome)
	return o.finish(outcome)
}

// merge assembles the per-pair responses into a SegmentedResult. Pairs
// the generator did not answer at all are surfaced as segment errors so
// the caller sees every requested pair accounted for.
func (o *Orchestrator) merge(pairs []forecast.Pair, resp *upstream.Response) *forecast.SegmentedResult {
	result := &forecast.SegmentedResult{
		ElapsedSeconds: resp.ElapsedSeconds,
		GeneratedAt:    o.nowFunc(),
	}
	for _, pair := range pairs {
		r, ok := resp.Results[pair]
		if !ok {
			r = forecast.PairResult{Err: &forecast.SegmentError{Message: "no result returned for pair"}}
		}
		result.Set(pair, r)
	}
	result.OverallConfidence = result.MinConfidence()
	return result
}

func (o *Orchestrator) finish(outcome Outcome) Outcome {
	orchestrations.WithLabelValues(string(outcome.Kind)).Inc()
	o.mu.Lock()
	o.lastOutcome = outcome.Kind
	o.mu.Unlock()
	return outcome
}

func (o *Orchestrator) journalOutcome(ctx context.Context, requestID, key string, req forecast.PredictionRequest, outcome Outcome) {
	if o.journal == nil {
		return
	}
	rec := store.Record{
		RequestID:    requestID,
		Timestamp:    o.nowFunc(),
		CacheKey:     key,
		Outcome:      string(outcome.Kind),
		ForecastDays: req.ForecastDays,
		LocationID:   req.LocationID,
	}
	if outcome.Result != nil {
		rec.ElapsedSeconds = outcome.Result.ElapsedSeconds
		rec.PairCount, rec.FailedPairs = outcome.Result.PairCount()
	}
	if outcome.Failure != nil {
		rec.FailureClass = string(outcome.Failure.Class)
	}
	if err := o.journal.AppendOutcome(ctx, rec); err != nil {
		log.Printf("failed to journal orchestration %s: %v", requestID, err)
	}
}

// Status reports the orchestrator's current view for the display layer.
func (o *Orchestrator) Status(ctx context.Context) Status {
	o.mu.Lock()
	last := o.lastOutcome
	o.mu.Unlock()

	rl := o.limiter.Status()
	return Status{
		LastOutcome:  last,
		InFlight:     o.inFlight.Load(),
		RateLimit:    rl,
		OfferReset:   rl.Exhausted,
		CacheEntries: o.cache.Entries(ctx),
	}
}

// InvalidateCache drops every cached result. Explicit, UI-triggered.
func (o *Orchestrator) InvalidateCache(ctx context.Context) {
	o.cache.InvalidateAll(ctx)
}

func asUpstreamError(err error) *upstream.Error {
	var uerr *upstream.Error
	if errors.As(err, &uerr) {
		return uerr
	}
	return &upstream.Error{Class: upstream.ClassUnknown, Message: err.Error()}
}
