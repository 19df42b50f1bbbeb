// Package api exposes the prediction orchestration over HTTP for the
// dashboard frontend.
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mleray/forecastgate/pkg/forecast"
	"github.com/mleray/forecastgate/pkg/orchestrator"
	"github.com/mleray/forecastgate/pkg/ratelimit"
	"github.com/mleray/forecastgate/pkg/store"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// Interfaces for dependencies to enable mocking

type OrchestratorInterface interface {
	Generate(ctx context.Context, req forecast.PredictionRequest) orchestrator.Outcome
	Status(ctx context.Context) orchestrator.Status
	InvalidateCache(ctx context.Context)
}

type ResetCoordinatorInterface interface {
	Reset(ctx context.Context) orchestrator.ResetOutcome
}

type JournalReaderInterface interface {
	RecentOutcomes(ctx context.Context, limit int) ([]store.Record, error)
}

// Server encapsulates the HTTP API server.
type Server struct {
	orc     OrchestratorInterface
	reset   ResetCoordinatorInterface
	journal JournalReaderInterface
	server  *http.Server
}

// NewServer creates the API server. journal may be nil, in which case
// the history endpoint reports 404.
func NewServer(orc OrchestratorInterface, reset ResetCoordinatorInterface, journal JournalReaderInterface, addr string) *Server {
	s := &Server{orc: orc, reset: reset, journal: journal}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/predictions", s.handleGenerate)
	mux.HandleFunc("/v1/predictions/status", s.handleStatus)
	mux.HandleFunc("/v1/quota/reset", s.handleQuotaReset)
	mux.HandleFunc("/v1/cache/invalidate", s.handleCacheInvalidate)
	mux.HandleFunc("/v1/history", s.handleHistory)

	handler := withLogging(withRecovery(mux))

	if addr == "" {
		addr = ":8091"
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	return s
}

// Start runs the HTTP server (blocking).
func (s *Server) Start() error {
	fmt.Printf(`{"level":"info","msg":"server_starting","addr":"%s"}`+"\n", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println(`{"level":"info","msg":"server_stopping"}`)
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGenerate runs one orchestration and maps the outcome onto an
// HTTP status: 200 for served results, 400 for validation failures,
// 409 while another orchestration is in flight, 429 when rate limited,
// 502 for upstream failures.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed"})
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_json_body"})
		return
	}

	outcome := s.orc.Generate(r.Context(), forecast.PredictionRequest{
		SegmentScope: req.SegmentScope,
		TypeScope:    req.TypeScope,
		ForecastDays: req.ForecastDays,
		LocationID:   req.LocationID,
	})

	switch outcome.Kind {
	case orchestrator.OutcomeCacheHit, orchestrator.OutcomeSuccess:
		writeJSON(w, http.StatusOK, GenerateResponse{
			Kind:      string(outcome.Kind),
			RequestID: outcome.RequestID,
			Result:    outcome.Result,
		})

	case orchestrator.OutcomeInvalid:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: outcome.Invalid.Error()})

	case orchestrator.OutcomeInFlight:
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "generation_already_in_flight"})

	case orchestrator.OutcomeRateLimited:
		resp := RateLimitedResponse{Kind: string(outcome.Kind)}
		switch outcome.RateLimit.Kind {
		case ratelimit.AcquireCooling:
			resp.CoolingRemaining = ratelimit.RoundSeconds(outcome.RateLimit.Remaining)
			resp.Detail = fmt.Sprintf("cooling down, %.1fs remaining", resp.CoolingRemaining)
		case ratelimit.AcquireQuotaExhausted:
			resp.QuotaExhausted = true
			resp.OfferReset = true
			resp.Detail = "session quota exhausted; reset required"
		}
		writeJSON(w, http.StatusTooManyRequests, resp)

	case orchestrator.OutcomeUpstreamFailure:
		writeJSON(w, http.StatusBadGateway, UpstreamFailureResponse{
			Kind:    string(outcome.Kind),
			Class:   string(outcome.Failure.Class),
			Message: outcome.Failure.Message,
			Hint:    outcome.Failure.Class.Hint(),
		})

	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "unknown_outcome"})
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed"})
		return
	}
	writeJSON(w, http.StatusOK, s.orc.Status(r.Context()))
}

func (s *Server) handleQuotaReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed"})
		return
	}
	outcome := s.reset.Reset(r.Context())
	if !outcome.Cleared {
		writeJSON(w, http.StatusBadGateway, outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed"})
		return
	}
	s.orc.InvalidateCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed"})
		return
	}
	if s.journal == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "history_not_enabled"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_limit"})
			return
		}
		limit = parsed
	}

	records, err := s.journal.RecentOutcomes(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "history_query_failed"})
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Middleware: Panic Recovery
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Printf(`{"level":"error","msg":"panic_recovered","error":"%v","path":"%s"}`+"\n", err, r.URL.Path)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}
		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		fmt.Printf(`{"level":"info","msg":"http_request","trace_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`+"\n",
			traceID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
