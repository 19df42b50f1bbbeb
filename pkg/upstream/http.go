package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mleray/forecastgate/pkg/forecast"
)

// wirePairResult is the per-pair element of the generator's JSON
// response body.
type wirePairResult struct {
	Segment forecast.Segment           `json:"segment"`
	Type    forecast.PredictionType    `json:"type"`
	Series  *forecast.PredictionSeries `json:"series,omitempty"`
	Error   *forecast.SegmentError     `json:"error,omitempty"`
}

type wireResponse struct {
	ElapsedSeconds float64          `json:"elapsed_seconds"`
	Results        []wirePairResult `json:"results"`
}

// HTTPGenerator talks to the forecast service over HTTP. It also
// implements Resetter against the service's quota-reset endpoint.
type HTTPGenerator struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPGenerator(baseURL, token string) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *HTTPGenerator) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	return g.client.Do(req)
}

// Generate dispatches one aggregated prediction call. A non-2xx status
// or a transport error comes back as a classified *Error; a 2xx body is
// decoded into per-pair results, where individual pairs may still carry
// SegmentErrors.
func (g *HTTPGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := g.do(ctx, http.MethodPost, "/v1/predictions/generate", req)
	if err != nil {
		// No response came back: transport-level failure. This covers
		// timeouts as well; the caller treats both identically.
		return nil, &Error{Class: ClassTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Class:   ClassifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &Error{Class: ClassUnknown, Status: resp.StatusCode, Message: fmt.Sprintf("undecodable response body: %v", err)}
	}

	out := &Response{
		Results:        make(map[forecast.Pair]forecast.PairResult, len(wire.Results)),
		ElapsedSeconds: wire.ElapsedSeconds,
	}
	for _, r := range wire.Results {
		pair := forecast.Pair{Segment: r.Segment, Type: r.Type}
		out.Results[pair] = forecast.PairResult{Series: r.Series, Err: r.Error}
	}
	return out, nil
}

// ResetQuota calls the service's quota-reset endpoint.
func (g *HTTPGenerator) ResetQuota(ctx context.Context) error {
	resp, err := g.do(ctx, http.MethodPost, "/v1/predictions/quota/reset", nil)
	if err != nil {
		return &Error{Class: ClassTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{
			Class:   ClassifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}
	return nil
}
