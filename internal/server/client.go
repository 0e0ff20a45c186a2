package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/review"
)

// Client calls a running codelens server. It satisfies the same relay
// contract as review.Relay, with errors mapped back from status codes.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL (e.g. http://localhost:5000).
// timeout bounds each call; zero keeps the default of five minutes.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Review posts req to /api/review.
func (c *Client) Review(ctx context.Context, req review.Request) (review.Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return review.Result{}, review.Internal(fmt.Errorf("marshaling request: %w", err), nil)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/review", bytes.NewReader(payload))
	if err != nil {
		return review.Result{}, review.Internal(fmt.Errorf("creating request: %w", err), nil)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(middleware.RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return review.Result{}, review.Upstream(fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return review.Result{}, review.Upstream(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode == http.StatusOK {
		var res review.Result
		if err := json.Unmarshal(body, &res); err != nil {
			return review.Result{}, review.Upstream(fmt.Errorf("parsing response: %w", err))
		}
		return res, nil
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(body))
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return review.Result{}, review.InvalidInput(eb.Error)
	case resp.StatusCode >= 500 && resp.StatusCode != http.StatusInternalServerError:
		return review.Result{}, review.Upstream(&providers.StatusError{StatusCode: resp.StatusCode, Body: eb.Error})
	default:
		return review.Result{}, review.Internal(errors.New(eb.Error), []byte(eb.Traceback))
	}
}

// Health fetches GET /health.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return HealthResponse{}, &providers.StatusError{StatusCode: resp.StatusCode}
	}
	var h HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return HealthResponse{}, fmt.Errorf("parsing response: %w", err)
	}
	return h, nil
}
