package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/review"
)

type fakeGen struct {
	text  string
	err   error
	panic bool
	calls int
}

func (f *fakeGen) Generate(context.Context, providers.GenerateRequest) (providers.GenerateResponse, error) {
	f.calls++
	if f.panic {
		panic("kaboom")
	}
	return providers.GenerateResponse{Text: f.text}, f.err
}

func (f *fakeGen) Model() string { return "fake" }

type fakeLister struct{ err error }

func (p fakeLister) ListModels(context.Context) ([]string, error) {
	return []string{"llama3.2:latest"}, p.err
}

type panickyReviewer struct{}

func (panickyReviewer) Review(context.Context, review.Request) (review.Result, error) {
	panic("handler exploded")
}

func newTestRouter(gen *fakeGen, models ModelLister) http.Handler {
	relay := review.NewRelay(gen, review.Options{})
	return NewRouter(NewHandler(relay, models, nil), RouterOptions{})
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReview_Success(t *testing.T) {
	gen := &fakeGen{text: "X"}
	rec := post(t, newTestRouter(gen, nil), `{"code":"print(1)","fileName":"a.py"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"fileName":"a.py","reviewResults":{"comprehensive_review":"X"}}`, rec.Body.String())
}

func TestReview_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"code":`},
		{"missing code", `{"fileName":"a.py"}`},
		{"missing fileName", `{"code":"x"}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{text: "X"}
			rec := post(t, newTestRouter(gen, nil), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Zero(t, gen.calls, "no outbound call for invalid input")
		})
	}
}

func TestReview_UpstreamError(t *testing.T) {
	gen := &fakeGen{err: &providers.StatusError{StatusCode: 500, Body: "boom"}}
	rec := post(t, newTestRouter(gen, nil), `{"code":"x","fileName":"a.go"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
	assert.NotContains(t, rec.Body.String(), "traceback")
}

func TestReview_InternalError(t *testing.T) {
	gen := &fakeGen{panic: true}
	rec := post(t, newTestRouter(gen, nil), `{"code":"x","fileName":"a.go"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "kaboom")
	assert.NotEmpty(t, body["traceback"])
}

func TestReview_HandlerPanicRecovered(t *testing.T) {
	h := NewRouter(NewHandler(panickyReviewer{}, nil, nil), RouterOptions{})
	rec := post(t, h, `{"code":"x","fileName":"a.go"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "handler exploded")
	assert.Contains(t, body["traceback"], "goroutine")
}

func TestReview_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/review", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeGen{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		models ModelLister
		want   string
	}{
		{"connected", fakeLister{}, "connected"},
		{"unreachable", fakeLister{err: errors.New("refused")}, "unreachable"},
		{"no lister", nil, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			newTestRouter(&fakeGen{}, tt.models).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "operational", body.Status)
			assert.Equal(t, "fully functional", body.Services.CodeReview)
			assert.Equal(t, tt.want, body.Services.OllamaIntegration)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/review", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeGen{}, nil).ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_RestrictedOrigin(t *testing.T) {
	relay := review.NewRelay(&fakeGen{text: "ok"}, review.Options{})
	h := NewRouter(NewHandler(relay, nil, nil), RouterOptions{AllowedOrigins: []string{"http://allowed.test"}})

	req := httptest.NewRequest(http.MethodPost, "/api/review", strings.NewReader(`{"code":"x","fileName":"a.go"}`))
	req.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
