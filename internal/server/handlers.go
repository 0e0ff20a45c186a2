package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dshills/codelens/internal/review"
)

// MaxBodyBytes bounds the size of a review request.
const MaxBodyBytes = 10 << 20

// HealthCheckTimeout bounds the health check's call to the generation service.
const HealthCheckTimeout = 2 * time.Second

// Reviewer is the relay contract served by the review endpoint.
type Reviewer interface {
	Review(ctx context.Context, req review.Request) (review.Result, error)
}

// ModelLister is queried by the health endpoint.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Handler serves the HTTP routes.
type Handler struct {
	relay  Reviewer
	models ModelLister
	log    *slog.Logger
}

// NewHandler creates a Handler. models may be nil, in which case the health
// check reports the generation service as unknown.
func NewHandler(relay Reviewer, models ModelLister, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{relay: relay, models: models, log: log}
}

type errorBody struct {
	Error     string `json:"error"`
	Traceback string `json:"traceback,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string         `json:"status"`
	Services HealthServices `json:"services"`
}

// HealthServices reports per-dependency state.
type HealthServices struct {
	CodeReview        string `json:"code_review"`
	OllamaIntegration string `json:"ollama_integration"`
}

// Review handles POST /api/review.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req review.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return
	}

	res, err := h.relay.Review(r.Context(), req)
	if err != nil {
		status, body := errorResponse(err)
		h.log.Warn("review failed", "file", req.FileName, "kind", review.KindOf(err).String(), "status", status, "error", err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func errorResponse(err error) (int, errorBody) {
	var re *review.Error
	if !errors.As(err, &re) {
		return http.StatusInternalServerError, errorBody{Error: "Internal Server Error: " + err.Error()}
	}
	switch re.Kind {
	case review.KindInvalidInput:
		return http.StatusBadRequest, errorBody{Error: re.Msg}
	case review.KindUpstream:
		return http.StatusBadGateway, errorBody{Error: "Ollama API Request Failed: " + errString(re.Err)}
	default:
		return http.StatusInternalServerError, errorBody{Error: "Internal Server Error: " + errString(re.Err), Traceback: re.Stack}
	}
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "operational",
		Services: HealthServices{
			CodeReview:        "fully functional",
			OllamaIntegration: "unknown",
		},
	}
	if h.models != nil {
		ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
		defer cancel()
		if _, err := h.models.ListModels(ctx); err != nil {
			h.log.Debug("generation service health check failed", "error", err)
			resp.Services.OllamaIntegration = "unreachable"
		} else {
			resp.Services.OllamaIntegration = "connected"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encoding response", "error", err)
	}
}
