package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires the middleware chain and the routes served by h.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverer(log))

	RegisterHealthRoutes(r, h)
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
			MaxAge:         300,
		}))
		RegisterReviewRoutes(r, h)
	})
	return r
}

// RegisterHealthRoutes mounts the health check.
func RegisterHealthRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
}

// RegisterReviewRoutes mounts the review endpoint under an /api router.
func RegisterReviewRoutes(r chi.Router, h *Handler) {
	r.Post("/review", h.Review)
}
