package api

import (
	"net/http"
	"time"

	"github.com/cheetahbyte/licensemgr/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	RequestTimeout time.Duration
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

func Register(r *chi.Mux, h *handlers.Handlers, opts Options) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	authEnabled := h.Services.Auth().Enabled()

	r.Use(CORS(authEnabled))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.NotFound(handlers.InvalidRoute)
	r.MethodNotAllowed(handlers.InvalidRoute)

	r.Route("/licenses", func(lr chi.Router) {
		lr.Use(h.RequireAdmin)
		lr.Get("/", h.ListLicenses)
		lr.Post("/", h.CreateLicense)
		lr.Get("/{key}", h.GetLicense)
		lr.Delete("/{key}", h.DeleteLicense)
	})

	r.Get("/validate", h.ValidateLicense)
	r.Get("/healthz", h.Health)

	if authEnabled {
		r.Post("/auth/login", h.Login)
	}

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
}
