// Package server exposes an embedd.Encoder over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/gomithril/embedd"
)

const defaultMaxBodyBytes = 1 << 20

type Options struct {
	// MaxBodyBytes caps the request body of POST /embed. Zero means 1 MiB.
	MaxBodyBytes int64
}

// New builds the router: request id, logging, panic recovery and a
// permissive CORS policy wrap every route.
func New(enc embedd.Encoder, opts Options, logger zerolog.Logger) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(logger))
	r.Use(requestID)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(recoverer)
	r.Use(cors.Handler(corsOptions()))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	h := &embedHandler{enc: enc, maxBody: opts.MaxBodyBytes, validate: newValidator()}
	r.Post("/embed", h.embed)
	r.Get("/healthz", healthHandler(enc))

	return r
}

// corsOptions allows any origin with credentials, every method and every
// header. The origin is echoed back rather than sent as "*", which browsers
// refuse on credentialed requests.
func corsOptions() cors.Options {
	return cors.Options{
		AllowOriginFunc: func(*http.Request, string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	event := logger.Info()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("bytes", size).
		Dur("duration", duration).
		Msg("request")
}
