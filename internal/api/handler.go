// Package api exposes the document service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/a3tai/mcp-docintel/internal/docintel"
	"github.com/a3tai/mcp-docintel/internal/forms"
	"github.com/a3tai/mcp-docintel/internal/profile"
	"github.com/a3tai/mcp-docintel/internal/source"
)

// maxJSONBody caps JSON request bodies
const maxJSONBody = 4 * 1024 * 1024

type Handler struct {
	service     *docintel.Service
	logger      *slog.Logger
	serverName  string
	version     string
	maxFileSize int64
}

func New(service *docintel.Service, serverName, version string, logger *slog.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		service:     service,
		logger:      logger,
		serverName:  serverName,
		version:     version,
		maxFileSize: service.Source().MaxFileSize(),
	}

	return h, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/", h.handleIndex)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/documents/analyze", h.handleAnalyze)
		r.Post("/documents/field", h.handleField)
		r.Post("/documents/upload", h.handleUpload)

		r.Post("/forms/map", h.handleFormMap)
		r.Post("/forms/check", h.handleFormCheck)

		r.Get("/profiles/{key}", h.handleProfileGet)
		r.Post("/profiles/{key}/documents", h.handleProfileAttach)
	})
}

// Router builds the complete HTTP handler: request ids, access logging,
// panic recovery and CORS in front of the routes.
func (h *Handler) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	h.Attach(r)
	return r
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJson(w, map[string]any{
		"name":     h.serverName,
		"version":  h.version,
		"status":   "running",
		"profiles": h.service.ProfilesEnabled(),
	})
}

// readJson decodes a JSON request body into v
func readJson(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(map[string]string{"error": text})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, source.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, source.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, source.ErrOutsideDirectory):
		return http.StatusForbidden
	case errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docintel.ErrProfilesDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, profile.ErrEmptyKey),
		errors.Is(err, docintel.ErrEmptyText),
		errors.Is(err, docintel.ErrEmptyLabel),
		errors.Is(err, forms.ErrNoSchema):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
