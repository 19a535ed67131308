package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cool4zbl/build-redis-from-scratch/internal/storage/memory"
)

// StatsSource is implemented by *memory.Store.
type StatsSource interface {
	Stats() memory.Stats
}

// Handler serves the admin JSON endpoints.
type Handler struct {
	stats  StatsSource
	ready  func() bool
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a Handler. stats may be nil, in which case /stats reports
// 503; a nil ready is treated as always ready.
func New(stats StatsSource, ready func() bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		stats:  stats,
		ready:  ready,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /stats", h.handleStats)
	h.mux.HandleFunc("GET /version", h.handleVersion)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(w, r)
	h.write(w, status, NewResponse(requestID, data))
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := getRequestID(w, r)
	w.Header().Set("X-Error-Code", code)
	h.write(w, status, NewErrorResponse(requestID, code, message))
}

func (h *Handler) write(w http.ResponseWriter, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// getRequestID returns the ID set by the RequestID middleware, falling
// back to the one sent by the client.
func getRequestID(w http.ResponseWriter, r *http.Request) string {
	if reqID := w.Header().Get("X-Request-ID"); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}
