package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// Keyspace is the view of the backend the handlers need.
type Keyspace interface {
	DBSize(ctx context.Context) int
	Stats() memory.Stats
}

// Clients is the view of the RESP server the handlers need.
type Clients interface {
	Running() bool
	ClientCount() int
	Uptime() time.Duration
}

// Handler serves the admin endpoints.
type Handler struct {
	keyspace Keyspace
	clients  Clients
	logger   logger.Logger
	mux      *http.ServeMux
}

// New creates a Handler. A nil clients makes /ready report not ready.
func New(keyspace Keyspace, clients Clients, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{
		keyspace: keyspace,
		clients:  clients,
		logger:   log,
		mux:      http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /admin/v1/status", h.handleStatus)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(w, r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := getRequestID(w, r)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// getRequestID returns the id set by the RequestID middleware, falling
// back to the incoming header.
func getRequestID(w http.ResponseWriter, r *http.Request) string {
	if id := w.Header().Get("X-Request-ID"); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
