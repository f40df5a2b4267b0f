package handler

import (
	"net/http"
	"time"
)

// ProbeStatus is the body of the liveness and readiness checks.
type ProbeStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
	Clients       int    `json:"clients"`
	CheckedAt     string `json:"checked_at"`
}

func (h *Handler) statusBody(status string) ProbeStatus {
	p := ProbeStatus{
		Status:    status,
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if h.clients != nil {
		p.UptimeSeconds = int64(h.clients.Uptime().Seconds())
		p.Clients = h.clients.ClientCount()
	}
	return p
}

// GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.statusBody("alive"))
}

// GET /ready: 503 until the RESP listeners accept connections.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.clients == nil || !h.clients.Running() {
		h.writeError(w, r, http.StatusServiceUnavailable, CodeNotReady, "resp listener not started")
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.statusBody("ready"))
}
