package handler

import (
	"net/http"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

// handleStatus handles GET /admin/v1/status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	st := h.keyspace.Stats()

	resp := StatusResponse{
		Version:   info.Version,
		Commit:    info.Commit,
		GoVersion: info.GoVersion,
		Keys:      h.keyspace.DBSize(r.Context()),
		KeysByType: KeysByType{
			Strings: st.Strings,
			Hashes:  st.Hashes,
			Sets:    st.Sets,
		},
	}
	if h.clients != nil {
		resp.ConnectedClients = h.clients.ClientCount()
		resp.UptimeSeconds = int64(h.clients.Uptime().Seconds())
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}
