package httpapi

import (
	"net"
	"net/http"
	"time"

	"jobhunt-harvester/internal/store"
)

type DBHandler struct {
	Store *store.DB
}

// Cleanup deletes runs older than ?older_than (a Go duration, default
// 2160h). Loopback callers only.
func (h DBHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		WriteError(w, r, http.StatusForbidden, CodeForbidden, "loopback only")
		return
	}
	if h.Store == nil {
		WriteError(w, r, http.StatusServiceUnavailable, CodeNoStore, "run history is disabled")
		return
	}

	age := 90 * 24 * time.Hour
	if v := r.URL.Query().Get("older_than"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			WriteError(w, r, http.StatusBadRequest, CodeInvalidDuration, "older_than must be a positive duration")
			return
		}
		age = d
	}

	n, err := h.Store.CleanupOldRuns(r.Context(), age)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "deleted": n})
}
