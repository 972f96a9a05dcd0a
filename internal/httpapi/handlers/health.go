package handlers

import (
	"net/http"

	"github.com/nabeel-w/ButterCut-Assignment/internal/httpkit"
)

// Health reports liveness. With ?deep=true it also pings the store and the
// queue, returning 503 when either backing service is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.archive != nil {
		body["archive"] = h.archive.Name()
	}

	if r.URL.Query().Get("deep") != "true" {
		httpkit.WriteJSON(w, 200, body)
		return
	}

	ctx := r.Context()
	status := 200

	if err := h.store.Ping(ctx); err != nil {
		body["store"] = "unreachable"
		status = 503
	} else {
		body["store"] = "ok"
	}

	if err := h.queue.Ping(ctx); err != nil {
		body["queue"] = "unreachable"
		status = 503
	} else {
		body["queue"] = "ok"
	}

	if status != 200 {
		body["status"] = "degraded"
	}
	httpkit.WriteJSON(w, status, body)
}
