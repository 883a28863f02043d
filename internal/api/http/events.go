package http

import (
	"net/http"
	"strconv"

	syncx "github.com/hookguard/hookguard/internal/sync"
)

// ListEventsHandler pages through the append-only training event log. A
// central reporting site polls this with its last seen offset.
func ListEventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var after int64
		if v, err := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64); err == nil && v > 0 {
			after = v
		}
		limit := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			limit = v
		}
		out, err := events.After(r.Context(), after, limit)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
