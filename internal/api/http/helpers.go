package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hookguard/hookguard/internal/training"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeStoreError maps store errors onto status codes: unknown entities are
// 404, everything else is a 500 with a generic body.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, training.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "storage error", http.StatusInternalServerError)
}

// sanitizeQuestion hides correct-option flags before a question goes to a
// learner mid-attempt.
func sanitizeQuestion(q training.Question) training.Question {
	opts := make([]training.Option, len(q.Options))
	copy(opts, q.Options)
	for i := range opts {
		opts[i].IsCorrect = false
	}
	q.Options = opts
	return q
}
