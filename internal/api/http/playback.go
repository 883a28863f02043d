package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/hookguard/hookguard/internal/auth/middleware"
	syncx "github.com/hookguard/hookguard/internal/sync"
	"github.com/hookguard/hookguard/internal/training"
)

// VideoEndedHandler consumes the player's "ended" signal: flips the video's
// completion through the tracker, lets the aggregator recompute the course,
// persists the enrollment and logs the event. Repeat signals for an already
// completed video are accepted and do nothing.
func VideoEndedHandler(store training.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		videoID := chi.URLParam(r, "videoID")
		sub := authmw.SubjectFromContext(r.Context())

		c, err := store.GetCourse(r.Context(), courseID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		e, err := store.GetEnrollment(r.Context(), courseID, sub)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		e.Apply(&c)

		video := c.FindVideo(videoID)
		if video == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		var emitted []training.Event
		agg := training.NewProgressAggregator(&c, training.SinkFunc(func(ev training.Event) {
			emitted = append(emitted, ev)
		}))
		tracker := training.NewPlaybackTracker(courseID, sub, video, agg)
		changed := tracker.OnPlaybackEnded()

		if changed {
			e.Capture(c)
			if err := store.SaveEnrollment(r.Context(), e); err != nil {
				writeStoreError(w, err)
				return
			}
			if events != nil {
				for _, ev := range emitted {
					// Best effort: a full event log never blocks progress.
					_ = events.AppendTraining(r.Context(), ev)
				}
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"video_id":         videoID,
			"video_completed":  video.Completed,
			"changed":          changed,
			"progress":         c.Progress,
			"course_completed": c.Completed,
		})
	}
}
