package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/hookguard/hookguard/internal/auth/middleware"
	"github.com/hookguard/hookguard/internal/rbac"
	"github.com/hookguard/hookguard/internal/training"
)

// Handlers only; routes are assembled in main.go.

func CreateCourseHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c training.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if c.ID == "" {
			c.ID = "c-" + uuid.NewString()
		}
		// Derived fields are never accepted from the payload.
		c.Progress = 0
		c.Completed = false
		for i := range c.Videos {
			c.Videos[i].Completed = false
		}
		if problems := training.ValidateCourse(c); len(problems) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"problems": problems})
			return
		}
		if err := store.PutCourse(r.Context(), c); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID})
	}
}

func ListCoursesHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := training.ListOpts{
			Q:          strings.TrimSpace(r.URL.Query().Get("q")),
			ViewerID:   authmw.SubjectFromContext(r.Context()),
			ViewerRole: rbac.RoleFromContext(r.Context()),
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			opts.Limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			opts.Offset = v
		}
		out, err := store.ListCourses(r.Context(), opts)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetCourseHandler returns the learner-safe course aggregate with the
// caller's enrollment state applied. Admins and managers without an
// enrollment get the pristine aggregate.
func GetCourseHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub := authmw.SubjectFromContext(r.Context())

		c, err := store.GetCourse(r.Context(), courseID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		var quizState map[string]training.VideoState
		e, err := store.GetEnrollment(r.Context(), courseID, sub)
		switch {
		case err == nil:
			e.Apply(&c)
			quizState = e.Videos
		case errors.Is(err, training.ErrNotFound):
			if rbac.RoleFromContext(r.Context()) == "learner" {
				http.Error(w, "not enrolled", http.StatusForbidden)
				return
			}
		default:
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"course":      c,
			"video_state": quizState,
		})
	}
}

// EnrollHandler assigns learners to a course (admin surface).
func EnrollHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		var req struct {
			UserIDs []string `json:"user_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		for _, uid := range req.UserIDs {
			uid = strings.TrimSpace(uid)
			if uid == "" {
				continue
			}
			if err := store.Enroll(r.Context(), courseID, uid); err != nil {
				writeStoreError(w, err)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListAttemptsHandler serves attempt history. Learners are pinned to their
// own attempts; managers and admins may filter by user.
func ListAttemptsHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := training.AttemptListOpts{
			CourseID: r.URL.Query().Get("course_id"),
			VideoID:  r.URL.Query().Get("video_id"),
			UserID:   r.URL.Query().Get("user_id"),
		}
		if rbac.RoleFromContext(r.Context()) == "learner" {
			opts.UserID = authmw.SubjectFromContext(r.Context())
		}
		out, err := store.ListAttempts(r.Context(), opts)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
