package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	authmw "github.com/hookguard/hookguard/internal/auth/middleware"
	syncx "github.com/hookguard/hookguard/internal/sync"
	"github.com/hookguard/hookguard/internal/training"
)

// QuizSessions holds live quiz attempts. Sessions are ephemeral: a process
// restart or an abandoned view simply drops them, and only completed
// attempts reach the store.
type QuizSessions struct {
	mu   sync.RWMutex
	byID map[string]*training.QuizSession
}

func NewQuizSessions() *QuizSessions {
	return &QuizSessions{byID: map[string]*training.QuizSession{}}
}

func (s *QuizSessions) add(qs *training.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[qs.ID] = qs
}

// get returns the session only to its owner.
func (s *QuizSessions) get(id, userID string) *training.QuizSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qs := s.byID[id]
	if qs == nil || qs.UserID != userID {
		return nil
	}
	return qs
}

type quizStateResponse struct {
	SessionID string             `json:"session_id"`
	Status    string             `json:"status"`
	Current   int                `json:"current_index"`
	Total     int                `json:"total"`
	Question  *training.Question `json:"question,omitempty"`
	Score     int                `json:"score,omitempty"`
	Passed    bool               `json:"passed,omitempty"`
}

func stateOf(qs *training.QuizSession) quizStateResponse {
	resp := quizStateResponse{
		SessionID: qs.ID,
		Status:    string(qs.Status),
		Current:   qs.Current,
		Total:     len(qs.Questions),
	}
	if q, ok := qs.CurrentQuestion(); ok {
		sq := sanitizeQuestion(q)
		resp.Question = &sq
	}
	if qs.Status == training.QuizCompleted {
		resp.Score = qs.Score
		resp.Passed = qs.Passed()
	}
	return resp
}

// OpenQuizHandler creates a session for the video's quiz and returns the
// first question. The session is built from the admin view of the course
// because grading needs the answer keys; they never leave the server.
func OpenQuizHandler(store training.Store, sessions *QuizSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		videoID := chi.URLParam(r, "videoID")
		sub := authmw.SubjectFromContext(r.Context())

		if _, err := store.GetEnrollment(r.Context(), courseID, sub); err != nil {
			writeStoreError(w, err)
			return
		}
		c, err := store.GetCourseAdmin(r.Context(), courseID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		video := c.FindVideo(videoID)
		if video == nil || !video.HasQuiz() {
			http.Error(w, "no quiz for this video", http.StatusNotFound)
			return
		}
		loaded := training.LoadQuestions(video.Questions)
		if !loaded.Valid() {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"problems": loaded.Problems})
			return
		}

		qs := training.NewQuizSession(courseID, videoID, sub, loaded.Questions)
		qs.Start()
		sessions.add(qs)
		writeJSON(w, http.StatusCreated, stateOf(qs))
	}
}

func SelectAnswerHandler(sessions *QuizSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := sessions.get(chi.URLParam(r, "sessionID"), authmw.SubjectFromContext(r.Context()))
		if qs == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var req struct {
			QuestionID string `json:"question_id"`
			OptionID   string `json:"option_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID == "" || req.OptionID == "" {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		qs.SelectAnswer(req.QuestionID, req.OptionID)
		writeJSON(w, http.StatusOK, stateOf(qs))
	}
}

// AdvanceHandler steps the session. A rejected advance (no answer for the
// current question) is reported in the body, not as an HTTP error. On
// completion the attempt and the learner's quiz state are persisted.
func AdvanceHandler(store training.Store, sessions *QuizSessions, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		qs := sessions.get(chi.URLParam(r, "sessionID"), sub)
		if qs == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		completed := false
		qs.OnComplete(func(score int, passed bool) { completed = true })
		advanced := qs.Advance()

		if completed {
			a := qs.Snapshot()
			if err := store.SaveAttempt(r.Context(), a); err != nil {
				writeStoreError(w, err)
				return
			}
			// Quiz outcome is recorded on the enrollment for Review/Start
			// labeling; passing stays sticky across later failed retries.
			if e, err := store.GetEnrollment(r.Context(), qs.CourseID, sub); err == nil {
				st := e.Videos[qs.VideoID]
				st.QuizScore = qs.Score
				st.QuizPassed = st.QuizPassed || qs.Passed()
				e.Videos[qs.VideoID] = st
				if err := store.SaveEnrollment(r.Context(), e); err != nil {
					writeStoreError(w, err)
					return
				}
			}
			if events != nil {
				_ = events.AppendTraining(r.Context(), training.Event{
					Type:     training.EventQuizCompleted,
					CourseID: qs.CourseID,
					VideoID:  qs.VideoID,
					UserID:   sub,
					Score:    qs.Score,
					Passed:   qs.Passed(),
				})
			}
		}

		resp := stateOf(qs)
		writeJSON(w, http.StatusOK, map[string]any{
			"advanced": advanced,
			"state":    resp,
		})
	}
}

func RestartQuizHandler(sessions *QuizSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := sessions.get(chi.URLParam(r, "sessionID"), authmw.SubjectFromContext(r.Context()))
		if qs == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		qs.Restart()
		writeJSON(w, http.StatusOK, stateOf(qs))
	}
}
