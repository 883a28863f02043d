package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	authmw "github.com/hookguard/hookguard/internal/auth/middleware"
	"github.com/hookguard/hookguard/internal/cert"
	"github.com/hookguard/hookguard/internal/rbac"
	"github.com/hookguard/hookguard/internal/storage"
	"github.com/hookguard/hookguard/internal/training"
)

func question(id, correct, wrong string) training.Question {
	return training.Question{ID: id, Text: "q", Options: []training.Option{
		{ID: correct, Text: "right", IsCorrect: true},
		{ID: wrong, Text: "wrong"},
	}}
}

// testIdentity plays the part of JWTMiddleware for handler tests.
func testIdentity(sub, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authmw.WithSubject(r.Context(), sub)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func learnerRouter(t *testing.T, store training.Store, sub string) (chi.Router, *QuizSessions) {
	t.Helper()
	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	gate := training.NewCertificationGate(cert.NewService(blobs), nil)
	sessions := NewQuizSessions()

	r := chi.NewRouter()
	r.Use(testIdentity(sub, "learner"))
	r.Get("/courses/{courseID}", GetCourseHandler(store))
	r.Post("/courses/{courseID}/videos/{videoID}/ended", VideoEndedHandler(store, nil))
	r.Post("/courses/{courseID}/videos/{videoID}/quiz", OpenQuizHandler(store, sessions))
	r.Post("/quiz/{sessionID}/answers", SelectAnswerHandler(sessions))
	r.Post("/quiz/{sessionID}/advance", AdvanceHandler(store, sessions, nil))
	r.Post("/quiz/{sessionID}/restart", RestartQuizHandler(sessions))
	r.Get("/courses/{courseID}/certificate", CertificateHandler(store, gate, blobs, nil, nil))
	return r, sessions
}

func seedCourse(t *testing.T) *training.MemoryStore {
	t.Helper()
	st := training.NewMemoryStore()
	course := training.Course{
		ID:                   "c1",
		Title:                "Phishing Basics",
		CertificateAvailable: true,
		Videos: []training.Video{{
			ID:    "v1",
			Title: "Spotting the hook",
			Questions: []training.Question{
				question("q1", "a", "b"),
				question("q2", "a", "b"),
			},
		}},
	}
	ctx := context.Background()
	if err := st.PutCourse(ctx, course); err != nil {
		t.Fatalf("PutCourse: %v", err)
	}
	if err := st.Enroll(ctx, "c1", "u1"); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	return st
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if ct := w.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestQuizFlowOverHTTP(t *testing.T) {
	st := seedCourse(t)
	r, _ := learnerRouter(t, st, "u1")

	// Open the quiz: first question comes back without answer keys.
	w, state := doJSON(t, r, "POST", "/courses/c1/videos/v1/quiz", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("open quiz status = %d: %s", w.Code, w.Body.String())
	}
	sessionID, _ := state["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("missing session id: %v", state)
	}
	if strings.Contains(w.Body.String(), "is_correct") {
		t.Fatalf("answer key leaked to the learner: %s", w.Body.String())
	}

	// Advance before answering is reported, not erred.
	w, out := doJSON(t, r, "POST", "/quiz/"+sessionID+"/advance", "")
	if w.Code != http.StatusOK || out["advanced"] != false {
		t.Fatalf("unanswered advance: code=%d body=%v", w.Code, out)
	}

	// Answer q1 right, q2 wrong: 1/2 = 50, failed.
	doJSON(t, r, "POST", "/quiz/"+sessionID+"/answers", `{"question_id":"q1","option_id":"a"}`)
	doJSON(t, r, "POST", "/quiz/"+sessionID+"/advance", "")
	doJSON(t, r, "POST", "/quiz/"+sessionID+"/answers", `{"question_id":"q2","option_id":"b"}`)
	_, out = doJSON(t, r, "POST", "/quiz/"+sessionID+"/advance", "")
	finished, _ := out["state"].(map[string]any)
	if finished["status"] != "completed" || finished["score"] != float64(50) {
		t.Fatalf("first attempt state = %v", finished)
	}

	// Failed attempt presents retry: restart clears the cursor.
	_, state = doJSON(t, r, "POST", "/quiz/"+sessionID+"/restart", "")
	if state["status"] != "in_progress" || state["current_index"] != float64(0) {
		t.Fatalf("restart state = %v", state)
	}

	// Second attempt, both right: 100, passed and recorded on the enrollment.
	doJSON(t, r, "POST", "/quiz/"+sessionID+"/answers", `{"question_id":"q1","option_id":"a"}`)
	doJSON(t, r, "POST", "/quiz/"+sessionID+"/advance", "")
	doJSON(t, r, "POST", "/quiz/"+sessionID+"/answers", `{"question_id":"q2","option_id":"a"}`)
	_, out = doJSON(t, r, "POST", "/quiz/"+sessionID+"/advance", "")
	finished, _ = out["state"].(map[string]any)
	if finished["score"] != float64(100) || finished["passed"] != true {
		t.Fatalf("second attempt state = %v", finished)
	}

	e, err := st.GetEnrollment(context.Background(), "c1", "u1")
	if err != nil {
		t.Fatalf("GetEnrollment: %v", err)
	}
	if st := e.Videos["v1"]; !st.QuizPassed || st.QuizScore != 100 {
		t.Fatalf("quiz outcome not recorded: %+v", st)
	}
	// Quiz passing alone never completes the course.
	if e.Completed || e.Progress != 0 {
		t.Fatalf("quiz pass moved course progress: %+v", e)
	}

	attempts, err := st.ListAttempts(context.Background(), training.AttemptListOpts{UserID: "u1"})
	if err != nil || len(attempts) != 1 {
		t.Fatalf("attempts = %v, %v", attempts, err)
	}
	if !attempts[0].Passed {
		t.Fatalf("persisted attempt = %+v", attempts[0])
	}
}

func TestQuizSessionOwnership(t *testing.T) {
	st := seedCourse(t)
	r, sessions := learnerRouter(t, st, "u1")
	w, state := doJSON(t, r, "POST", "/courses/c1/videos/v1/quiz", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("open quiz: %d", w.Code)
	}
	sessionID := state["session_id"].(string)

	// Another learner cannot touch the session.
	other, _ := learnerRouter(t, st, "u2")
	if err := st.Enroll(context.Background(), "c1", "u2"); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	w, _ = doJSON(t, other, "POST", "/quiz/"+sessionID+"/advance", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign session access = %d, want 404", w.Code)
	}
	if sessions.get(sessionID, "u1") == nil {
		t.Fatalf("owner lost their session")
	}
}

func TestVideoEndedAndCertificateFlow(t *testing.T) {
	st := seedCourse(t)
	r, _ := learnerRouter(t, st, "u1")

	// Certificate before completion: checked failure, client re-checks state.
	w, out := doJSON(t, r, "GET", "/courses/c1/certificate", "")
	if w.Code != http.StatusConflict || out["error"] != "ineligible" {
		t.Fatalf("premature certificate: code=%d body=%v", w.Code, out)
	}

	w, out = doJSON(t, r, "POST", "/courses/c1/videos/v1/ended", "")
	if w.Code != http.StatusOK {
		t.Fatalf("video ended status = %d", w.Code)
	}
	if out["progress"] != float64(100) || out["course_completed"] != true || out["changed"] != true {
		t.Fatalf("video ended response = %v", out)
	}

	// Replayed ended signal is accepted and inert.
	_, out = doJSON(t, r, "POST", "/courses/c1/videos/v1/ended", "")
	if out["changed"] != false || out["progress"] != float64(100) {
		t.Fatalf("replayed signal response = %v", out)
	}

	// Now the gate is open; the artifact streams with the holder's name.
	w, _ = doJSON(t, r, "GET", "/courses/c1/certificate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("certificate status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("certificate not served as a download")
	}
	if !strings.Contains(w.Body.String(), "Phishing Basics") {
		t.Fatalf("artifact missing course title: %s", w.Body.String())
	}

	// Issuing is one-shot; the second request streams the stored artifact.
	first, err := st.GetCertificate(context.Background(), "c1", "u1")
	if err != nil {
		t.Fatalf("GetCertificate: %v", err)
	}
	w, _ = doJSON(t, r, "GET", "/courses/c1/certificate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("re-download status = %d", w.Code)
	}
	second, _ := st.GetCertificate(context.Background(), "c1", "u1")
	if second.ID != first.ID {
		t.Fatalf("certificate reissued: %q vs %q", first.ID, second.ID)
	}
}

func TestGetCourseRequiresEnrollment(t *testing.T) {
	st := seedCourse(t)
	r, _ := learnerRouter(t, st, "stranger")
	w, _ := doJSON(t, r, "GET", "/courses/c1", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("unenrolled learner course view = %d, want 403", w.Code)
	}
}
