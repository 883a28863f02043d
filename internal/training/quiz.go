package training

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type QuizStatus string

const (
	QuizNotStarted QuizStatus = "not_started"
	QuizInProgress QuizStatus = "in_progress"
	QuizCompleted  QuizStatus = "completed"
)

// PassThreshold is the fixed percent score at or above which an attempt
// counts as passed.
const PassThreshold = 70

// QuizSession drives one learner through one attempt at a video's quiz.
// It is exclusively owned by the view (or handler) that created it; nothing
// here is safe for concurrent use and nothing is persisted until the caller
// decides to.
type QuizSession struct {
	ID        string
	CourseID  string
	VideoID   string
	UserID    string
	Questions []Question
	Current   int
	Answers   map[string]string // questionID -> optionID
	Status    QuizStatus
	Score     int
	StartedAt int64

	onComplete func(score int, passed bool)
}

func NewQuizSession(courseID, videoID, userID string, questions []Question) *QuizSession {
	qs := make([]Question, len(questions))
	copy(qs, questions)
	return &QuizSession{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		VideoID:   videoID,
		UserID:    userID,
		Questions: qs,
		Answers:   map[string]string{},
		Status:    QuizNotStarted,
		StartedAt: time.Now().Unix(),
	}
}

// OnComplete registers the upward notification invoked exactly once per
// completed attempt (again after a restart-and-finish). The caller decides
// from passed whether to exit or offer a retry.
func (s *QuizSession) OnComplete(fn func(score int, passed bool)) { s.onComplete = fn }

func (s *QuizSession) Start() {
	if s.Status == QuizNotStarted {
		s.Status = QuizInProgress
	}
}

// CurrentQuestion reports false when the session is not in progress or the
// question list is empty.
func (s *QuizSession) CurrentQuestion() (Question, bool) {
	if s.Status != QuizInProgress || s.Current < 0 || s.Current >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Current], true
}

// SelectAnswer records or overwrites the learner's choice. Reselection is
// always legal while in progress.
func (s *QuizSession) SelectAnswer(questionID, optionID string) {
	if s.Status != QuizInProgress {
		return
	}
	s.Answers[questionID] = optionID
}

// Advance moves to the next question, or scores and completes the attempt
// when the current question is the last one. It is a deliberate no-op (not
// an error) when the current question has no recorded answer, and when the
// question list is empty. Returns whether anything happened.
func (s *QuizSession) Advance() bool {
	q, ok := s.CurrentQuestion()
	if !ok {
		return false
	}
	if _, answered := s.Answers[q.ID]; !answered {
		return false
	}
	if s.Current == len(s.Questions)-1 {
		s.Score = s.grade()
		s.Status = QuizCompleted
		if s.onComplete != nil {
			s.onComplete(s.Score, s.Passed())
		}
		return true
	}
	s.Current++
	return true
}

// Restart re-enters the attempt: in progress, first question, cleared
// answers. Question order is untouched.
func (s *QuizSession) Restart() {
	s.Status = QuizInProgress
	s.Current = 0
	s.Answers = map[string]string{}
	s.Score = 0
}

func (s *QuizSession) Passed() bool {
	return s.Status == QuizCompleted && s.Score >= PassThreshold
}

// grade compares each recorded answer against the question's single correct
// option. Round-half-up on the percentage: 2/3 correct scores 67. A question
// without exactly one correct option never matches.
func (s *QuizSession) grade() int {
	total := len(s.Questions)
	if total == 0 {
		return 0
	}
	correct := 0
	for _, q := range s.Questions {
		want, ok := q.CorrectOptionID()
		if !ok {
			continue
		}
		if s.Answers[q.ID] == want {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Snapshot converts the session into its persisted attempt form.
func (s *QuizSession) Snapshot() Attempt {
	answers := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}
	a := Attempt{
		ID:        s.ID,
		CourseID:  s.CourseID,
		VideoID:   s.VideoID,
		UserID:    s.UserID,
		Status:    string(s.Status),
		Score:     s.Score,
		Passed:    s.Passed(),
		Answers:   answers,
		StartedAt: s.StartedAt,
	}
	if s.Status == QuizCompleted {
		a.CompletedAt = time.Now().Unix()
	}
	return a
}
