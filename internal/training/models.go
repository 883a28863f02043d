package training

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// CorrectOptionID returns the single correct option's id. It reports false
// when the question has zero or multiple correct options; graders treat that
// as "never matches" rather than failing the attempt.
func (q Question) CorrectOptionID() (string, bool) {
	id := ""
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			id = o.ID
			n++
		}
	}
	if n != 1 {
		return "", false
	}
	return id, true
}

type Video struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	DurationSec int        `json:"duration_sec"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Completed   bool       `json:"completed"`
	Questions   []Question `json:"questions,omitempty"`
}

func (v Video) HasQuiz() bool { return len(v.Questions) > 0 }

type Course struct {
	ID                   string  `json:"id"`
	Title                string  `json:"title"`
	Description          string  `json:"description,omitempty"`
	DueDate              int64   `json:"due_date,omitempty"` // unix seconds
	Progress             int     `json:"progress"`           // derived, 0..100
	Completed            bool    `json:"completed"`          // derived
	CertificateAvailable bool    `json:"certificate_available"`
	Videos               []Video `json:"videos"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// FindVideo returns a pointer into c.Videos so trackers can flip completion
// in place. Nil when the id is unknown.
func (c *Course) FindVideo(id string) *Video {
	for i := range c.Videos {
		if c.Videos[i].ID == id {
			return &c.Videos[i]
		}
	}
	return nil
}

type Certificate struct {
	ID             string `json:"id"`
	CourseID       string `json:"course_id"`
	HolderName     string `json:"holder_name"`
	Department     string `json:"department,omitempty"`
	CompletionDate int64  `json:"completion_date"` // unix seconds
	ArtifactRef    string `json:"artifact_ref"`
}

// VideoState is the per-learner slice of a video: whether playback finished
// and how the attached quiz (if any) went.
type VideoState struct {
	Completed  bool `json:"completed"`
	QuizPassed bool `json:"quiz_passed"`
	QuizScore  int  `json:"quiz_score"`
}

// Enrollment is one learner's durable state for one course. Progress and
// Completed mirror the aggregator's output; Videos is keyed by video id.
type Enrollment struct {
	CourseID  string                `json:"course_id"`
	UserID    string                `json:"user_id"`
	Progress  int                   `json:"progress"`
	Completed bool                  `json:"completed"`
	Videos    map[string]VideoState `json:"videos"`
	UpdatedAt int64                 `json:"updated_at,omitempty"`
}

// Apply overlays the learner's video completion onto a freshly loaded course
// aggregate, then syncs the derived course fields.
func (e Enrollment) Apply(c *Course) {
	for i := range c.Videos {
		c.Videos[i].Completed = e.Videos[c.Videos[i].ID].Completed
	}
	c.Progress = e.Progress
	c.Completed = e.Completed
}

// Capture records the course's current per-video completion and derived
// fields back into the enrollment. Quiz state already present is preserved.
func (e *Enrollment) Capture(c Course) {
	if e.Videos == nil {
		e.Videos = map[string]VideoState{}
	}
	for _, v := range c.Videos {
		st := e.Videos[v.ID]
		st.Completed = v.Completed
		e.Videos[v.ID] = st
	}
	e.Progress = c.Progress
	e.Completed = c.Completed
}

// Attempt is a finished (or abandoned-and-submitted) quiz attempt as
// persisted. Live sessions are in-memory only.
type Attempt struct {
	ID          string            `json:"id"`
	CourseID    string            `json:"course_id"`
	VideoID     string            `json:"video_id"`
	UserID      string            `json:"user_id"`
	Status      string            `json:"status"` // in_progress|completed
	Score       int               `json:"score"`
	Passed      bool              `json:"passed"`
	Answers     map[string]string `json:"answers"` // questionID -> optionID
	StartedAt   int64             `json:"started_at"`
	CompletedAt int64             `json:"completed_at,omitempty"`
}
