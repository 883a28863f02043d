package training

type EventType string

const (
	EventVideoCompleted    EventType = "video.completed"
	EventQuizCompleted     EventType = "quiz.completed"
	EventCertificateIssued EventType = "certificate.issued"
)

// Event is the one coordination mechanism between the leaf components and
// the aggregator: trackers and quiz sessions emit, a single Sink consumes.
type Event struct {
	Type     EventType `json:"type"`
	CourseID string    `json:"course_id"`
	VideoID  string    `json:"video_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	Score    int       `json:"score,omitempty"`
	Passed   bool      `json:"passed,omitempty"`
}

type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Notify(e Event) { f(e) }
