package training

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores for unknown courses, enrollments,
// attempts and certificates.
var ErrNotFound = errors.New("not found")

type ListOpts struct {
	Q          string
	Limit      int
	Offset     int
	ViewerID   string
	ViewerRole string // "learner" | "manager" | "admin"
}

type AttemptListOpts struct {
	CourseID string
	VideoID  string
	UserID   string
	Limit    int
	Offset   int
}

// CourseSummary is the list-view shape: no videos, but the viewer's derived
// progress when an enrollment exists.
type CourseSummary struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	DueDate              int64  `json:"due_date,omitempty"`
	CertificateAvailable bool   `json:"certificate_available"`
	Progress             int    `json:"progress"`
	Completed            bool   `json:"completed"`
}

type Store interface {
	PutCourse(ctx context.Context, c Course) error
	// GetCourse is learner-safe: correct-option flags are stripped.
	GetCourse(ctx context.Context, id string) (Course, error)
	// GetCourseAdmin keeps answer keys, for session building and admin views.
	GetCourseAdmin(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context, opts ListOpts) ([]CourseSummary, error)

	Enroll(ctx context.Context, courseID, userID string) error
	GetEnrollment(ctx context.Context, courseID, userID string) (Enrollment, error)
	SaveEnrollment(ctx context.Context, e Enrollment) error

	SaveAttempt(ctx context.Context, a Attempt) error
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)

	PutCertificate(ctx context.Context, userID string, cert Certificate) error
	GetCertificate(ctx context.Context, courseID, userID string) (Certificate, error)
}

// stripAnswerKeys hides correct-option flags before a course is served to a
// learner (parity between the SQL and in-memory stores).
func stripAnswerKeys(c *Course) {
	for i := range c.Videos {
		for j := range c.Videos[i].Questions {
			for k := range c.Videos[i].Questions[j].Options {
				c.Videos[i].Questions[j].Options[k].IsCorrect = false
			}
		}
	}
}
