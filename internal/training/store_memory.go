package training

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps everything in maps. Used in offline mode and by tests;
// behavior mirrors SQLStore (including answer-key stripping).
type MemoryStore struct {
	mu          sync.RWMutex
	courses     map[string]Course
	enrollments map[string]Enrollment  // courseID|userID
	attempts    map[string]Attempt
	certs       map[string]Certificate // courseID|userID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:     map[string]Course{},
		enrollments: map[string]Enrollment{},
		attempts:    map[string]Attempt{},
		certs:       map[string]Certificate{},
	}
}

func pairKey(courseID, userID string) string { return courseID + "|" + userID }

func (m *MemoryStore) PutCourse(_ context.Context, c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	m.courses[c.ID] = cloneCourse(c)
	return nil
}

func (m *MemoryStore) GetCourseAdmin(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return cloneCourse(c), nil
}

func (m *MemoryStore) GetCourse(ctx context.Context, id string) (Course, error) {
	c, err := m.GetCourseAdmin(ctx, id)
	if err != nil {
		return Course{}, err
	}
	stripAnswerKeys(&c)
	return c, nil
}

func (m *MemoryStore) ListCourses(_ context.Context, opts ListOpts) ([]CourseSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []CourseSummary{}
	for _, c := range m.courses {
		if opts.Q != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(opts.Q)) {
			continue
		}
		cs := CourseSummary{ID: c.ID, Title: c.Title, DueDate: c.DueDate, CertificateAvailable: c.CertificateAvailable}
		if opts.ViewerRole == "learner" {
			e, ok := m.enrollments[pairKey(c.ID, opts.ViewerID)]
			if !ok {
				continue
			}
			cs.Progress = e.Progress
			cs.Completed = e.Completed
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Enroll(_ context.Context, courseID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[courseID]; !ok {
		return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	k := pairKey(courseID, userID)
	if _, ok := m.enrollments[k]; ok {
		return nil
	}
	m.enrollments[k] = Enrollment{
		CourseID:  courseID,
		UserID:    userID,
		Videos:    map[string]VideoState{},
		UpdatedAt: time.Now().Unix(),
	}
	return nil
}

func (m *MemoryStore) GetEnrollment(_ context.Context, courseID, userID string) (Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enrollments[pairKey(courseID, userID)]
	if !ok {
		return Enrollment{}, fmt.Errorf("enrollment %s/%s: %w", courseID, userID, ErrNotFound)
	}
	return cloneEnrollment(e), nil
}

func (m *MemoryStore) SaveEnrollment(_ context.Context, e Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.UpdatedAt = time.Now().Unix()
	m.enrollments[pairKey(e.CourseID, e.UserID)] = cloneEnrollment(e)
	return nil
}

func (m *MemoryStore) SaveAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
	return nil
}

func (m *MemoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if opts.CourseID != "" && a.CourseID != opts.CourseID {
			continue
		}
		if opts.VideoID != "" && a.VideoID != opts.VideoID {
			continue
		}
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt > out[j].StartedAt })
	return out, nil
}

func (m *MemoryStore) PutCertificate(_ context.Context, userID string, cert Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pairKey(cert.CourseID, userID)
	if _, ok := m.certs[k]; ok {
		return fmt.Errorf("certificate already issued for %s", k)
	}
	m.certs[k] = cert
	return nil
}

func (m *MemoryStore) GetCertificate(_ context.Context, courseID, userID string) (Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.certs[pairKey(courseID, userID)]
	if !ok {
		return Certificate{}, fmt.Errorf("certificate %s/%s: %w", courseID, userID, ErrNotFound)
	}
	return c, nil
}

func cloneCourse(c Course) Course {
	videos := make([]Video, len(c.Videos))
	copy(videos, c.Videos)
	for i := range videos {
		qs := make([]Question, len(videos[i].Questions))
		copy(qs, videos[i].Questions)
		for j := range qs {
			opts := make([]Option, len(qs[j].Options))
			copy(opts, qs[j].Options)
			qs[j].Options = opts
		}
		videos[i].Questions = qs
	}
	c.Videos = videos
	return c
}

func cloneEnrollment(e Enrollment) Enrollment {
	videos := make(map[string]VideoState, len(e.Videos))
	for k, v := range e.Videos {
		videos[k] = v
	}
	e.Videos = videos
	return e
}
