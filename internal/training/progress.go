package training

import "math"

// ProgressAggregator recomputes a course's derived progress/completed fields
// from its children. It is the single consumer of tracker and quiz events:
// every event triggers a full synchronous recompute, never an incremental
// delta, so the aggregate cannot drift from its videos.
type ProgressAggregator struct {
	course *Course
	next   Sink // optional downstream consumer (persistence, event log)
}

func NewProgressAggregator(course *Course, next Sink) *ProgressAggregator {
	return &ProgressAggregator{course: course, next: next}
}

func (a *ProgressAggregator) Notify(e Event) {
	switch e.Type {
	case EventVideoCompleted, EventQuizCompleted:
		a.Recompute()
	}
	if a.next != nil {
		a.next.Notify(e)
	}
}

// Recompute derives progress and completed from the video completion count.
// Quiz outcomes do not factor in: quizzes gate certification, not course
// completion. A course with no videos never completes.
func (a *ProgressAggregator) Recompute() {
	total := len(a.course.Videos)
	if total == 0 {
		a.course.Progress = 0
		a.course.Completed = false
		return
	}
	done := 0
	for _, v := range a.course.Videos {
		if v.Completed {
			done++
		}
	}
	a.course.Progress = int(math.Round(100 * float64(done) / float64(total)))
	a.course.Completed = done == total
}
