package training

import "testing"

func fourVideoCourse() Course {
	return Course{
		ID:    "course-1",
		Title: "Phishing Basics",
		Videos: []Video{
			{ID: "v1", Title: "Spotting the hook"},
			{ID: "v2", Title: "Suspicious senders"},
			{ID: "v3", Title: "Links and attachments"},
			{ID: "v4", Title: "Reporting"},
		},
	}
}

type recordingSink struct{ events []Event }

func (r *recordingSink) Notify(e Event) { r.events = append(r.events, e) }

func TestVideoCompletionDrivesProgress(t *testing.T) {
	c := fourVideoCourse()
	agg := NewProgressAggregator(&c, nil)

	for i, want := range []struct {
		progress  int
		completed bool
	}{{25, false}, {50, false}, {75, false}, {100, true}} {
		tracker := NewPlaybackTracker(c.ID, "u1", &c.Videos[i], agg)
		if !tracker.OnPlaybackEnded() {
			t.Fatalf("video %d: first ended signal should flip completion", i)
		}
		if c.Progress != want.progress || c.Completed != want.completed {
			t.Fatalf("after %d videos: progress=%d completed=%v, want %d/%v",
				i+1, c.Progress, c.Completed, want.progress, want.completed)
		}
	}
}

func TestTrackerIdempotent(t *testing.T) {
	c := fourVideoCourse()
	sink := &recordingSink{}
	agg := NewProgressAggregator(&c, sink)
	tracker := NewPlaybackTracker(c.ID, "u1", &c.Videos[0], agg)

	if !tracker.OnPlaybackEnded() {
		t.Fatalf("first signal should report a change")
	}
	if tracker.OnPlaybackEnded() {
		t.Fatalf("second signal must be a no-op")
	}
	if len(sink.events) != 1 {
		t.Fatalf("events emitted = %d, want exactly 1", len(sink.events))
	}
	if sink.events[0].Type != EventVideoCompleted || sink.events[0].VideoID != "v1" {
		t.Fatalf("unexpected event %+v", sink.events[0])
	}
	if c.Progress != 25 {
		t.Fatalf("progress = %d, want 25", c.Progress)
	}
}

func TestProgressAllSubsets(t *testing.T) {
	// Every subset of completed videos yields round(100*done/total).
	want := map[int]int{0: 0, 1: 33, 2: 67, 3: 100}
	for mask := 0; mask < 8; mask++ {
		c := Course{ID: "c", Title: "t", Videos: []Video{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
		done := 0
		for i := 0; i < 3; i++ {
			if mask&(1<<i) != 0 {
				c.Videos[i].Completed = true
				done++
			}
		}
		agg := NewProgressAggregator(&c, nil)
		agg.Recompute()
		if c.Progress != want[done] {
			t.Errorf("mask %03b: progress = %d, want %d", mask, c.Progress, want[done])
		}
		if c.Completed != (done == 3) {
			t.Errorf("mask %03b: completed = %v, want %v", mask, c.Completed, done == 3)
		}
	}
}

func TestEmptyCourseNeverCompletes(t *testing.T) {
	c := Course{ID: "c", Title: "empty"}
	agg := NewProgressAggregator(&c, nil)
	agg.Recompute()
	if c.Progress != 0 || c.Completed {
		t.Fatalf("empty course: progress=%d completed=%v, want 0/false", c.Progress, c.Completed)
	}
}

func TestQuizOutcomeDoesNotFlipCompletion(t *testing.T) {
	c := fourVideoCourse()
	agg := NewProgressAggregator(&c, nil)

	// A passed quiz recomputes but cannot complete a course whose videos are
	// unfinished: quizzes gate certification, not completion.
	agg.Notify(Event{Type: EventQuizCompleted, CourseID: c.ID, VideoID: "v1", Score: 100, Passed: true})
	if c.Progress != 0 || c.Completed {
		t.Fatalf("quiz event moved course state: progress=%d completed=%v", c.Progress, c.Completed)
	}
}

func TestAggregatorForwardsEvents(t *testing.T) {
	c := fourVideoCourse()
	sink := &recordingSink{}
	agg := NewProgressAggregator(&c, sink)

	agg.Notify(Event{Type: EventQuizCompleted, CourseID: c.ID, VideoID: "v1"})
	agg.Notify(Event{Type: EventCertificateIssued, CourseID: c.ID})
	if len(sink.events) != 2 {
		t.Fatalf("forwarded events = %d, want 2", len(sink.events))
	}
}

func TestEnrollmentRoundTrip(t *testing.T) {
	c := fourVideoCourse()
	e := Enrollment{CourseID: c.ID, UserID: "u1", Videos: map[string]VideoState{
		"v1": {Completed: true, QuizPassed: true, QuizScore: 80},
		"v2": {Completed: true},
	}, Progress: 50}

	e.Apply(&c)
	if !c.Videos[0].Completed || !c.Videos[1].Completed || c.Videos[2].Completed {
		t.Fatalf("Apply did not overlay video completion")
	}

	agg := NewProgressAggregator(&c, nil)
	tracker := NewPlaybackTracker(c.ID, "u1", c.FindVideo("v3"), agg)
	tracker.OnPlaybackEnded()

	e.Capture(c)
	if e.Progress != 75 || e.Completed {
		t.Fatalf("captured progress=%d completed=%v, want 75/false", e.Progress, e.Completed)
	}
	if !e.Videos["v3"].Completed {
		t.Fatalf("captured enrollment missing v3 completion")
	}
	if st := e.Videos["v1"]; !st.QuizPassed || st.QuizScore != 80 {
		t.Fatalf("capture clobbered quiz state: %+v", st)
	}
}
