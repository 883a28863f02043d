package training

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeArtifacts struct {
	renders int
	err     error
}

func (f *fakeArtifacts) Render(_ context.Context, c Certificate, _ Course) (string, error) {
	f.renders++
	if f.err != nil {
		return "", f.err
	}
	return "certificates/" + c.ID + ".html", nil
}

func TestCanIssue(t *testing.T) {
	gate := NewCertificationGate(&fakeArtifacts{}, nil)
	cases := []struct {
		completed, available, want bool
	}{
		{false, false, false},
		{false, true, false},
		{true, false, false},
		{true, true, true},
	}
	for _, c := range cases {
		course := Course{ID: "c1", Completed: c.completed, CertificateAvailable: c.available}
		if got := gate.CanIssue(course); got != c.want {
			t.Errorf("CanIssue(completed=%v, available=%v) = %v, want %v",
				c.completed, c.available, got, c.want)
		}
	}
}

func TestRequestArtifactIneligible(t *testing.T) {
	arts := &fakeArtifacts{}
	gate := NewCertificationGate(arts, nil)

	// certificateAvailable alone is not enough: the course must be completed.
	course := Course{ID: "c1", Completed: false, CertificateAvailable: true}
	_, err := gate.RequestArtifact(context.Background(), course, "Dana", "IT")
	if !errors.Is(err, ErrIneligible) {
		t.Fatalf("err = %v, want ErrIneligible", err)
	}
	if arts.renders != 0 {
		t.Fatalf("artifact rendered for an ineligible course")
	}

	// Disabled certificate on a completed course stays closed until the flag
	// flips externally.
	course = Course{ID: "c1", Completed: true, CertificateAvailable: false}
	if _, err := gate.RequestArtifact(context.Background(), course, "Dana", "IT"); !errors.Is(err, ErrIneligible) {
		t.Fatalf("err = %v, want ErrIneligible", err)
	}
	course.CertificateAvailable = true
	if _, err := gate.RequestArtifact(context.Background(), course, "Dana", "IT"); err != nil {
		t.Fatalf("gate should open once the flag flips: %v", err)
	}
}

func TestRequestArtifactPopulatesCertificate(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	gate := NewCertificationGate(&fakeArtifacts{}, func() time.Time { return now })

	course := Course{ID: "c1", Title: "Phishing Basics", Completed: true, CertificateAvailable: true}
	got, err := gate.RequestArtifact(context.Background(), course, "Dana Reyes", "Engineering")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("certificate missing id")
	}
	if got.CourseID != "c1" || got.HolderName != "Dana Reyes" || got.Department != "Engineering" {
		t.Fatalf("certificate fields = %+v", got)
	}
	if got.CompletionDate != now.Unix() {
		t.Fatalf("completion date = %d, want %d", got.CompletionDate, now.Unix())
	}
	if got.ArtifactRef != "certificates/"+got.ID+".html" {
		t.Fatalf("artifact ref = %q", got.ArtifactRef)
	}
}

func TestRequestArtifactRenderFailure(t *testing.T) {
	renderErr := errors.New("disk full")
	gate := NewCertificationGate(&fakeArtifacts{err: renderErr}, nil)
	course := Course{ID: "c1", Completed: true, CertificateAvailable: true}
	if _, err := gate.RequestArtifact(context.Background(), course, "Dana", ""); !errors.Is(err, renderErr) {
		t.Fatalf("err = %v, want render failure to surface", err)
	}
}
