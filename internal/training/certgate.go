package training

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrIneligible is returned when a certificate is requested before the gate
// is open. Always locally recoverable: the caller re-checks course state and
// withholds the download action.
var ErrIneligible = errors.New("course not eligible for a certificate")

// ArtifactService renders the downloadable certificate document and returns
// a handle to it. Document generation itself is an external concern.
type ArtifactService interface {
	Render(ctx context.Context, cert Certificate, course Course) (string, error)
}

// CertificationGate decides whether a completed course may yield a
// certificate and, when it may, produces the immutable Certificate entity.
type CertificationGate struct {
	artifacts ArtifactService
	now       func() time.Time
}

func NewCertificationGate(artifacts ArtifactService, now func() time.Time) *CertificationGate {
	if now == nil {
		now = time.Now
	}
	return &CertificationGate{artifacts: artifacts, now: now}
}

// CanIssue is the whole eligibility rule: the course is completed and its
// certificate is enabled. Quiz outcomes are recorded elsewhere and do not
// reopen or close this gate.
func (g *CertificationGate) CanIssue(c Course) bool {
	return c.Completed && c.CertificateAvailable
}

// RequestArtifact fails with ErrIneligible while the gate is closed;
// otherwise it renders the artifact and returns the populated certificate
// with the completion timestamp.
func (g *CertificationGate) RequestArtifact(ctx context.Context, course Course, holderName, department string) (Certificate, error) {
	if !g.CanIssue(course) {
		return Certificate{}, ErrIneligible
	}
	cert := Certificate{
		ID:             uuid.NewString(),
		CourseID:       course.ID,
		HolderName:     holderName,
		Department:     department,
		CompletionDate: g.now().Unix(),
	}
	ref, err := g.artifacts.Render(ctx, cert, course)
	if err != nil {
		return Certificate{}, err
	}
	cert.ArtifactRef = ref
	return cert, nil
}
