package http

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/hookguard/hookguard/internal/auth/middleware"
	"github.com/hookguard/hookguard/internal/cert"
	"github.com/hookguard/hookguard/internal/storage"
	syncx "github.com/hookguard/hookguard/internal/sync"
	"github.com/hookguard/hookguard/internal/training"
)

// CertificateHandler serves GET /courses/{courseID}/certificate. First call
// runs the gate and renders the artifact; later calls stream the stored one.
// An ineligible course answers 409 so the client re-checks state rather than
// retrying.
func CertificateHandler(store training.Store, gate *training.CertificationGate, blobs storage.BlobStore, events *syncx.EventRepo, dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub := authmw.SubjectFromContext(r.Context())

		existing, err := store.GetCertificate(r.Context(), courseID, sub)
		if err == nil {
			streamArtifact(w, blobs, existing)
			return
		}
		if !errors.Is(err, training.ErrNotFound) {
			writeStoreError(w, err)
			return
		}

		c, err := store.GetCourse(r.Context(), courseID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		e, err := store.GetEnrollment(r.Context(), courseID, sub)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		e.Apply(&c)

		holder, department := holderIdentity(r, dbh, sub)
		issued, err := gate.RequestArtifact(r.Context(), c, holder, department)
		if errors.Is(err, training.ErrIneligible) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "ineligible"})
			return
		}
		if err != nil {
			http.Error(w, "artifact generation failed", http.StatusBadGateway)
			return
		}
		if err := store.PutCertificate(r.Context(), sub, issued); err != nil {
			writeStoreError(w, err)
			return
		}
		if events != nil {
			_ = events.AppendTraining(r.Context(), training.Event{
				Type:     training.EventCertificateIssued,
				CourseID: courseID,
				UserID:   sub,
			})
		}
		streamArtifact(w, blobs, issued)
	}
}

func streamArtifact(w http.ResponseWriter, blobs storage.BlobStore, c training.Certificate) {
	rc, err := blobs.Get(c.ArtifactRef)
	if err != nil {
		http.Error(w, "artifact unavailable", http.StatusBadGateway)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", cert.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="certificate-`+c.ID+`.html"`)
	_, _ = io.Copy(w, rc)
}

// holderIdentity resolves the certificate's display name and department from
// the users table, falling back to the subject id for tokens without a row
// (break-glass admin, dev).
func holderIdentity(r *http.Request, dbh *sql.DB, sub string) (holder, department string) {
	holder = sub
	if dbh == nil {
		return holder, ""
	}
	var displayName, dept string
	err := dbh.QueryRowContext(r.Context(),
		`SELECT display_name, department FROM users WHERE id=$1 OR username=$1`, sub).
		Scan(&displayName, &dept)
	if err != nil {
		return holder, ""
	}
	if displayName != "" {
		holder = displayName
	}
	return holder, dept
}
