// Package cert renders certificate artifacts into blob storage. The gate in
// internal/training decides eligibility; this package only produces the
// downloadable document and hands back its key.
package cert

import (
	"bytes"
	"context"
	"text/template"
	"time"

	"github.com/hookguard/hookguard/internal/storage"
	"github.com/hookguard/hookguard/internal/training"
)

const ContentType = "text/html; charset=utf-8"

var docTmpl = template.Must(template.New("certificate").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Certificate of Completion</title></head>
<body>
  <h1>Certificate of Completion</h1>
  <p>This certifies that</p>
  <h2>{{.Holder}}</h2>
  {{if .Department}}<p>{{.Department}}</p>{{end}}
  <p>has completed the security awareness course</p>
  <h3>{{.CourseTitle}}</h3>
  <p>on {{.Date}}</p>
  <p><small>Certificate ID: {{.CertID}}</small></p>
</body>
</html>
`))

type Service struct {
	blobs storage.BlobStore
}

func NewService(blobs storage.BlobStore) *Service { return &Service{blobs: blobs} }

// Render implements training.ArtifactService. The returned key is the
// certificate's artifactRef.
func (s *Service) Render(_ context.Context, c training.Certificate, course training.Course) (string, error) {
	var buf bytes.Buffer
	err := docTmpl.Execute(&buf, struct {
		Holder      string
		Department  string
		CourseTitle string
		Date        string
		CertID      string
	}{
		Holder:      c.HolderName,
		Department:  c.Department,
		CourseTitle: course.Title,
		Date:        time.Unix(c.CompletionDate, 0).UTC().Format("January 2, 2006"),
		CertID:      c.ID,
	})
	if err != nil {
		return "", err
	}
	return s.blobs.Put("certificates/"+c.ID+".html", &buf)
}
