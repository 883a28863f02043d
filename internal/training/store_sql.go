package training

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SQLStore persists course aggregates, enrollments, attempts and
// certificates over database/sql. Videos (with their questions) live in a
// JSON column on the course row; per-learner video state in a JSON column on
// the enrollment row.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	vj, err := json.Marshal(c.Videos)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO courses (id,title,description,due_date,certificate_available,videos_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			due_date=EXCLUDED.due_date, certificate_available=EXCLUDED.certificate_available,
			videos_json=EXCLUDED.videos_json`,
		c.ID, c.Title, c.Description, c.DueDate, c.CertificateAvailable, string(vj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetCourseAdmin(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,due_date,certificate_available,videos_json,created_at FROM courses WHERE id=$1`, id)
	var c Course
	var vjson string
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.DueDate, &c.CertificateAvailable, &vjson, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return Course{}, err
	}
	if err := json.Unmarshal([]byte(vjson), &c.Videos); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	c, err := s.GetCourseAdmin(ctx, id)
	if err != nil {
		return Course{}, err
	}
	stripAnswerKeys(&c)
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context, opts ListOpts) ([]CourseSummary, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	learner := opts.ViewerRole == "learner"
	var (
		sqlStr string
		args   []any
	)
	if learner {
		sqlStr = `SELECT c.id, c.title, c.due_date, c.certificate_available, e.progress, e.completed
			FROM courses c JOIN enrollments e ON e.course_id=c.id
			WHERE e.user_id=$1`
		args = append(args, opts.ViewerID)
	} else {
		sqlStr = `SELECT c.id, c.title, c.due_date, c.certificate_available
			FROM courses c WHERE 1=1`
	}
	if opts.Q != "" {
		sqlStr += ` AND LOWER(c.title) LIKE '%' || LOWER($` + strconv.Itoa(len(args)+1) + `) || '%'`
		args = append(args, opts.Q)
	}
	args = append(args, limit, offset)
	sqlStr += ` ORDER BY c.created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CourseSummary{}
	for rows.Next() {
		var cs CourseSummary
		var scanErr error
		if learner {
			scanErr = rows.Scan(&cs.ID, &cs.Title, &cs.DueDate, &cs.CertificateAvailable, &cs.Progress, &cs.Completed)
		} else {
			scanErr = rows.Scan(&cs.ID, &cs.Title, &cs.DueDate, &cs.CertificateAvailable)
		}
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *SQLStore) Enroll(ctx context.Context, courseID, userID string) error {
	if _, err := s.GetCourseAdmin(ctx, courseID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrollments (course_id,user_id,progress,completed,video_state_json,updated_at)
		VALUES ($1,$2,0,$3,'{}',$4) ON CONFLICT (course_id,user_id) DO NOTHING`,
		courseID, userID, false, time.Now().Unix())
	return err
}

func (s *SQLStore) GetEnrollment(ctx context.Context, courseID, userID string) (Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT course_id,user_id,progress,completed,video_state_json,updated_at FROM enrollments WHERE course_id=$1 AND user_id=$2`,
		courseID, userID)
	var e Enrollment
	var vjson string
	if err := row.Scan(&e.CourseID, &e.UserID, &e.Progress, &e.Completed, &vjson, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, fmt.Errorf("enrollment %s/%s: %w", courseID, userID, ErrNotFound)
		}
		return Enrollment{}, err
	}
	if err := json.Unmarshal([]byte(vjson), &e.Videos); err != nil {
		e.Videos = map[string]VideoState{}
	}
	if e.Videos == nil {
		e.Videos = map[string]VideoState{}
	}
	return e, nil
}

func (s *SQLStore) SaveEnrollment(ctx context.Context, e Enrollment) error {
	vj, err := json.Marshal(e.Videos)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO enrollments (course_id,user_id,progress,completed,video_state_json,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (course_id,user_id) DO UPDATE SET progress=EXCLUDED.progress, completed=EXCLUDED.completed,
			video_state_json=EXCLUDED.video_state_json, updated_at=EXCLUDED.updated_at`,
		e.CourseID, e.UserID, e.Progress, e.Completed, string(vj), time.Now().Unix())
	return err
}

func (s *SQLStore) SaveAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	var completedAt any
	if a.CompletedAt != 0 {
		completedAt = a.CompletedAt
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts (id,course_id,video_id,user_id,status,score,passed,answers_json,started_at,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status, score=EXCLUDED.score, passed=EXCLUDED.passed,
			answers_json=EXCLUDED.answers_json, completed_at=EXCLUDED.completed_at`,
		a.ID, a.CourseID, a.VideoID, a.UserID, a.Status, a.Score, a.Passed, string(aj), a.StartedAt, completedAt)
	return err
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	sqlStr := `SELECT id,course_id,video_id,user_id,status,score,passed,answers_json,started_at,completed_at
		FROM quiz_attempts WHERE 1=1`
	var args []any
	add := func(col, val string) {
		if val != "" {
			args = append(args, val)
			sqlStr += ` AND ` + col + `=$` + strconv.Itoa(len(args))
		}
	}
	add("course_id", opts.CourseID)
	add("video_id", opts.VideoID)
	add("user_id", opts.UserID)
	args = append(args, limit, offset)
	sqlStr += ` ORDER BY started_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var ajson string
		var completedAt sql.NullInt64
		if err := rows.Scan(&a.ID, &a.CourseID, &a.VideoID, &a.UserID, &a.Status, &a.Score, &a.Passed, &ajson, &a.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			a.CompletedAt = completedAt.Int64
		}
		if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
			a.Answers = map[string]string{}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutCertificate(ctx context.Context, userID string, cert Certificate) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO certificates (id,course_id,user_id,holder_name,department,completion_date,artifact_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		cert.ID, cert.CourseID, userID, cert.HolderName, cert.Department, cert.CompletionDate, cert.ArtifactRef)
	return err
}

func (s *SQLStore) GetCertificate(ctx context.Context, courseID, userID string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,course_id,holder_name,department,completion_date,artifact_key FROM certificates WHERE course_id=$1 AND user_id=$2`,
		courseID, userID)
	var c Certificate
	if err := row.Scan(&c.ID, &c.CourseID, &c.HolderName, &c.Department, &c.CompletionDate, &c.ArtifactRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certificate{}, fmt.Errorf("certificate %s/%s: %w", courseID, userID, ErrNotFound)
		}
		return Certificate{}, err
	}
	return c, nil
}
