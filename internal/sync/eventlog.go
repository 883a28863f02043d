package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hookguard/hookguard/internal/training"
)

// Event is one row of the append-only training event log. The log is what a
// central reporting site pulls when an offline deployment comes back online.
type Event struct {
	Offset    int64  `json:"offset"`
	SiteID    string `json:"site_id"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

func (r *EventRepo) Append(ctx context.Context, typ, key, dataJSON string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		r.siteID, typ, key, dataJSON, time.Now().Unix())
	return err
}

// AppendTraining logs a domain event keyed by courseID|userID.
func (r *EventRepo) AppendTraining(ctx context.Context, e training.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Append(ctx, string(e.Type), e.CourseID+"|"+e.UserID, string(data))
}

// After returns up to limit events past the given offset, oldest first.
func (r *EventRepo) After(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", site_id, typ, key, data, created_at FROM event_log
		 WHERE "offset" > $1 ORDER BY "offset" ASC LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
