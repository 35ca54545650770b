// CLAUDE:SUMMARY Records hand-off requests in the SQLite handoffs table so a downloader can pick them up later.
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/pica/dbopen"
	"github.com/hazyhaar/pica/handoff"
)

// journalMigrations is the schema history of the journal. Append only.
var journalMigrations = []string{
	`CREATE TABLE handoffs (
		id          TEXT PRIMARY KEY,
		url         TEXT NOT NULL,
		video_id    TEXT NOT NULL DEFAULT '',
		received_at INTEGER NOT NULL,
		done_at     INTEGER
	)`,
	`CREATE INDEX idx_handoffs_pending ON handoffs(done_at, received_at)`,
}

// Journal appends requests to the handoffs table.
type Journal struct {
	db    *sql.DB
	owned bool
}

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithMigrations(journalMigrations...))
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return &Journal{db: db, owned: true}, nil
}

// NewJournal uses an already open database, migrating it if needed.
// Close leaves db open.
func NewJournal(db *sql.DB) (*Journal, error) {
	if err := dbopen.Migrate(db, journalMigrations...); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Send(ctx context.Context, req handoff.Request) error {
	_, err := dbopen.Exec(ctx, j.db,
		`INSERT OR IGNORE INTO handoffs (id, url, video_id, received_at) VALUES (?, ?, ?, ?)`,
		req.ID, req.URL, req.VideoID, req.ReceivedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("journal: insert %s: %w", req.ID, err)
	}
	return nil
}

// Pending returns requests not yet marked done, oldest first.
func (j *Journal) Pending(ctx context.Context, limit int) ([]handoff.Request, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, url, video_id, received_at FROM handoffs
		 WHERE done_at IS NULL ORDER BY received_at, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: pending: %w", err)
	}
	defer rows.Close()

	var out []handoff.Request
	for rows.Next() {
		var r handoff.Request
		var ms int64
		if err := rows.Scan(&r.ID, &r.URL, &r.VideoID, &ms); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		r.ReceivedAt = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkDone records that the request with id has been downloaded.
func (j *Journal) MarkDone(ctx context.Context, id string, at time.Time) error {
	res, err := dbopen.Exec(ctx, j.db,
		`UPDATE handoffs SET done_at = ? WHERE id = ? AND done_at IS NULL`, at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("journal: mark done %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("journal: %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (j *Journal) Close() error {
	if !j.owned {
		return nil
	}
	return j.db.Close()
}
