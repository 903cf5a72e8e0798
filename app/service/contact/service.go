package contact

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"metbot/app/config"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode=WAL;
CREATE TABLE IF NOT EXISTS contacts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  event TEXT NOT NULL,
  context TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL CHECK(status IN ('pending','scheduled','sent','completed')) DEFAULT 'pending',
  message TEXT NOT NULL DEFAULT '',
  scheduled_followup DATETIME,
  followup_sent_at DATETIME,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_contacts_created ON contacts(created_at);
`

var _ do.Shutdownable = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	_ = os.MkdirAll(filepath.Dir(cfg.DB.Path), 0755)

	db, err := sql.Open("sqlite", "file:"+cfg.DB.Path+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, oops.Errorf("failed to open contact database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite single writer

	svc := &Service{db: db}
	if err := svc.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return svc, nil
}

// NewWithDB is used by tests and by callers that manage the connection
// themselves.
func NewWithDB(db *sql.DB) (*Service, error) {
	svc := &Service{db: db}
	if err := svc.ensureSchema(); err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *Service) ensureSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return oops.Errorf("failed to ensure contact schema: %w", err)
	}

	return nil
}

func (s *Service) Add(ctx context.Context, draft Draft, message string) (string, error) {
	id := "ct_" + uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO contacts (id, name, event, context, status, message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, draft.Name, draft.Event, draft.Context, StatusPending, message, time.Now().UTC())
	if err != nil {
		return "", oops.Errorf("failed to insert contact: %w", err)
	}

	return id, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.ScheduledFollowUp != nil {
		sets = append(sets, "scheduled_followup = ?")
		args = append(args, patch.ScheduledFollowUp.UTC())
	}
	if patch.FollowUpSentAt != nil {
		sets = append(sets, "followup_sent_at = ?")
		args = append(args, patch.FollowUpSentAt.UTC())
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE contacts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return oops.Errorf("failed to update contact: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return oops.Errorf("contact %s not found", id)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, event, context, status, message, scheduled_followup, followup_sent_at, created_at
FROM contacts WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, oops.Errorf("failed to get contact: %w", err)
	}

	return rec, true, nil
}

func (s *Service) GetSummary(ctx context.Context, windowDays int) (Summary, error) {
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, event, context, status, message, scheduled_followup, followup_sent_at, created_at
FROM contacts WHERE created_at >= ? ORDER BY created_at DESC LIMIT 10`, since)
	if err != nil {
		return Summary{}, oops.Errorf("failed to query recent contacts: %w", err)
	}
	defer rows.Close()

	var summary Summary

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return Summary{}, oops.Errorf("failed to scan contact: %w", err)
		}

		summary.Recent = append(summary.Recent, rec)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, oops.Errorf("failed to iterate contacts: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contacts WHERE created_at >= ?", since)
	if err := row.Scan(&summary.Total); err != nil {
		return Summary{}, oops.Errorf("failed to count contacts: %w", err)
	}

	return summary, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (Record, error) {
	var (
		rec       Record
		scheduled sql.NullTime
		sentAt    sql.NullTime
	)

	err := row.Scan(&rec.ID, &rec.Name, &rec.Event, &rec.Context, &rec.Status,
		&rec.Message, &scheduled, &sentAt, &rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}

	if scheduled.Valid {
		t := scheduled.Time
		rec.ScheduledFollowUp = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		rec.FollowUpSentAt = &t
	}

	return rec, nil
}

func (s *Service) Shutdown() error {
	return s.db.Close()
}
