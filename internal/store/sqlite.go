package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS artifacts (
	company    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (company, kind)
);

CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	company        TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'running',
	recommendation TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_artifacts_company ON artifacts(company);
CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveArtifact(ctx context.Context, company string, kind Kind, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal %s", kind)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (company, kind, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(company, kind) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		company, string(kind), string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save %s for %s", kind, company)
}

func (s *SQLiteStore) LoadArtifact(ctx context.Context, company string, kind Kind, out any) error {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM artifacts WHERE company = ? AND kind = ?`,
		company, string(kind),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return eris.Wrapf(ErrNotFound, "sqlite: %s for %s", kind, company)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: load %s for %s", kind, company)
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return eris.Wrapf(err, "sqlite: unmarshal %s for %s", kind, company)
	}
	return nil
}

func (s *SQLiteStore) ListArtifacts(ctx context.Context, company string) ([]Kind, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind FROM artifacts WHERE company = ? ORDER BY updated_at`,
		company,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list artifacts for %s", company)
	}
	defer rows.Close()

	var kinds []Kind
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan artifact kind")
		}
		kinds = append(kinds, Kind(k))
	}
	return kinds, eris.Wrap(rows.Err(), "sqlite: list artifacts iterate")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, company string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, company, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, company, string(RunRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{ID: id, Company: company, Status: RunRunning, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, status RunStatus, recommendation string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, recommendation = ?, updated_at = ? WHERE id = ?`,
		string(status), recommendation, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, status, recommendation, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)

	var r Run
	var rec sql.NullString
	err := row.Scan(&r.ID, &r.Company, &r.Status, &rec, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	r.Recommendation = rec.String
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, status, recommendation, created_at, updated_at FROM runs
		 ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var rec sql.NullString
		if err := rows.Scan(&r.ID, &r.Company, &r.Status, &rec, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Recommendation = rec.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}
