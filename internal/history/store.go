// Package history persists committed diagnoses so later runs can check
// for historical precedent, a hard requirement for High confidence.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"driftwatch/internal/diagnose"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS diagnoses (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	metric          TEXT NOT NULL,
	likely_cause    TEXT NOT NULL,
	archetype       TEXT NOT NULL,
	severity        TEXT NOT NULL,
	confidence      TEXT NOT NULL,
	decision_status TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_diagnoses_metric_archetype
	ON diagnoses(metric, archetype);
`

// Store is the SQLite-backed precedent log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the
// parent directory if needed. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record appends one committed diagnosis to the log.
func (s *Store) Record(ctx context.Context, d *diagnose.Diagnosis) error {
	cause := d.PrimaryHypothesis.Archetype
	if arch, ok := diagnose.ArchetypeByName(d.PrimaryHypothesis.Archetype); ok && arch.Cause != "" {
		cause = arch.Cause
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnoses (metric, likely_cause, archetype, severity, confidence, decision_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Aggregate.Metric,
		cause,
		d.PrimaryHypothesis.Archetype,
		string(d.Aggregate.Severity),
		string(d.Confidence.Level),
		d.DecisionStatus,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record diagnosis: %w", err)
	}
	return nil
}

// HasPrecedent reports whether a committed diagnosis with the same
// metric and archetype has been recorded before. Blocked diagnoses do
// not count: a verdict we refused to trust is not a precedent.
func (s *Store) HasPrecedent(ctx context.Context, metricName, archetype string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM diagnoses
		WHERE metric = ? AND archetype = ? AND decision_status != ?`,
		metricName, archetype, diagnose.DecisionBlockedByDataQuality,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query precedent: %w", err)
	}
	return count > 0, nil
}

// Recent returns the newest diagnoses for a metric, most recent first.
func (s *Store) Recent(ctx context.Context, metricName string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT metric, likely_cause, archetype, severity, confidence, decision_status, created_at
		FROM diagnoses WHERE metric = ?
		ORDER BY id DESC LIMIT ?`,
		metricName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent diagnoses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Metric, &e.LikelyCause, &e.Archetype, &e.Severity, &e.Confidence, &e.DecisionStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diagnosis row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Entry is one persisted diagnosis record.
type Entry struct {
	Metric         string `json:"metric"`
	LikelyCause    string `json:"likely_cause"`
	Archetype      string `json:"archetype"`
	Severity       string `json:"severity"`
	Confidence     string `json:"confidence"`
	DecisionStatus string `json:"decision_status"`
	CreatedAt      string `json:"created_at"`
}
