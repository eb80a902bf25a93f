package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/phux/urlscan/app"
)

const DatabaseFile = "history.db"

// Store is a SQLite backed app.Recorder.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the history database inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(dir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{db: db, dbPath: dbPath}
	if err := store.createTables(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS verdicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		analysis_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		harmless INTEGER NOT NULL DEFAULT 0,
		malicious INTEGER NOT NULL DEFAULT 0,
		suspicious INTEGER NOT NULL DEFAULT 0,
		undetected INTEGER NOT NULL DEFAULT 0,
		timeout INTEGER NOT NULL DEFAULT 0,
		scanned_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_verdicts_url ON verdicts(url);
	CREATE INDEX IF NOT EXISTS idx_verdicts_scanned_at ON verdicts(scanned_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)

	return err
}

// Record stores verdict. Recording the same analysis twice keeps the latest
// counters.
func (s *Store) Record(ctx context.Context, verdict app.Verdict) error {
	query := `
	INSERT INTO verdicts (url, analysis_id, status, harmless, malicious, suspicious, undetected, timeout, scanned_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(analysis_id) DO UPDATE SET
		status = excluded.status,
		harmless = excluded.harmless,
		malicious = excluded.malicious,
		suspicious = excluded.suspicious,
		undetected = excluded.undetected,
		timeout = excluded.timeout,
		scanned_at = excluded.scanned_at
	`

	_, err := s.db.ExecContext(ctx, query,
		verdict.URL,
		verdict.AnalysisID,
		verdict.Status,
		verdict.Stats.Harmless,
		verdict.Stats.Malicious,
		verdict.Stats.Suspicious,
		verdict.Stats.Undetected,
		verdict.Stats.Timeout,
		verdict.ScannedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert verdict: %w", err)
	}

	return nil
}

// List returns the most recent verdicts first. A limit of zero or less
// returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]app.Verdict, error) {
	query := `
	SELECT url, analysis_id, status, harmless, malicious, suspicious, undetected, timeout, scanned_at
	FROM verdicts
	ORDER BY scanned_at DESC, id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	verdicts := []app.Verdict{}
	for rows.Next() {
		var verdict app.Verdict
		var scannedAt int64
		if err := rows.Scan(
			&verdict.URL,
			&verdict.AnalysisID,
			&verdict.Status,
			&verdict.Stats.Harmless,
			&verdict.Stats.Malicious,
			&verdict.Stats.Suspicious,
			&verdict.Stats.Undetected,
			&verdict.Stats.Timeout,
			&scannedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdict.ScannedAt = time.Unix(scannedAt, 0).UTC()
		verdicts = append(verdicts, verdict)
	}

	return verdicts, rows.Err()
}
