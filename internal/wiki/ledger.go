package wiki

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"defectscope/internal/logging"
)

// Ledger records what each generation run produced, in SQLite. It is the
// basis for --skip-unchanged: a (source, target) pair whose content hash
// matches the recorded one does not need a new API call, because re-running
// against unchanged inputs overwrites the same page anyway.
type Ledger struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	log  *logging.Logger
}

// PageRecord is one generated page.
type PageRecord struct {
	SourcePath  string
	TargetName  string
	ContentHash string
	PagePath    string
	Model       string
	RunID       string
	GeneratedAt time.Time
}

// OpenLedger opens (or creates) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryWiki).Debug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Get(logging.CategoryWiki).Debug("failed to set journal_mode=WAL: %v", err)
	}

	l := &Ledger{db: db, path: path, log: logging.Get(logging.CategoryWiki)}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		source_path  TEXT NOT NULL,
		target_name  TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		page_path    TEXT NOT NULL,
		model        TEXT NOT NULL,
		run_id       TEXT NOT NULL,
		generated_at INTEGER NOT NULL,
		PRIMARY KEY (source_path, target_name)
	);
	CREATE TABLE IF NOT EXISTS runs (
		run_id       TEXT PRIMARY KEY,
		started_at   INTEGER NOT NULL,
		finished_at  INTEGER,
		pages_written INTEGER NOT NULL DEFAULT 0,
		pages_failed  INTEGER NOT NULL DEFAULT 0,
		pages_skipped INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun records the start of a generation run.
func (l *Ledger) BeginRun(runID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.Exec(
		"INSERT INTO runs (run_id, started_at) VALUES (?, ?)",
		runID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// FinishRun records the outcome counts of a run.
func (l *Ledger) FinishRun(runID string, written, failed, skipped int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.Exec(
		"UPDATE runs SET finished_at = ?, pages_written = ?, pages_failed = ?, pages_skipped = ? WHERE run_id = ?",
		time.Now().Unix(), written, failed, skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// Record upserts a page record after a successful generation.
func (l *Ledger) Record(rec PageRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.db.Exec(`
		INSERT INTO pages (source_path, target_name, content_hash, page_path, model, run_id, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_path, target_name) DO UPDATE SET
			content_hash = excluded.content_hash,
			page_path    = excluded.page_path,
			model        = excluded.model,
			run_id       = excluded.run_id,
			generated_at = excluded.generated_at`,
		rec.SourcePath, rec.TargetName, rec.ContentHash, rec.PagePath,
		rec.Model, rec.RunID, rec.GeneratedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record page: %w", err)
	}
	return nil
}

// Lookup returns the last recorded page for a (source, target) pair.
// The bool result is false when no record exists.
func (l *Ledger) Lookup(sourcePath, targetName string) (PageRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.db.QueryRow(`
		SELECT source_path, target_name, content_hash, page_path, model, run_id, generated_at
		FROM pages WHERE source_path = ? AND target_name = ?`,
		sourcePath, targetName,
	)
	var rec PageRecord
	var ts int64
	err := row.Scan(&rec.SourcePath, &rec.TargetName, &rec.ContentHash,
		&rec.PagePath, &rec.Model, &rec.RunID, &ts)
	if err == sql.ErrNoRows {
		return PageRecord{}, false, nil
	}
	if err != nil {
		return PageRecord{}, false, fmt.Errorf("failed to look up page: %w", err)
	}
	rec.GeneratedAt = time.Unix(ts, 0)
	return rec, true, nil
}
