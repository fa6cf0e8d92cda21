// Package history records completed scan sessions in a small SQLite
// database, one row per run plus a sampled list of scan errors. It
// stores summaries only, never the tree itself.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/michaelscutari/dirstat/internal/entry"

	_ "modernc.org/sqlite"
)

const insertSessionSQL = `INSERT INTO sessions
	(id, root_path, start_time, end_time, total_size, total_blocks, file_count, dir_count, item_count, error_count, aborted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertErrorSQL = `INSERT INTO scan_errors (session_id, path, message) VALUES (?, ?, ?)`

// Only sample the first N errors per session to bound the database.
const maxErrorsSampled = 1000

// Session is one recorded scan run.
type Session struct {
	ID          string
	Root        string
	StartedAt   time.Time
	FinishedAt  time.Time
	TotalSize   int64 // Apparent size
	TotalBlocks int64 // Disk usage
	FileCount   int64
	DirCount    int64
	ItemCount   int64
	ErrorCount  int64
	Aborted     bool
}

// Store is a scan history database. It holds an exclusive lock on its
// directory for its lifetime so concurrent dirstat runs don't share one.
type Store struct {
	db        *sql.DB
	lock      *flock.Flock
	retention int
}

// Open opens (or creates) the history store in dir. retention bounds
// how many sessions are kept; 0 means unlimited.
func Open(dir string, retention int) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".dirstat.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire history lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("history directory %s is in use by another dirstat process", dir)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := InitSchema(db); err != nil {
		db.Close()
		lock.Unlock()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := ApplyPragmas(db); err != nil {
		db.Close()
		lock.Unlock()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db, lock: lock, retention: retention}, nil
}

// Close releases the database and the directory lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}

// Record inserts one finished session and prunes old ones past the
// retention limit.
func (s *Store) Record(sess Session) error {
	aborted := 0
	if sess.Aborted {
		aborted = 1
	}
	_, err := s.db.Exec(insertSessionSQL,
		sess.ID, sess.Root, sess.StartedAt.Unix(), sess.FinishedAt.Unix(),
		sess.TotalSize, sess.TotalBlocks, sess.FileCount, sess.DirCount,
		sess.ItemCount, sess.ErrorCount, aborted,
	)
	if err != nil {
		return fmt.Errorf("failed to record session %s: %w", sess.ID, err)
	}
	return s.prune()
}

// RecordErrors stores the sampled scan errors for a session.
func (s *Store) RecordErrors(sessionID string, errs []entry.ScanError) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) > maxErrorsSampled {
		errs = errs[:maxErrorsSampled]
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin error transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertErrorSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare error statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range errs {
		if _, err := stmt.Exec(sessionID, e.Path, e.Message); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert error for %q: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit error transaction: %w", err)
	}
	return nil
}

// Sessions returns all recorded sessions, newest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT id, root_path, start_time, COALESCE(end_time, 0), total_size, total_blocks,
		       file_count, dir_count, item_count, error_count, aborted
		FROM sessions ORDER BY start_time DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var start, end int64
		var aborted int
		if err := rows.Scan(&sess.ID, &sess.Root, &start, &end, &sess.TotalSize, &sess.TotalBlocks,
			&sess.FileCount, &sess.DirCount, &sess.ItemCount, &sess.ErrorCount, &aborted); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sess.StartedAt = time.Unix(start, 0)
		sess.FinishedAt = time.Unix(end, 0)
		sess.Aborted = aborted != 0
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Latest returns the most recent session, or nil if none exist.
func (s *Store) Latest() (*Session, error) {
	sessions, err := s.Sessions()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// Errors returns up to limit sampled errors for a session.
func (s *Store) Errors(sessionID string, limit int) ([]entry.ScanError, error) {
	if limit <= 0 {
		limit = maxErrorsSampled
	}
	rows, err := s.db.Query(
		`SELECT path, message FROM scan_errors WHERE session_id = ? ORDER BY id LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query errors: %w", err)
	}
	defer rows.Close()

	var errs []entry.ScanError
	for rows.Next() {
		var e entry.ScanError
		if err := rows.Scan(&e.Path, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan error row: %w", err)
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}

// prune removes the oldest sessions past the retention limit, along
// with their sampled errors.
func (s *Store) prune() error {
	if s.retention <= 0 {
		return nil
	}

	_, err := s.db.Exec(`
		DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY start_time DESC, id LIMIT ?
		)`, s.retention)
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}

	_, err = s.db.Exec(`DELETE FROM scan_errors WHERE session_id NOT IN (SELECT id FROM sessions)`)
	if err != nil {
		return fmt.Errorf("failed to prune scan errors: %w", err)
	}
	return nil
}
