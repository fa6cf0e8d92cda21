package history

import (
	"database/sql"
	"fmt"
)

const sessionsTableDDL = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    root_path TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    end_time INTEGER,
    total_size INTEGER DEFAULT 0,
    total_blocks INTEGER DEFAULT 0,
    file_count INTEGER DEFAULT 0,
    dir_count INTEGER DEFAULT 0,
    item_count INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0,
    aborted INTEGER DEFAULT 0
);
`

const scanErrorsTableDDL = `
CREATE TABLE IF NOT EXISTS scan_errors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    path TEXT NOT NULL,
    message TEXT NOT NULL
);
`

const sessionsStartIndexDDL = `CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time DESC);`
const scanErrorsSessionIndexDDL = `CREATE INDEX IF NOT EXISTS idx_scan_errors_session ON scan_errors(session_id);`

// InitSchema creates all tables in the database.
func InitSchema(db *sql.DB) error {
	ddls := []string{
		sessionsTableDDL,
		scanErrorsTableDDL,
		sessionsStartIndexDDL,
		scanErrorsSessionIndexDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// ApplyPragmas configures SQLite for the small, frequently appended
// history workload.
func ApplyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return nil
}
