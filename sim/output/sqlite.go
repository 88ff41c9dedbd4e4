package output

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/interrupt-sim/interrupt-sim/sim"
)

// SQLiteSink records execution logs in a SQLite database. Each run gets a
// row in the runs table and one log_entries row per micro-operation.
// Several runs can share one database file.
type SQLiteSink struct {
	*sql.DB

	path  string
	runID string
}

// NewSQLiteSink opens (or creates) the database at path. An empty path
// creates a new file named after the run id.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	runID := xid.New().String()
	if path == "" {
		path = "interrupt_sim_" + runID + ".sqlite3"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}

	s := &SQLiteSink{DB: db, path: path, runID: runID}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// RunID identifies the rows written by this sink.
func (s *SQLiteSink) RunID() string {
	return s.runID
}

// Path is the database file.
func (s *SQLiteSink) Path() string {
	return s.path
}

func (s *SQLiteSink) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			entries     INTEGER NOT NULL,
			final_clock INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS log_entries (
			run_id      TEXT NOT NULL,
			seq         INTEGER NOT NULL,
			start       INTEGER NOT NULL,
			duration    INTEGER NOT NULL,
			description TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.Exec(stmt); err != nil {
			return fmt.Errorf("creating sqlite tables: %w", err)
		}
	}
	return nil
}

// WriteLog inserts the run and all its entries in one transaction.
func (s *SQLiteSink) WriteLog(log *sim.ExecutionLog) error {
	entries := log.Entries()
	var finalClock int64
	if len(entries) > 0 {
		finalClock = entries[len(entries)-1].End()
	}

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("beginning sqlite transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO runs (id, entries, final_clock) VALUES (?, ?, ?)`,
		s.runID, len(entries), finalClock); err != nil {
		return fmt.Errorf("inserting run %s: %w", s.runID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO log_entries (run_id, seq, start, duration, description) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing log entry insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range entries {
		if _, err := stmt.Exec(s.runID, i, e.Start, e.Duration, e.Description); err != nil {
			return fmt.Errorf("inserting log entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", s.runID, err)
	}
	logrus.Infof("Recorded run %s (%d entries) in %s", s.runID, len(entries), s.path)
	return nil
}

// ReadLog loads the entries of a recorded run in emission order.
func (s *SQLiteSink) ReadLog(runID string) (*sim.ExecutionLog, error) {
	rows, err := s.Query(`SELECT start, duration, description FROM log_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	log := sim.NewExecutionLog()
	for rows.Next() {
		var e sim.LogEntry
		if err := rows.Scan(&e.Start, &e.Duration, &e.Description); err != nil {
			return nil, fmt.Errorf("scanning run %s: %w", runID, err)
		}
		log.Append(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	return log, nil
}
