package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder journals handler invocations to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS handler_events (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			handler    TEXT NOT NULL,
			ticker     TEXT,
			outcome    TEXT NOT NULL,
			error      TEXT,
			elapsed_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_handler_ts ON handler_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordHandler inserts one event, filling in ID and timestamp when unset.
func (r *SQLiteRecorder) RecordHandler(evt *HandlerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO handler_events
		(id, timestamp, handler, ticker, outcome, error, elapsed_ms)
		VALUES (?,?,?,?,?,?,?)`,
		evt.ID, evt.At.Unix(), evt.Handler, evt.Ticker,
		string(evt.Outcome), evt.Error, evt.Elapsed.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
