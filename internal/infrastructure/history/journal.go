package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/homeflow/internal/infrastructure/config"
)

// Journal configuration constants.
const (
	// dirPermissions is the permission mode for the journal directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the journal file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds for the busy timeout pragma.
	msPerSecond = 1000

	// connectionTimeout bounds the connectivity check on open.
	connectionTimeout = 5 * time.Second

	// pruneInterval is how many inserts pass between prune sweeps.
	pruneInterval = 100

	// maxDetailLen truncates oversized detail payloads before insert.
	maxDetailLen = 512

	// defaultRecentLimit is used when Recent is called with limit <= 0.
	defaultRecentLimit = 50

	// maxRecentLimit clamps Recent queries.
	maxRecentLimit = 500
)

// Event kinds recorded in the journal.
const (
	KindMessage      = "message"
	KindPresence     = "presence"
	KindDarkness     = "darkness"
	KindNotification = "notification"
	KindCommand      = "command"
)

// Event is one journal row: something observed or done, with a short
// human-readable detail. The journal is an audit trail only; nothing
// reads it back into automation state.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal is an append-only SQLite event log.
//
// Thread Safety:
//   - All methods are safe for concurrent use. SQLite access is
//     serialised through a single connection.
type Journal struct {
	db         *sql.DB
	path       string
	maxEntries int
	inserts    atomic.Int64
}

// Open creates or opens the journal database.
//
// It performs the following setup:
//  1. Creates the journal directory if it doesn't exist
//  2. Opens the database file with WAL mode and a busy timeout
//  3. Creates the events table and index if missing
//  4. Verifies the connection with a ping
//
// Parameters:
//   - cfg: History configuration from config.yaml
//
// Returns:
//   - *Journal: Ready journal
//   - error: If the file cannot be opened or the schema created
func Open(cfg config.HistoryConfig) (*Journal, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5
	}

	connStr := fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
		cfg.Path,
		busyTimeout*msPerSecond,
	)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	// SQLite supports a single writer; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{
		db:         db,
		path:       cfg.Path,
		maxEntries: cfg.MaxEntries,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying journal connection: %w", err)
	}

	if err := j.createSchema(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, err
	}

	// File might not exist until the first write; ignore the error then.
	_ = os.Chmod(cfg.Path, filePermissions)

	return j, nil
}

// createSchema creates the events table and index if missing.
func (j *Journal) createSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	detail     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);`

	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating journal schema: %w", err)
	}
	return nil
}

// Record appends one event to the journal.
//
// Oversized detail strings are truncated rather than rejected; the
// journal is for inspection, not fidelity. Every pruneInterval-th
// insert also trims the table back to the configured maximum.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - kind: One of the Kind constants
//   - subject: What the event concerns (topic, device ID, condition name)
//   - detail: Short human-readable detail (payload excerpt, state)
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (j *Journal) Record(ctx context.Context, kind, subject, detail string) error {
	if kind == "" {
		return fmt.Errorf("%w: kind is required", ErrBadEvent)
	}
	if len(detail) > maxDetailLen {
		detail = detail[:maxDetailLen]
	}

	id := "evt-" + uuid.NewString()[:8]
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO events (id, kind, subject, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		id, kind, subject, detail, createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	if n := j.inserts.Add(1); j.maxEntries > 0 && n%pruneInterval == 0 {
		if err := j.prune(ctx); err != nil {
			return err
		}
	}

	return nil
}

// prune deletes the oldest rows beyond the configured maximum.
func (j *Journal) prune(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx,
		`DELETE FROM events WHERE id IN (
			SELECT id FROM events ORDER BY created_at DESC LIMIT -1 OFFSET ?
		)`,
		j.maxEntries,
	)
	if err != nil {
		return fmt.Errorf("pruning events: %w", err)
	}
	return nil
}

// Recent returns the newest events, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 500)
//
// Returns:
//   - []Event: Entries ordered by created_at DESC (may be empty)
//   - error: nil on success, otherwise the underlying query error
func (j *Journal) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, subject, detail, created_at
		 FROM events
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var ev Event
		var createdAt string

		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.Subject, &ev.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing event timestamp: %w", err)
		}
		ev.CreatedAt = ts

		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

// Count returns the number of journaled events.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// HealthCheck verifies the journal is accessible.
func (j *Journal) HealthCheck(ctx context.Context) error {
	var result int
	if err := j.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("journal health check failed: %w", err)
	}
	return nil
}

// Path returns the filesystem path of the journal database.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	return nil
}
