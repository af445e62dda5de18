package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subgen/internal/config"
	"subgen/internal/services"
)

// ErrDisabled is returned by Open when history is turned off in config.
var ErrDisabled = errors.New("history is disabled")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	entryColumns = "id, request_id, api_url, video_url, status, failure_kind, message, content_bytes, cue_count, output_path, started_at, finished_at"
)

// Store persists request history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database configured in cfg.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "config is nil", nil)
	}
	if !cfg.History.Enabled {
		return nil, ErrDisabled
	}
	return OpenPath(cfg.History.Path)
}

// OpenPath connects to (and if needed creates) the database at path.
func OpenPath(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "history.path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "create directory", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Start inserts a running entry for requestID.
func (s *Store) Start(ctx context.Context, requestID, apiURL, videoURL string, startedAt time.Time) error {
	if strings.TrimSpace(requestID) == "" {
		return errors.New("request id is required")
	}
	return s.exec(ctx,
		`INSERT INTO requests (request_id, api_url, video_url, status, started_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(request_id) DO UPDATE SET status = excluded.status, started_at = excluded.started_at`,
		requestID, apiURL, videoURL, "loading", formatTime(startedAt),
	)
}

// Outcome describes how a request ended.
type Outcome struct {
	Status       string
	FailureKind  string
	Message      string
	ContentBytes int
	CueCount     int
	FinishedAt   time.Time
}

// Finish records the terminal outcome for requestID.
func (s *Store) Finish(ctx context.Context, requestID string, outcome Outcome) error {
	res, err := s.execResult(ctx,
		`UPDATE requests
         SET status = ?, failure_kind = ?, message = ?, content_bytes = ?, cue_count = ?, finished_at = ?
         WHERE request_id = ?`,
		outcome.Status,
		nullableString(outcome.FailureKind),
		nullableString(outcome.Message),
		outcome.ContentBytes,
		outcome.CueCount,
		formatTime(outcome.FinishedAt),
		requestID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish %s: %w", requestID, services.ErrNotFound)
	}
	return nil
}

// SetOutputPath attaches the saved subtitle file to requestID.
func (s *Store) SetOutputPath(ctx context.Context, requestID, outputPath string) error {
	res, err := s.execResult(ctx,
		`UPDATE requests SET output_path = ? WHERE request_id = ?`,
		nullableString(outputPath), requestID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set output path %s: %w", requestID, services.ErrNotFound)
	}
	return nil
}

// Get returns the entry for requestID, or nil when absent.
func (s *Store) Get(ctx context.Context, requestID string) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+entryColumns+` FROM requests WHERE request_id = ?`, requestID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// List returns the most recent entries first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM requests ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execResult(ctx, `DELETE FROM requests`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execResult(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, fmt.Errorf("exec history statement: %w", err)
	}
	return res, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.execResult(ctx, query, args...)
	return err
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry       Entry
		failureKind sql.NullString
		message     sql.NullString
		outputPath  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RequestID,
		&entry.APIURL,
		&entry.VideoURL,
		&entry.Status,
		&failureKind,
		&message,
		&entry.ContentBytes,
		&entry.CueCount,
		&outputPath,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	entry.FailureKind = failureKind.String
	entry.Message = message.String
	entry.OutputPath = outputPath.String
	if started, err := parseTimeString(startedRaw); err == nil {
		entry.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			entry.FinishedAt = &finished
		}
	}
	return &entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
