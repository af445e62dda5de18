// Package srtfile persists generated subtitles to disk.
package srtfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	"subgen/internal/logging"
	"subgen/internal/services"
)

const (
	stageName     = "srtfile"
	fileExt       = ".srt"
	namePrefix    = "subtitle_"
	nameLayout    = "20060102_150405"
	lockFileName  = ".subgen.lock"
	lockRetry     = 25 * time.Millisecond
	maxCollisions = 1000
)

// Writer saves SRT payloads under a directory using timestamped names.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the clock used for file names.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{dir: dir, now: time.Now, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, stageName)
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// FileName returns the base name used for content saved at t.
func FileName(t time.Time) string {
	return namePrefix + t.Local().Format(nameLayout) + fileExt
}

// Save writes content verbatim and returns the absolute path of the new file.
// An existing file is never overwritten; collisions get a _N suffix.
func (w *Writer) Save(ctx context.Context, content string) (string, error) {
	dir := strings.TrimSpace(w.dir)
	if dir == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "resolve output", "output directory is not configured", nil)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageName, "resolve output", dir, err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageName, "create output directory", absDir, err)
	}

	lock := flock.New(filepath.Join(absDir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "", services.Wrap(services.ErrTimeout, stageName, "lock output directory", absDir, err)
	}
	if err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "lock output directory", absDir, err)
	}
	if !locked {
		return "", services.Wrap(services.ErrTransient, stageName, "lock output directory", "lock not acquired", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Debug("release output lock failed", logging.Error(err))
		}
	}()

	target, err := nextFreePath(absDir, FileName(w.now()))
	if err != nil {
		return "", err
	}

	pending, err := renameio.NewPendingFile(target, renameio.WithPermissions(0o644))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "create pending file", target, err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			w.logger.Debug("cleanup pending subtitle file", logging.Error(err))
		}
	}()
	if _, err := pending.WriteString(content); err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "write subtitle data", target, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "replace subtitle file", target, err)
	}

	w.logger.Info("subtitle file saved",
		logging.String(logging.FieldOutputPath, target),
		logging.Int(logging.FieldCueCount, CountCues(content)),
		logging.Int("bytes", len(content)),
	)
	return target, nil
}

func nextFreePath(dir, name string) (string, error) {
	stem := strings.TrimSuffix(name, fileExt)
	for i := 1; i <= maxCollisions; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, fileExt)
		}
		path := filepath.Join(dir, candidate)
		_, err := os.Lstat(path)
		if err == nil {
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		return "", services.Wrap(services.ErrTransient, stageName, "stat candidate", path, err)
	}
	return "", services.Wrap(services.ErrTransient, stageName, "allocate file name", fmt.Sprintf("more than %d files named %s", maxCollisions, name), nil)
}

// SavedMessage is the status line shown after a successful save.
func SavedMessage(path string) string {
	return "Subtitle saved: " + path
}

// FailedMessage is the status line shown when saving fails.
func FailedMessage(err error) string {
	if err == nil {
		return "Failed to save file"
	}
	return "Failed to save file: " + err.Error()
}
