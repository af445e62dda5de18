package history

import (
	"context"
	"log/slog"
	"time"

	"subgen/internal/generation"
	"subgen/internal/logging"
	"subgen/internal/srtfile"
)

const writeTimeout = 5 * time.Second

// Recorder is a generation.Observer that mirrors lifecycle states into a
// Store. Write failures are logged and never interrupt the lifecycle.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logging.NewComponentLogger(logger, "history")}
}

// OnState implements generation.Observer.
func (r *Recorder) OnState(state generation.State) {
	if r == nil || r.store == nil || state.RequestID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	switch state.Status {
	case generation.StatusLoading:
		err = r.store.Start(ctx, state.RequestID, state.Request.APIURL, state.Request.VideoURL, state.At)
	case generation.StatusSuccess:
		err = r.store.Finish(ctx, state.RequestID, Outcome{
			Status:       string(state.Status),
			ContentBytes: len(state.Content),
			CueCount:     srtfile.CountCues(state.Content),
			FinishedAt:   state.At,
		})
	case generation.StatusError:
		err = r.store.Finish(ctx, state.RequestID, Outcome{
			Status:      string(state.Status),
			FailureKind: string(state.Kind),
			Message:     state.Message,
			FinishedAt:  state.At,
		})
	default:
		return
	}
	if err != nil {
		logging.WarnWithContext(r.logger, "history write failed", "history_write_failed",
			logging.String(logging.FieldCorrelationID, state.RequestID),
			logging.String(logging.FieldStatus, string(state.Status)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path permissions or disable history"),
			logging.String(logging.FieldImpact, "request missing from history"),
		)
	}
}

// RecordOutput attaches a saved file path to the request.
func (r *Recorder) RecordOutput(ctx context.Context, requestID, path string) {
	if r == nil || r.store == nil || requestID == "" {
		return
	}
	if err := r.store.SetOutputPath(ctx, requestID, path); err != nil {
		logging.WarnWithContext(r.logger, "history output update failed", "history_write_failed",
			logging.String(logging.FieldCorrelationID, requestID),
			logging.String(logging.FieldOutputPath, path),
			logging.Error(err),
		)
	}
}
