package notifications

import (
	"context"
	"log/slog"

	"subgen/internal/generation"
	"subgen/internal/logging"
	"subgen/internal/srtfile"
)

// Observer publishes terminal generation states.
type Observer struct {
	svc    Service
	logger *slog.Logger
}

// NewObserver adapts svc to generation.Observer.
func NewObserver(svc Service, logger *slog.Logger) *Observer {
	if svc == nil {
		svc = noopService{}
	}
	return &Observer{svc: svc, logger: logging.NewComponentLogger(logger, "notifications")}
}

// OnState implements generation.Observer.
func (o *Observer) OnState(state generation.State) {
	var (
		event   Event
		payload Payload
	)
	switch state.Status {
	case generation.StatusSuccess:
		event = EventGenerationSucceeded
		payload = Payload{
			"videoURL": state.Request.VideoURL,
			"cueCount": srtfile.CountCues(state.Content),
		}
	case generation.StatusError:
		event = EventGenerationFailed
		payload = Payload{
			"videoURL": state.Request.VideoURL,
			"kind":     string(state.Kind),
			"message":  state.Message,
		}
	default:
		return
	}
	o.publish(event, payload, state.RequestID)
}

// Saved announces a written subtitle file.
func (o *Observer) Saved(path, requestID string) {
	o.publish(EventSubtitleSaved, Payload{"path": path}, requestID)
}

func (o *Observer) publish(event Event, payload Payload, requestID string) {
	if err := o.svc.Publish(context.Background(), event, payload); err != nil {
		logging.WarnWithContext(o.logger, "notification failed", "notification_failed",
			logging.String(logging.FieldCorrelationID, requestID),
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "push notification not delivered"),
		)
	}
}
