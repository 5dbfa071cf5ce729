package events

import (
	"context"

	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

type appender interface {
	Append(ctx context.Context, aggregate, correlationID string, evt CanonicalEvent, opts ...EnvelopeOption) (Envelope, error)
}

// Recorder appends events after a mutation succeeded. A failed append is
// logged and never fails the caller; the mutation already happened upstream.
type Recorder struct {
	outbox appender
	logger *logging.Logger
}

// NewRecorder returns nil when outbox is nil; a nil Recorder drops events.
func NewRecorder(outbox *OutboxStore, logger *logging.Logger) *Recorder {
	if outbox == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{outbox: outbox, logger: logger.Component("events")}
}

func (r *Recorder) Record(ctx context.Context, aggregate, correlationID string, evt CanonicalEvent) {
	if r == nil || r.outbox == nil {
		return
	}
	env, err := r.outbox.Append(ctx, aggregate, correlationID, evt)
	if err != nil {
		r.logger.Error("event not recorded", "error", err, "aggregate", aggregate, "type", evt.EventType())
		return
	}
	r.logger.Debug("event recorded", "event_id", env.EventID, "type", env.EventType)
}
