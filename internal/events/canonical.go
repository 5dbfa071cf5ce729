package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source identifies this service on every envelope.
const Source = "docsmile-console"

// CanonicalEvent is a clinic mutation worth telling downstream consumers
// about. EventType ends in ".v<N>".
type CanonicalEvent interface {
	EventType() string
}

// Envelope is what lands in the outbox and on the queue.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	Version       int             `json:"version"`
	Aggregate     string          `json:"aggregate"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Source        string          `json:"source"`
	Payload       json.RawMessage `json:"payload"`
}

// EnvelopeOption customizes the generated envelope.
type EnvelopeOption func(*Envelope)

// WithEventID overrides the generated event id.
func WithEventID(id uuid.UUID) EnvelopeOption {
	return func(e *Envelope) {
		if id != uuid.Nil {
			e.EventID = id
		}
	}
}

// WithOccurredAt overrides the time the mutation happened.
func WithOccurredAt(ts time.Time) EnvelopeOption {
	return func(e *Envelope) {
		if !ts.IsZero() {
			e.OccurredAt = ts.UTC()
		}
	}
}

var (
	errMissingAggregate = errors.New("events: aggregate is required")
	errNilEvent         = errors.New("events: canonical event required")
	nowFunc             = time.Now
)

// Aggregate names the record an event is about, e.g. "appointment:a1".
func Aggregate(kind, id string) string {
	return kind + ":" + id
}

// SplitAggregate is the inverse of Aggregate.
func SplitAggregate(aggregate string) (kind, id string, ok bool) {
	kind, id, ok = strings.Cut(aggregate, ":")
	if !ok || kind == "" || id == "" {
		return "", "", false
	}
	return kind, id, true
}

// versionOf reads N from a "<name>.v<N>" event type.
func versionOf(eventType string) (int, error) {
	i := strings.LastIndex(eventType, ".v")
	if i < 0 {
		return 0, fmt.Errorf("events: event type %q has no version suffix", eventType)
	}
	v, err := strconv.Atoi(eventType[i+2:])
	if err != nil || v < 1 {
		return 0, fmt.Errorf("events: event type %q has an invalid version", eventType)
	}
	return v, nil
}

func newEnvelope(aggregate, correlationID string, evt CanonicalEvent, opts ...EnvelopeOption) (Envelope, error) {
	aggregate = strings.TrimSpace(aggregate)
	if aggregate == "" {
		return Envelope{}, errMissingAggregate
	}
	if evt == nil {
		return Envelope{}, errNilEvent
	}
	eventType := strings.TrimSpace(evt.EventType())
	version, err := versionOf(eventType)
	if err != nil {
		return Envelope{}, err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s: %w", eventType, err)
	}
	env := Envelope{
		EventID:       uuid.New(),
		EventType:     eventType,
		Version:       version,
		Aggregate:     aggregate,
		OccurredAt:    nowFunc().UTC(),
		CorrelationID: strings.TrimSpace(correlationID),
		Source:        Source,
		Payload:       payload,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&env)
		}
	}
	return env, nil
}
