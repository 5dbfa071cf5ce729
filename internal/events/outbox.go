package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// DefaultMaxAttempts is how many failed deliveries an entry survives before
// it is parked for manual inspection.
const DefaultMaxAttempts = 10

const (
	insertEntrySQL = `
		INSERT INTO outbox (id, aggregate, event_type, payload)
		VALUES ($1, $2, $3, $4)`

	pendingEntriesSQL = `
		SELECT id, aggregate, event_type, payload, attempts, created_at
		FROM outbox
		WHERE delivered_at IS NULL AND attempts < $2
		ORDER BY created_at
		LIMIT $1`

	markDeliveredSQL = `
		UPDATE outbox SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL`

	markFailedSQL = `
		UPDATE outbox SET attempts = attempts + 1, last_error = $2
		WHERE id = $1 AND delivered_at IS NULL`
)

// OutboxEntry is one stored envelope that has not reached the queue yet.
type OutboxEntry struct {
	ID        uuid.UUID
	Aggregate string
	EventType string
	Payload   json.RawMessage
	Attempts  int
	CreatedAt time.Time
}

// DeliveryHandler hands an entry to a downstream transport.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore keeps mutation events in Postgres until they are delivered.
type OutboxStore struct {
	db          pgxQuerier
	maxAttempts int
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return newOutboxStoreWithExec(pool)
}

func newOutboxStoreWithExec(db pgxQuerier) *OutboxStore {
	if db == nil {
		panic("events: querier required")
	}
	return &OutboxStore{db: db, maxAttempts: DefaultMaxAttempts}
}

// WithMaxAttempts overrides DefaultMaxAttempts. Non-positive values are ignored.
func (s *OutboxStore) WithMaxAttempts(n int) *OutboxStore {
	if n > 0 {
		s.maxAttempts = n
	}
	return s
}

// Append wraps evt in an envelope and stores it.
func (s *OutboxStore) Append(ctx context.Context, aggregate, correlationID string, evt CanonicalEvent, opts ...EnvelopeOption) (Envelope, error) {
	env, err := newEnvelope(aggregate, correlationID, evt, opts...)
	if err != nil {
		return Envelope{}, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal envelope: %w", err)
	}
	if _, err := s.db.Exec(ctx, insertEntrySQL, env.EventID, env.Aggregate, env.EventType, data); err != nil {
		return Envelope{}, fmt.Errorf("events: insert outbox: %w", err)
	}
	return env, nil
}

// FetchPending returns up to limit undelivered entries, oldest first. Entries
// that already failed maxAttempts times are left out.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	rows, err := s.db.Query(ctx, pendingEntriesSQL, limit, s.maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var (
			e       OutboxEntry
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.Aggregate, &e.EventType, &payload, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("events: scan outbox: %w", err)
		}
		e.Payload = append(json.RawMessage(nil), payload...)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("events: iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkDelivered reports false when another deliverer got there first.
func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, markDeliveredSQL, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkFailed counts a failed attempt and keeps the last error for operators.
func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if _, err := s.db.Exec(ctx, markFailedSQL, id, msg); err != nil {
		return fmt.Errorf("events: mark failed: %w", err)
	}
	return nil
}

// DeliveryObserver counts delivery outcomes.
type DeliveryObserver interface {
	ObserveOutboxDelivery(delivered bool)
}

// Deliverer moves outbox entries to the handler on a fixed interval.
type Deliverer struct {
	store     *OutboxStore
	handler   DeliveryHandler
	logger    *logging.Logger
	observer  DeliveryObserver
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store *OutboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		handler:   handler,
		logger:    logger.Component("outbox"),
		batchSize: 25,
		interval:  2 * time.Second,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Deliverer) WithObserver(o DeliveryObserver) *Deliverer {
	d.observer = o
	return d
}

// Start drains once right away, then every interval until ctx is cancelled.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	d.drain(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Deliverer) drain(ctx context.Context) {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		d.deliver(ctx, entry)
	}
}

func (d *Deliverer) deliver(ctx context.Context, entry OutboxEntry) {
	if err := d.handler.Handle(ctx, entry); err != nil {
		d.observe(false)
		d.logger.Error("outbox delivery failed", "error", err, "event_id", entry.ID, "type", entry.EventType, "attempt", entry.Attempts+1)
		if markErr := d.store.MarkFailed(ctx, entry.ID, err); markErr != nil {
			d.logger.Error("failed to record outbox attempt", "error", markErr, "event_id", entry.ID)
			return
		}
		if entry.Attempts+1 >= d.store.maxAttempts {
			d.logger.Warn("outbox entry parked", "event_id", entry.ID, "type", entry.EventType, "attempts", entry.Attempts+1)
		}
		return
	}
	d.observe(true)
	ok, err := d.store.MarkDelivered(ctx, entry.ID)
	switch {
	case err != nil:
		d.logger.Error("failed to mark outbox delivered", "error", err, "event_id", entry.ID)
	case ok:
		d.logger.Debug("outbox delivered", "event_id", entry.ID, "type", entry.EventType)
	}
}

func (d *Deliverer) observe(delivered bool) {
	if d.observer != nil {
		d.observer.ObserveOutboxDelivery(delivered)
	}
}
