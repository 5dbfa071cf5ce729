package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

var outboxColumns = []string{"id", "aggregate", "event_type", "payload", "attempts", "created_at"}

func TestOutboxStoreFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newOutboxStoreWithExec(mock)

	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(pgxmock.AnyArg(), "appointment:a1", "clinic.payment.processed.v1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	env, err := store.Append(context.Background(), Aggregate("appointment", "a1"), "req-1", PaymentProcessedV1{AppointmentID: "a1", ReceiptNumber: "REC-20240725-0002"})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if env.CorrelationID != "req-1" {
		t.Fatalf("unexpected correlation id: %s", env.CorrelationID)
	}

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows(outboxColumns).
		AddRow(id, "appointment:a1", "clinic.payment.processed.v1", []byte(`{"event_type":"clinic.payment.processed.v1"}`), 2, now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10), DefaultMaxAttempts).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id || entries[0].Aggregate != "appointment:a1" || entries[0].Attempts != 2 {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if !ok {
		t.Fatal("expected mark delivered to report success")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type stubHandler struct {
	err  error
	seen []OutboxEntry
}

func (h *stubHandler) Handle(ctx context.Context, entry OutboxEntry) error {
	h.seen = append(h.seen, entry)
	return h.err
}

type countingObserver struct{ delivered, failed int }

func (o *countingObserver) ObserveOutboxDelivery(delivered bool) {
	if delivered {
		o.delivered++
		return
	}
	o.failed++
}

func TestDelivererDrain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	rows := pgxmock.NewRows(outboxColumns).
		AddRow(id, "patient:p1", "clinic.patient.registered.v1", []byte(`{}`), 0, time.Now())
	mock.ExpectQuery("SELECT id").WithArgs(int32(25), DefaultMaxAttempts).WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	handler := &stubHandler{}
	observer := &countingObserver{}
	d := NewDeliverer(newOutboxStoreWithExec(mock), handler, logging.New("error")).WithObserver(observer)
	d.drain(context.Background())

	if len(handler.seen) != 1 || observer.delivered != 1 {
		t.Fatalf("expected one delivery, got %d (observer %+v)", len(handler.seen), observer)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelivererRecordsFailedAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	rows := pgxmock.NewRows(outboxColumns).
		AddRow(id, "patient:p1", "clinic.patient.registered.v1", []byte(`{}`), 0, time.Now())
	mock.ExpectQuery("SELECT id").WithArgs(int32(25), DefaultMaxAttempts).WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox SET attempts").WithArgs(id, "queue down").WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	observer := &countingObserver{}
	d := NewDeliverer(newOutboxStoreWithExec(mock), &stubHandler{err: errors.New("queue down")}, logging.New("error")).WithObserver(observer)
	d.drain(context.Background())

	if observer.failed != 1 {
		t.Fatalf("expected one failure, got %+v", observer)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOutboxStoreHonoursMaxAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newOutboxStoreWithExec(mock).WithMaxAttempts(3).WithMaxAttempts(0)
	mock.ExpectQuery("SELECT id").WithArgs(int32(5), 3).WillReturnRows(pgxmock.NewRows(outboxColumns))

	entries, err := store.FetchPending(context.Background(), 5)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	id := uuid.New()
	mock.ExpectExec("UPDATE outbox SET attempts").WithArgs(id, "").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := store.MarkFailed(context.Background(), id, nil); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type stubAppender struct{ err error }

func (s stubAppender) Append(ctx context.Context, aggregate, correlationID string, evt CanonicalEvent, opts ...EnvelopeOption) (Envelope, error) {
	return Envelope{}, s.err
}

func TestRecorderSwallowsFailures(t *testing.T) {
	var nilRecorder *Recorder
	nilRecorder.Record(context.Background(), "patient:p1", "", PatientRegisteredV1{})

	r := &Recorder{outbox: stubAppender{err: errors.New("db down")}, logger: logging.New("error")}
	r.Record(context.Background(), "patient:p1", "", PatientRegisteredV1{})
}
