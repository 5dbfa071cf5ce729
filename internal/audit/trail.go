// Package audit keeps an append-only record of who changed clinic records
// through the console. Field values are never stored, only field names.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Action names a console mutation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionRestore  Action = "restore"
	ActionApply    Action = "apply"
	ActionDiscount Action = "discount"
	ActionPay      Action = "pay"
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
	ActionReset    Action = "password_reset"
)

// Outcome is whether the system of record accepted the change.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Entry is one immutable audit record.
type Entry struct {
	ID            string    `json:"id"`
	ActorID       string    `json:"actor_id,omitempty"`
	ActorName     string    `json:"actor_name,omitempty"`
	Action        Action    `json:"action"`
	Resource      string    `json:"resource"`
	ResourceID    string    `json:"resource_id,omitempty"`
	ChangedFields []string  `json:"changed_fields,omitempty"`
	Outcome       Outcome   `json:"outcome"`
	RequestID     string    `json:"request_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Trail writes and queries audit entries.
type Trail struct {
	db  *sql.DB
	now func() time.Time
}

// NewTrail returns nil when db is nil; a nil Trail records nothing.
func NewTrail(db *sql.DB) *Trail {
	if db == nil {
		return nil
	}
	return &Trail{db: db, now: time.Now}
}

// Record appends an entry.
func (t *Trail) Record(ctx context.Context, e Entry) error {
	if t == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = t.now().UTC()
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeAccepted
	}

	query := `
		INSERT INTO audit_events (
			id, actor_id, actor_name, action, resource, resource_id,
			changed_fields, outcome, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := t.db.ExecContext(ctx, query,
		e.ID,
		nullString(e.ActorID),
		nullString(e.ActorName),
		e.Action,
		e.Resource,
		nullString(e.ResourceID),
		pq.Array(e.ChangedFields),
		e.Outcome,
		nullString(e.RequestID),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to record entry: %w", err)
	}
	return nil
}

// Filter narrows a query. Zero values match everything.
type Filter struct {
	ActorID    string
	Resource   string
	ResourceID string
	Action     Action
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// Query returns matching entries, newest first.
func (t *Trail) Query(ctx context.Context, f Filter) ([]Entry, error) {
	if t == nil {
		return nil, nil
	}
	query := `
		SELECT id, actor_id, actor_name, action, resource, resource_id,
			   changed_fields, outcome, request_id, created_at
		FROM audit_events
		WHERE 1 = 1
	`
	args := []any{}
	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND %s $%d", clause, len(args))
	}
	if f.ActorID != "" {
		add("actor_id =", f.ActorID)
	}
	if f.Resource != "" {
		add("resource =", f.Resource)
	}
	if f.ResourceID != "" {
		add("resource_id =", f.ResourceID)
	}
	if f.Action != "" {
		add("action =", f.Action)
	}
	if !f.Since.IsZero() {
		add("created_at >=", f.Since)
	}
	if !f.Until.IsZero() {
		add("created_at <=", f.Until)
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var actorID, actorName, resourceID, requestID sql.NullString
		if err := rows.Scan(
			&e.ID, &actorID, &actorName, &e.Action, &e.Resource, &resourceID,
			pq.Array(&e.ChangedFields), &e.Outcome, &requestID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("audit: failed to scan entry: %w", err)
		}
		e.ActorID = actorID.String
		e.ActorName = actorName.String
		e.ResourceID = resourceID.String
		e.RequestID = requestID.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FieldsOf lists the top-level keys of a JSON object body, sorted. Anything
// that is not an object yields nil.
func FieldsOf(body []byte) []string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil
	}
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
