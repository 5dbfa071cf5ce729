package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/docsmile-suite/internal/audit"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
	adminRole         = "admin"
)

// AuditLog is the read side of the audit trail.
type AuditLog interface {
	Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error)
}

// AuditHandler lets administrators read who changed what.
type AuditHandler struct {
	base
	log AuditLog
}

// NewAuditHandler accepts a nil log; every request then answers 503.
func NewAuditHandler(log AuditLog, deps Deps) *AuditHandler {
	return &AuditHandler{base: newBase(deps, "audit_handler"), log: log}
}

func (h *AuditHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List filters by actorId, resource, resourceId, action and a since/until
// window (RFC 3339 or a clinic day).
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if actor(r.Context()).Role != adminRole {
		jsonError(w, "Solo un administrador puede ver la auditoría", http.StatusForbidden)
		return
	}
	if h.log == nil {
		jsonError(w, "Auditoría no habilitada", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	f := audit.Filter{
		ActorID:    q.Get("actorId"),
		Resource:   q.Get("resource"),
		ResourceID: q.Get("resourceId"),
		Action:     audit.Action(q.Get("action")),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	}
	if f.Limit <= 0 {
		f.Limit = defaultAuditLimit
	}
	if f.Limit > maxAuditLimit {
		f.Limit = maxAuditLimit
	}
	var err error
	if f.Since, err = h.bound(q.Get("since"), false); err != nil {
		jsonError(w, "El parámetro since no es una fecha válida", http.StatusBadRequest)
		return
	}
	if f.Until, err = h.bound(q.Get("until"), true); err != nil {
		jsonError(w, "El parámetro until no es una fecha válida", http.StatusBadRequest)
		return
	}

	entries, err := h.log.Query(r.Context(), f)
	if err != nil {
		h.logger.Error("audit query failed", "error", err)
		jsonError(w, "Error al consultar la auditoría", http.StatusBadGateway)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeData(w, http.StatusOK, entries)
}

// bound reads a window edge. A bare day covers the whole clinic day.
func (h *AuditHandler) bound(value string, end bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	day, err := h.clock.CalendarDay(value)
	if err != nil {
		return time.Time{}, err
	}
	start, err := h.clock.StartOfDay(day)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		return start.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return start, nil
}
