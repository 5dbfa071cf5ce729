// Package handlers serves the clinic console API on top of a records backend.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/events"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/session"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// ValidationObserver counts forms rejected before reaching the backend.
type ValidationObserver interface {
	ObserveValidationRejection(operation string)
}

// Deps are shared by every console handler. Events, Audit and Metrics may be
// nil.
type Deps struct {
	Clock                 *clinictime.Clock
	MinAppointmentMinutes int
	Events                *events.Recorder
	Audit                 *audit.Trail
	Metrics               ValidationObserver
	Logger                *logging.Logger
}

type base struct {
	clock      *clinictime.Clock
	minMinutes int
	events     *events.Recorder
	audit      *audit.Trail
	metrics    ValidationObserver
	logger     *logging.Logger
}

func newBase(deps Deps, component string) base {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock, _ = clinictime.New("")
	}
	minMinutes := deps.MinAppointmentMinutes
	if minMinutes <= 0 {
		minMinutes = clinictime.DefaultMinDuration
	}
	return base{
		clock:      clock,
		minMinutes: minMinutes,
		events:     deps.Events,
		audit:      deps.Audit,
		metrics:    deps.Metrics,
		logger:     logger.Component(component),
	}
}

// creds returns the upstream credentials of the signed-in user. Requests
// without a session get empty credentials, which every backend rejects.
func creds(r *http.Request) records.Credentials {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return records.Credentials{}
	}
	return sess.Credentials()
}

func actor(ctx context.Context) records.User {
	sess, _ := session.FromContext(ctx)
	return sess.User
}

// fail writes the error response for err. Field errors carry the per-field
// messages and are counted as validation rejections under op.
func (b base) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message := statusFor(err)
	if fe, ok := records.AsFieldErrors(err); ok {
		if b.metrics != nil {
			b.metrics.ObserveValidationRejection(op)
		}
		writeJSON(w, status, envelope{Message: message, Errors: fe})
		return
	}
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		b.logger.Error("backend call failed", "op", op, "error", err, "request_id", middleware.GetReqID(r.Context()))
	} else {
		b.logger.Debug("request refused", "op", op, "status", status, "error", err)
	}
	jsonError(w, message, status)
}

func (b base) badBody(w http.ResponseWriter, r *http.Request, op string, err error) {
	b.logger.Debug("malformed request body", "op", op, "error", err)
	jsonError(w, "Cuerpo de la solicitud inválido", http.StatusBadRequest)
}

// record writes the audit entry for a mutation. err is the outcome of the
// mutation itself.
func (b base) record(r *http.Request, action audit.Action, resource, resourceID string, body []byte, err error) {
	if b.audit == nil {
		return
	}
	outcome := audit.OutcomeAccepted
	if err != nil {
		outcome = audit.OutcomeFailed
		if _, ok := records.AsFieldErrors(err); ok {
			outcome = audit.OutcomeRejected
		}
	}
	user := actor(r.Context())
	entry := audit.Entry{
		ActorID:       user.ID,
		ActorName:     user.Username,
		Action:        action,
		Resource:      resource,
		ResourceID:    resourceID,
		ChangedFields: audit.FieldsOf(body),
		Outcome:       outcome,
		RequestID:     middleware.GetReqID(r.Context()),
	}
	if recErr := b.audit.Record(r.Context(), entry); recErr != nil {
		b.logger.Warn("audit entry not written", "error", recErr, "resource", resource, "action", action)
	}
}

func (b base) publish(r *http.Request, kind, id string, evt events.CanonicalEvent) {
	b.events.Record(r.Context(), events.Aggregate(kind, id), middleware.GetReqID(r.Context()), evt)
}

// lineIndex parses the {index} URL parameter.
func lineIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, errors.New("invalid line index")
	}
	return index, nil
}
