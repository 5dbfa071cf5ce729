package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/events"
	"github.com/wolfman30/docsmile-suite/internal/records"
)

// AppliedHandler serves treatment records under /api/applied-services.
type AppliedHandler struct {
	base
	backend records.AppliedBackend
}

func NewAppliedHandler(backend records.AppliedBackend, deps Deps) *AppliedHandler {
	return &AppliedHandler{base: newBase(deps, "applied_handler"), backend: backend}
}

func (h *AppliedHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Post("/appointment/{id}", h.Apply)
	r.Put("/appointment/{id}/service/{index}", h.UpdateLine)
	r.Delete("/appointment/{id}/service/{index}", h.RemoveLine)
	r.Get("/patient/{id}/history", h.History)
	r.Post("/patient/{id}/history", h.AddToHistory)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/complete", h.MarkCompleted)
	return r
}

func (h *AppliedHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.backend.ListApplied(r.Context(), creds(r), records.AppliedQuery{
		Page:    queryInt(r, "page"),
		Limit:   queryInt(r, "limit"),
		Status:  q.Get("status"),
		Patient: q.Get("patient"),
		Date:    q.Get("date"),
		Search:  q.Get("search"),
	})
	if err != nil {
		h.fail(w, r, "list_applied", err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (h *AppliedHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.AppliedStats(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "applied_stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// Apply handles POST /api/applied-services/appointment/{id}.
func (h *AppliedHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req records.ApplyRequest
	body, err := decodeBody(r, &req)
	if err != nil {
		h.badBody(w, r, "apply_services", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.record(r, audit.ActionApply, "appointment", id, body, err)
		h.fail(w, r, "apply_services", err)
		return
	}
	result, err := h.backend.ApplyServices(r.Context(), creds(r), id, req)
	h.record(r, audit.ActionApply, "appointment", id, body, err)
	if err != nil {
		h.fail(w, r, "apply_services", err)
		return
	}
	h.publishApplied(r, id, req.AppliedServices, result.TotalAmount)
	writeData(w, http.StatusOK, result)
}

// Create builds a treatment record; the record is written through Apply.
func (h *AppliedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in records.AppliedServiceInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "create_applied", err)
		return
	}
	if err := in.Validate(); err != nil {
		h.record(r, audit.ActionCreate, "applied_service", in.Appointment, body, err)
		h.fail(w, r, "create_applied", err)
		return
	}
	result, err := h.backend.CreateApplied(r.Context(), creds(r), in)
	h.record(r, audit.ActionCreate, "applied_service", in.Appointment, body, err)
	if err != nil {
		h.fail(w, r, "create_applied", err)
		return
	}
	h.publishApplied(r, in.Appointment, in.ApplyLines(), result.TotalAmount)
	writeData(w, http.StatusCreated, result)
}

func (h *AppliedHandler) publishApplied(r *http.Request, appointmentID string, lines []records.ApplyLine, total float64) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.Service)
	}
	h.publish(r, "appointment", appointmentID, events.ServicesAppliedV1{
		AppointmentID: appointmentID,
		ServiceIDs:    ids,
		TotalAmount:   total,
		ActorID:       actor(r.Context()).ID,
		AppliedAt:     time.Now().UTC(),
	})
}

func (h *AppliedHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.backend.PatientHistory(r.Context(), creds(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "patient_history", err)
		return
	}
	writeData(w, http.StatusOK, history)
}

func (h *AppliedHandler) AddToHistory(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "id")
	var req records.HistoryRequest
	body, err := decodeBody(r, &req)
	if err != nil {
		h.badBody(w, r, "add_history", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.record(r, audit.ActionApply, "patient_history", patientID, body, err)
		h.fail(w, r, "add_history", err)
		return
	}
	appt, err := h.backend.AddToHistory(r.Context(), creds(r), patientID, req)
	h.record(r, audit.ActionApply, "patient_history", patientID, body, err)
	if err != nil {
		h.fail(w, r, "add_history", err)
		return
	}
	writeData(w, http.StatusCreated, appt)
}

func (h *AppliedHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := lineIndex(r)
	if err != nil {
		h.fail(w, r, "update_applied_line", records.FieldErrors{"index": "El índice no es válido"})
		return
	}
	var u records.LineUpdate
	body, err := decodeBody(r, &u)
	if err != nil {
		h.badBody(w, r, "update_applied_line", err)
		return
	}
	if err := u.Validate(); err != nil {
		h.record(r, audit.ActionUpdate, "applied_line", id, body, err)
		h.fail(w, r, "update_applied_line", err)
		return
	}
	appt, err := h.backend.UpdateAppliedLine(r.Context(), creds(r), id, index, u)
	h.record(r, audit.ActionUpdate, "applied_line", id, body, err)
	if err != nil {
		h.fail(w, r, "update_applied_line", err)
		return
	}
	writeData(w, http.StatusOK, appt)
}

func (h *AppliedHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := lineIndex(r)
	if err != nil {
		h.fail(w, r, "remove_applied_line", records.FieldErrors{"index": "El índice no es válido"})
		return
	}
	appt, err := h.backend.RemoveAppliedLine(r.Context(), creds(r), id, index)
	h.record(r, audit.ActionDelete, "applied_line", id, nil, err)
	if err != nil {
		h.fail(w, r, "remove_applied_line", err)
		return
	}
	writeData(w, http.StatusOK, appt)
}

// Update is not offered by the system of record and answers 501.
func (h *AppliedHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in records.AppliedServiceInput
	if _, err := decodeBody(r, &in); err != nil {
		h.badBody(w, r, "update_applied", err)
		return
	}
	record, err := h.backend.UpdateApplied(r.Context(), creds(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update_applied", err)
		return
	}
	writeData(w, http.StatusOK, record)
}

// Delete is not offered by the system of record and answers 501.
func (h *AppliedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.DeleteApplied(r.Context(), creds(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete_applied", err)
		return
	}
	writeMessage(w, http.StatusOK, "Registro eliminado")
}

func (h *AppliedHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.MarkAppliedCompleted(r.Context(), creds(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "complete_applied", err)
		return
	}
	writeMessage(w, http.StatusOK, "Tratamiento marcado como completado")
}
