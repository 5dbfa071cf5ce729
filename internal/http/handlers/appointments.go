package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/events"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// AppointmentsHandler serves /api/appointments.
type AppointmentsHandler struct {
	base
	backend records.AppointmentBackend
}

func NewAppointmentsHandler(backend records.AppointmentBackend, deps Deps) *AppointmentsHandler {
	return &AppointmentsHandler{base: newBase(deps, "appointments_handler"), backend: backend}
}

func (h *AppointmentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/stats/summary", h.Stats)
	r.Post("/validate-time", h.ValidateTime)
	r.Get("/by-patient-dni/{dni}", h.ByPatientDNI)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// Dashboard handles GET /api/appointments/dashboard?date&status&limit. The
// day defaults to today in the clinic zone.
func (h *AppointmentsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := q.Get("date")
	if day == "" {
		day = h.clock.Today()
	} else if normalized, err := h.clock.CalendarDay(day); err == nil {
		day = normalized
	}
	dashboard, err := h.backend.AppointmentDashboard(r.Context(), creds(r), records.DashboardQuery{
		Date:   day,
		Status: taxonomy.AppointmentStatus(q.Get("status")),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		h.fail(w, r, "appointment_dashboard", err)
		return
	}
	writeData(w, http.StatusOK, dashboard)
}

func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.backend.ListAppointments(r.Context(), creds(r), records.AppointmentQuery{
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
		Status:     taxonomy.AppointmentStatus(q.Get("status")),
		Date:       q.Get("date"),
		PatientDNI: q.Get("patientDni"),
		DateFrom:   q.Get("dateFrom"),
		DateTo:     q.Get("dateTo"),
	})
	if err != nil {
		h.fail(w, r, "list_appointments", err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (h *AppointmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.backend.GetAppointment(r.Context(), creds(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_appointment", err)
		return
	}
	writeData(w, http.StatusOK, appt)
}

func (h *AppointmentsHandler) ByPatientDNI(w http.ResponseWriter, r *http.Request) {
	result, err := h.backend.AppointmentsByPatientDNI(r.Context(), creds(r), chi.URLParam(r, "dni"))
	if err != nil {
		h.fail(w, r, "appointments_by_dni", err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in records.AppointmentInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "create_appointment", err)
		return
	}
	if err := in.Validate(h.clock, h.minMinutes); err != nil {
		h.record(r, audit.ActionCreate, "appointment", "", body, err)
		h.fail(w, r, "create_appointment", err)
		return
	}

	appt, err := h.backend.CreateAppointment(r.Context(), creds(r), in)
	h.record(r, audit.ActionCreate, "appointment", appt.ID, body, err)
	if err != nil {
		h.fail(w, r, "create_appointment", err)
		return
	}
	h.publish(r, "appointment", appt.ID, events.AppointmentBookedV1{
		AppointmentID: appt.ID,
		PatientID:     in.Patient,
		Date:          appt.Date,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		ServiceIDs:    in.ServiceIDs(),
		ActorID:       actor(r.Context()).ID,
		BookedAt:      time.Now().UTC(),
	})
	writeData(w, http.StatusCreated, appt)
}

func (h *AppointmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in records.AppointmentInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "update_appointment", err)
		return
	}
	if err := in.Validate(h.clock, h.minMinutes); err != nil {
		h.record(r, audit.ActionUpdate, "appointment", id, body, err)
		h.fail(w, r, "update_appointment", err)
		return
	}

	appt, err := h.backend.UpdateAppointment(r.Context(), creds(r), id, in)
	h.record(r, audit.ActionUpdate, "appointment", id, body, err)
	if err != nil {
		h.fail(w, r, "update_appointment", err)
		return
	}
	if in.Status == taxonomy.StatusCancelled {
		h.publishCancelled(r, id)
	}
	writeData(w, http.StatusOK, appt)
}

func (h *AppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.backend.DeleteAppointment(r.Context(), creds(r), id)
	h.record(r, audit.ActionDelete, "appointment", id, nil, err)
	if err != nil {
		h.fail(w, r, "delete_appointment", err)
		return
	}
	h.publishCancelled(r, id)
	writeMessage(w, http.StatusOK, "Cita eliminada exitosamente")
}

func (h *AppointmentsHandler) publishCancelled(r *http.Request, id string) {
	h.publish(r, "appointment", id, events.AppointmentCancelledV1{
		AppointmentID: id,
		ActorID:       actor(r.Context()).ID,
		CancelledAt:   time.Now().UTC(),
	})
}

func (h *AppointmentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.AppointmentStats(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "appointment_stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

type timeRangeRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type timeRangeResult struct {
	Valid           bool `json:"valid"`
	DurationMinutes int  `json:"durationMinutes"`
	MinimumMinutes  int  `json:"minimumMinutes"`
}

// ValidateTime handles POST /api/appointments/validate-time. It never calls
// the backend.
func (h *AppointmentsHandler) ValidateTime(w http.ResponseWriter, r *http.Request) {
	var req timeRangeRequest
	if _, err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, "validate_time", err)
		return
	}
	duration, _ := clinictime.DurationMinutes(req.StartTime, req.EndTime)
	writeData(w, http.StatusOK, timeRangeResult{
		Valid:           clinictime.ValidateTimeRange(req.StartTime, req.EndTime, h.minMinutes),
		DurationMinutes: duration,
		MinimumMinutes:  h.minMinutes,
	})
}
