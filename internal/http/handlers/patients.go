package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/events"
	"github.com/wolfman30/docsmile-suite/internal/records"
)

// PatientsHandler serves /api/patients.
type PatientsHandler struct {
	base
	backend records.PatientBackend
}

func NewPatientsHandler(backend records.PatientBackend, deps Deps) *PatientsHandler {
	return &PatientsHandler{base: newBase(deps, "patients_handler"), backend: backend}
}

func (h *PatientsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats/summary", h.Stats)
	r.Get("/by-dni/{dni}", h.GetByDNI)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/restore", h.Restore)
	return r
}

// List handles GET /api/patients?page&limit&search&isActive.
func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.backend.ListPatients(r.Context(), creds(r), records.PatientQuery{
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
		Search:   q.Get("search"),
		IsActive: records.ActiveFilter(q.Get("isActive")),
	})
	if err != nil {
		h.fail(w, r, "list_patients", err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (h *PatientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	patient, err := h.backend.GetPatient(r.Context(), creds(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_patient", err)
		return
	}
	writeData(w, http.StatusOK, patient)
}

func (h *PatientsHandler) GetByDNI(w http.ResponseWriter, r *http.Request) {
	dni := chi.URLParam(r, "dni")
	if !records.ValidDNI(dni) {
		h.fail(w, r, "get_patient_by_dni", records.FieldErrors{"dni": "El DNI debe tener entre 8 y 12 dígitos"})
		return
	}
	patient, err := h.backend.GetPatientByDNI(r.Context(), creds(r), dni)
	if err != nil {
		h.fail(w, r, "get_patient_by_dni", err)
		return
	}
	writeData(w, http.StatusOK, patient)
}

func (h *PatientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in records.PatientInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "create_patient", err)
		return
	}
	if err := in.Validate(h.clock); err != nil {
		h.record(r, audit.ActionCreate, "patient", "", body, err)
		h.fail(w, r, "create_patient", err)
		return
	}

	patient, err := h.backend.CreatePatient(r.Context(), creds(r), in)
	h.record(r, audit.ActionCreate, "patient", patient.ID, body, err)
	if err != nil {
		h.fail(w, r, "create_patient", err)
		return
	}
	h.publish(r, "patient", patient.ID, events.PatientRegisteredV1{
		PatientID:    patient.ID,
		DNI:          patient.DNI,
		FullName:     patient.FullName,
		ActorID:      actor(r.Context()).ID,
		RegisteredAt: time.Now().UTC(),
	})
	writeData(w, http.StatusCreated, patient)
}

func (h *PatientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in records.PatientInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "update_patient", err)
		return
	}
	if err := in.Validate(h.clock); err != nil {
		h.record(r, audit.ActionUpdate, "patient", id, body, err)
		h.fail(w, r, "update_patient", err)
		return
	}

	patient, err := h.backend.UpdatePatient(r.Context(), creds(r), id, in)
	h.record(r, audit.ActionUpdate, "patient", id, body, err)
	if err != nil {
		h.fail(w, r, "update_patient", err)
		return
	}
	writeData(w, http.StatusOK, patient)
}

// Delete deactivates the patient; the record is kept and can be restored.
func (h *PatientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.backend.DeletePatient(r.Context(), creds(r), id)
	h.record(r, audit.ActionDelete, "patient", id, nil, err)
	if err != nil {
		h.fail(w, r, "delete_patient", err)
		return
	}
	h.publish(r, "patient", id, events.PatientDeactivatedV1{
		PatientID:     id,
		ActorID:       actor(r.Context()).ID,
		DeactivatedAt: time.Now().UTC(),
	})
	writeMessage(w, http.StatusOK, "Paciente desactivado exitosamente")
}

func (h *PatientsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	patient, err := h.backend.RestorePatient(r.Context(), creds(r), id)
	h.record(r, audit.ActionRestore, "patient", id, nil, err)
	if err != nil {
		h.fail(w, r, "restore_patient", err)
		return
	}
	writeData(w, http.StatusOK, patient)
}

func (h *PatientsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.PatientStats(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "patient_stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
