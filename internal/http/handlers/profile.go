package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/records"
)

// ProfileHandler serves the signed-in clinician's profile and the clinic
// settings under /api/profile.
type ProfileHandler struct {
	base
	backend records.ProfileBackend
}

func NewProfileHandler(backend records.ProfileBackend, deps Deps) *ProfileHandler {
	return &ProfileHandler{base: newBase(deps, "profile_handler"), backend: backend}
}

func (h *ProfileHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Get("/completeness", h.Completeness)
	r.Put("/security-question", h.UpdateSecurityQuestion)
	r.Get("/clinic-settings", h.ClinicSettings)
	r.Put("/clinic-settings", h.UpdateClinicSettings)
	r.Get("/activity-stats", h.ActivityStats)
	return r
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.backend.GetProfile(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "get_profile", err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u records.ProfileUpdate
	body, err := decodeBody(r, &u)
	if err != nil {
		h.badBody(w, r, "update_profile", err)
		return
	}
	if err := u.Validate(); err != nil {
		h.record(r, audit.ActionUpdate, "profile", actor(r.Context()).ID, body, err)
		h.fail(w, r, "update_profile", err)
		return
	}
	user, err := h.backend.UpdateProfile(r.Context(), creds(r), u)
	h.record(r, audit.ActionUpdate, "profile", user.ID, body, err)
	if err != nil {
		h.fail(w, r, "update_profile", err)
		return
	}
	writeData(w, http.StatusOK, user)
}

type completeness struct {
	Percent int      `json:"percent"`
	Missing []string `json:"missing"`
}

func (h *ProfileHandler) Completeness(w http.ResponseWriter, r *http.Request) {
	user, err := h.backend.GetProfile(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "profile_completeness", err)
		return
	}
	percent, missing := user.Completeness()
	writeData(w, http.StatusOK, completeness{Percent: percent, Missing: missing})
}

func (h *ProfileHandler) UpdateSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	var u records.SecurityQuestionUpdate
	if _, err := decodeBody(r, &u); err != nil {
		h.badBody(w, r, "update_security_question", err)
		return
	}
	// Only the field names are audited; the answer never leaves this handler.
	fields := []byte(`{"question":"","answer":""}`)
	if err := u.Validate(); err != nil {
		h.record(r, audit.ActionUpdate, "security_question", actor(r.Context()).ID, fields, err)
		h.fail(w, r, "update_security_question", err)
		return
	}
	err := h.backend.UpdateSecurityQuestion(r.Context(), creds(r), u)
	h.record(r, audit.ActionUpdate, "security_question", actor(r.Context()).ID, fields, err)
	if err != nil {
		h.fail(w, r, "update_security_question", err)
		return
	}
	writeMessage(w, http.StatusOK, "Pregunta de seguridad actualizada")
}

func (h *ProfileHandler) ClinicSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.backend.ClinicSettings(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "clinic_settings", err)
		return
	}
	writeData(w, http.StatusOK, settings)
}

func (h *ProfileHandler) UpdateClinicSettings(w http.ResponseWriter, r *http.Request) {
	var u records.ClinicSettingsUpdate
	body, err := decodeBody(r, &u)
	if err != nil {
		h.badBody(w, r, "update_clinic_settings", err)
		return
	}
	if err := u.Validate(); err != nil {
		h.record(r, audit.ActionUpdate, "clinic_settings", "", body, err)
		h.fail(w, r, "update_clinic_settings", err)
		return
	}
	settings, err := h.backend.UpdateClinicSettings(r.Context(), creds(r), u)
	h.record(r, audit.ActionUpdate, "clinic_settings", "", body, err)
	if err != nil {
		h.fail(w, r, "update_clinic_settings", err)
		return
	}
	writeData(w, http.StatusOK, settings)
}

func (h *ProfileHandler) ActivityStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.ActivityStats(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "activity_stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
