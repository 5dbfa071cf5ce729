package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// ServicesHandler serves the treatment catalog under /api/services.
type ServicesHandler struct {
	base
	backend records.ServiceBackend
}

func NewServicesHandler(backend records.ServiceBackend, deps Deps) *ServicesHandler {
	return &ServicesHandler{base: newBase(deps, "services_handler"), backend: backend}
}

func (h *ServicesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/categories", h.Categories)
	r.Get("/by-category/{category}", h.ByCategory)
	r.Get("/stats/summary", h.Stats)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/restore", h.Restore)
	return r
}

func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := records.ServiceQuery{
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
		Search:   q.Get("search"),
		IsActive: records.ActiveFilter(q.Get("isActive")),
	}
	if raw := q.Get("category"); raw != "" && raw != "all" {
		category, err := taxonomy.ParseCategory(raw)
		if err != nil {
			h.fail(w, r, "list_services", records.FieldErrors{"category": "La categoría no es válida"})
			return
		}
		query.Category = category
	}
	page, err := h.backend.ListServices(r.Context(), creds(r), query)
	if err != nil {
		h.fail(w, r, "list_services", err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (h *ServicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.backend.GetService(r.Context(), creds(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_service", err)
		return
	}
	writeData(w, http.StatusOK, svc)
}

func (h *ServicesHandler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.backend.ServiceCategories(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "service_categories", err)
		return
	}
	writeData(w, http.StatusOK, counts)
}

func (h *ServicesHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := taxonomy.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.fail(w, r, "services_by_category", records.FieldErrors{"category": "La categoría no es válida"})
		return
	}
	services, err := h.backend.ServicesByCategory(r.Context(), creds(r), category)
	if err != nil {
		h.fail(w, r, "services_by_category", err)
		return
	}
	writeData(w, http.StatusOK, services)
}

func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in records.ServiceInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "create_service", err)
		return
	}
	if err := in.Validate(); err != nil {
		h.record(r, audit.ActionCreate, "service", "", body, err)
		h.fail(w, r, "create_service", err)
		return
	}
	svc, err := h.backend.CreateService(r.Context(), creds(r), in)
	h.record(r, audit.ActionCreate, "service", svc.ID, body, err)
	if err != nil {
		h.fail(w, r, "create_service", err)
		return
	}
	writeData(w, http.StatusCreated, svc)
}

func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in records.ServiceInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "update_service", err)
		return
	}
	if err := in.Validate(); err != nil {
		h.record(r, audit.ActionUpdate, "service", id, body, err)
		h.fail(w, r, "update_service", err)
		return
	}
	svc, err := h.backend.UpdateService(r.Context(), creds(r), id, in)
	h.record(r, audit.ActionUpdate, "service", id, body, err)
	if err != nil {
		h.fail(w, r, "update_service", err)
		return
	}
	writeData(w, http.StatusOK, svc)
}

func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.backend.DeleteService(r.Context(), creds(r), id)
	h.record(r, audit.ActionDelete, "service", id, nil, err)
	if err != nil {
		h.fail(w, r, "delete_service", err)
		return
	}
	writeMessage(w, http.StatusOK, "Servicio desactivado exitosamente")
}

func (h *ServicesHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	svc, err := h.backend.RestoreService(r.Context(), creds(r), id)
	h.record(r, audit.ActionRestore, "service", id, nil, err)
	if err != nil {
		h.fail(w, r, "restore_service", err)
		return
	}
	writeData(w, http.StatusOK, svc)
}

func (h *ServicesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.ServiceStats(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "service_stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
