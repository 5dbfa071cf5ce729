package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/session"
)

type fakeAuditLog struct {
	filter  audit.Filter
	entries []audit.Entry
	err     error
}

func (f *fakeAuditLog) Query(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	f.filter = filter
	return f.entries, f.err
}

func auditRequest(t *testing.T, h *AuditHandler, role, query string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/api/audit", h.Routes())
	req := httptest.NewRequest(http.MethodGet, "/api/audit"+query, nil)
	sess := session.Session{ID: "s1", UpstreamToken: "t", User: records.User{ID: "1", Username: "admin", Role: role}}
	req = req.WithContext(session.NewContext(req.Context(), sess))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newAuditHandler(t *testing.T, log AuditLog) *AuditHandler {
	t.Helper()
	loc, err := time.LoadLocation(clinictime.DefaultZone)
	require.NoError(t, err)
	return NewAuditHandler(log, Deps{Clock: clinictime.NewFixed(loc, demoNow)})
}

func TestAuditListRequiresAdmin(t *testing.T) {
	rec := auditRequest(t, newAuditHandler(t, &fakeAuditLog{}), "dentist", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuditListDisabled(t *testing.T) {
	rec := auditRequest(t, newAuditHandler(t, nil), adminRole, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuditListFilters(t *testing.T) {
	log := &fakeAuditLog{entries: []audit.Entry{{ID: "e1", Action: audit.Action("update"), Resource: "patient", ResourceID: "p1"}}}
	h := newAuditHandler(t, log)

	rec := auditRequest(t, h, adminRole, "?resource=patient&resourceId=p1&since=2024-07-25&until=2024-07-25&limit=1000")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool          `json:"success"`
		Data    []audit.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "e1", resp.Data[0].ID)

	assert.Equal(t, "patient", log.filter.Resource)
	assert.Equal(t, "p1", log.filter.ResourceID)
	assert.Equal(t, maxAuditLimit, log.filter.Limit)
	// 2024-07-25 in Lima is 05:00Z to 05:00Z the next day.
	assert.Equal(t, time.Date(2024, 7, 25, 5, 0, 0, 0, time.UTC), log.filter.Since.UTC())
	assert.Equal(t, time.Date(2024, 7, 26, 4, 59, 59, 999999999, time.UTC), log.filter.Until.UTC())
}

func TestAuditListBadWindowAndFailure(t *testing.T) {
	rec := auditRequest(t, newAuditHandler(t, &fakeAuditLog{}), adminRole, "?since=ayer")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = auditRequest(t, newAuditHandler(t, &fakeAuditLog{err: errors.New("db down")}), adminRole, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAuditListDefaultsLimit(t *testing.T) {
	log := &fakeAuditLog{}
	rec := auditRequest(t, newAuditHandler(t, log), adminRole, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultAuditLimit, log.filter.Limit)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}
