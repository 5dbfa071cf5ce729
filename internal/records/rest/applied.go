package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

// appliedListing is the upstream shape of the applied-services list.
type appliedListing struct {
	AppliedServices []records.AppliedRow `json:"appliedServices"`
	Pagination      records.Pagination   `json:"pagination"`
}

// ListApplied fetches appointments with applied services and reshapes each
// row into a treatment record. Rows without a patient are dropped.
func (c *Client) ListApplied(ctx context.Context, creds records.Credentials, q records.AppliedQuery) (records.AppliedPage, error) {
	listing, err := get[appliedListing](ctx, c, creds, "list_applied", "/applied-services", q.Values(), "Error al obtener servicios aplicados")
	if err != nil {
		return records.AppliedPage{}, err
	}
	at := c.clock.Now().UTC().Format(time.RFC3339)
	recs := records.RecordsFromRows(listing.AppliedServices, at)
	if dropped := len(listing.AppliedServices) - len(recs); dropped > 0 {
		c.logger.Warn("applied rows without patient dropped", "count", dropped)
	}
	return records.AppliedPage{AppliedServices: recs, Pagination: listing.Pagination}, nil
}

func (c *Client) AppliedStats(ctx context.Context, creds records.Credentials) (records.AppliedStats, error) {
	return get[records.AppliedStats](ctx, c, creds, "applied_stats", "/applied-services/stats", nil, "Error al obtener estadísticas")
}

func (c *Client) ApplyServices(ctx context.Context, creds records.Credentials, appointmentID string, req records.ApplyRequest) (records.ApplyResult, error) {
	return send[records.ApplyResult](ctx, c, creds, "apply_services", http.MethodPost, "/applied-services/appointment/"+segment(appointmentID), req, "Error al aplicar servicios")
}

func (c *Client) PatientHistory(ctx context.Context, creds records.Credentials, patientID string) (records.PatientHistory, error) {
	return get[records.PatientHistory](ctx, c, creds, "patient_history", "/applied-services/patient/"+segment(patientID)+"/history", nil, "Error al obtener historial")
}

func (c *Client) AddToHistory(ctx context.Context, creds records.Credentials, patientID string, req records.HistoryRequest) (records.Appointment, error) {
	a, err := send[records.Appointment](ctx, c, creds, "add_to_history", http.MethodPost, "/applied-services/patient/"+segment(patientID)+"/history", req, "Error al agregar al historial")
	if err != nil {
		return records.Appointment{}, err
	}
	c.hydrate([]records.Appointment{a})
	return a, nil
}

func linePath(appointmentID string, index int) string {
	return "/applied-services/appointment/" + segment(appointmentID) + "/service/" + strconv.Itoa(index)
}

func (c *Client) UpdateAppliedLine(ctx context.Context, creds records.Credentials, appointmentID string, index int, u records.LineUpdate) (records.Appointment, error) {
	a, err := send[records.Appointment](ctx, c, creds, "update_applied_line", http.MethodPut, linePath(appointmentID, index), u, "Error al actualizar servicio aplicado")
	if err != nil {
		return records.Appointment{}, err
	}
	c.hydrate([]records.Appointment{a})
	return a, nil
}

func (c *Client) RemoveAppliedLine(ctx context.Context, creds records.Credentials, appointmentID string, index int) (records.Appointment, error) {
	a, err := send[records.Appointment](ctx, c, creds, "remove_applied_line", http.MethodDelete, linePath(appointmentID, index), nil, "Error al eliminar servicio aplicado")
	if err != nil {
		return records.Appointment{}, err
	}
	c.hydrate([]records.Appointment{a})
	return a, nil
}

// CreateApplied records treatments by applying them to the record's appointment.
func (c *Client) CreateApplied(ctx context.Context, creds records.Credentials, in records.AppliedServiceInput) (records.ApplyResult, error) {
	return c.ApplyServices(ctx, creds, in.Appointment, records.ApplyRequest{AppliedServices: in.ApplyLines()})
}

func (c *Client) UpdateApplied(ctx context.Context, creds records.Credentials, id string, in records.AppliedServiceInput) (records.AppliedService, error) {
	return records.AppliedService{}, records.ErrNotSupported
}

func (c *Client) DeleteApplied(ctx context.Context, creds records.Credentials, id string) error {
	return records.ErrNotSupported
}

// MarkAppliedCompleted has no upstream counterpart; applied rows are already
// completed treatments.
func (c *Client) MarkAppliedCompleted(ctx context.Context, creds records.Credentials, id string) error {
	return nil
}
