package rest

import (
	"context"
	"net/http"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

func (c *Client) normalize(patients []records.Patient) {
	for i := range patients {
		patients[i].Normalize(c.clock)
	}
}

func (c *Client) ListPatients(ctx context.Context, creds records.Credentials, q records.PatientQuery) (records.PatientPage, error) {
	page, err := get[records.PatientPage](ctx, c, creds, "list_patients", "/patients", q.Values(), "Error al obtener pacientes")
	if err != nil {
		return records.PatientPage{}, err
	}
	c.normalize(page.Patients)
	return page, nil
}

func (c *Client) GetPatient(ctx context.Context, creds records.Credentials, id string) (records.Patient, error) {
	p, err := get[records.Patient](ctx, c, creds, "get_patient", "/patients/"+segment(id), nil, "Error al obtener paciente")
	if err != nil {
		return records.Patient{}, err
	}
	p.Normalize(c.clock)
	return p, nil
}

func (c *Client) GetPatientByDNI(ctx context.Context, creds records.Credentials, dni string) (records.Patient, error) {
	p, err := get[records.Patient](ctx, c, creds, "get_patient_by_dni", "/patients/by-dni/"+segment(dni), nil, "Paciente no encontrado")
	if err != nil {
		return records.Patient{}, err
	}
	p.Normalize(c.clock)
	return p, nil
}

func (c *Client) CreatePatient(ctx context.Context, creds records.Credentials, in records.PatientInput) (records.Patient, error) {
	p, err := send[records.Patient](ctx, c, creds, "create_patient", http.MethodPost, "/patients", in, "Error al crear paciente")
	if err != nil {
		return records.Patient{}, err
	}
	p.Normalize(c.clock)
	return p, nil
}

func (c *Client) UpdatePatient(ctx context.Context, creds records.Credentials, id string, in records.PatientInput) (records.Patient, error) {
	p, err := send[records.Patient](ctx, c, creds, "update_patient", http.MethodPut, "/patients/"+segment(id), in, "Error al actualizar paciente")
	if err != nil {
		return records.Patient{}, err
	}
	p.Normalize(c.clock)
	return p, nil
}

func (c *Client) DeletePatient(ctx context.Context, creds records.Credentials, id string) error {
	return c.exec(ctx, creds, "delete_patient", http.MethodDelete, "/patients/"+segment(id), nil, "Error al eliminar paciente")
}

func (c *Client) RestorePatient(ctx context.Context, creds records.Credentials, id string) (records.Patient, error) {
	p, err := send[records.Patient](ctx, c, creds, "restore_patient", http.MethodPatch, "/patients/"+segment(id)+"/restore", nil, "Error al restaurar paciente")
	if err != nil {
		return records.Patient{}, err
	}
	p.Normalize(c.clock)
	return p, nil
}

func (c *Client) PatientStats(ctx context.Context, creds records.Credentials) (records.PatientStats, error) {
	return get[records.PatientStats](ctx, c, creds, "patient_stats", "/patients/stats/summary", nil, "Error al obtener estadísticas")
}
