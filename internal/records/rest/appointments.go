package rest

import (
	"context"
	"net/http"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

func (c *Client) hydrate(appointments []records.Appointment) {
	for i := range appointments {
		if p := appointments[i].Patient; p != nil {
			p.Normalize(c.clock)
		}
	}
}

func (c *Client) AppointmentDashboard(ctx context.Context, creds records.Credentials, q records.DashboardQuery) (records.Dashboard, error) {
	d, err := get[records.Dashboard](ctx, c, creds, "appointment_dashboard", "/appointments/dashboard", q.Values(), "Error al obtener el dashboard")
	if err != nil {
		return records.Dashboard{}, err
	}
	c.hydrate(d.TodayAppointments)
	c.hydrate(d.UpcomingAppointments)
	return d, nil
}

func (c *Client) ListAppointments(ctx context.Context, creds records.Credentials, q records.AppointmentQuery) (records.AppointmentPage, error) {
	page, err := get[records.AppointmentPage](ctx, c, creds, "list_appointments", "/appointments", q.Values(), "Error al obtener citas")
	if err != nil {
		return records.AppointmentPage{}, err
	}
	c.hydrate(page.Appointments)
	return page, nil
}

func (c *Client) GetAppointment(ctx context.Context, creds records.Credentials, id string) (records.Appointment, error) {
	a, err := get[records.Appointment](ctx, c, creds, "get_appointment", "/appointments/"+segment(id), nil, "Error al obtener cita")
	if err != nil {
		return records.Appointment{}, err
	}
	c.hydrate([]records.Appointment{a})
	return a, nil
}

func (c *Client) AppointmentsByPatientDNI(ctx context.Context, creds records.Credentials, dni string) (records.PatientAppointments, error) {
	out, err := get[records.PatientAppointments](ctx, c, creds, "appointments_by_dni", "/appointments/by-patient-dni/"+segment(dni), nil, "Error al obtener citas del paciente")
	if err != nil {
		return records.PatientAppointments{}, err
	}
	out.Patient.Normalize(c.clock)
	c.hydrate(out.Appointments)
	return out, nil
}

// CreateAppointment checks that every booked service exists and is active
// before forwarding.
func (c *Client) CreateAppointment(ctx context.Context, creds records.Credentials, in records.AppointmentInput) (records.Appointment, error) {
	if err := records.CheckBookable(ctx, c, creds, in.ServiceIDs()); err != nil {
		return records.Appointment{}, err
	}
	a, err := send[records.Appointment](ctx, c, creds, "create_appointment", http.MethodPost, "/appointments", in, "Error al crear cita")
	if err != nil {
		return records.Appointment{}, err
	}
	c.hydrate([]records.Appointment{a})
	return a, nil
}

// UpdateAppointment re-checks the booked services only when the set changed.
func (c *Client) UpdateAppointment(ctx context.Context, creds records.Credentials, id string, in records.AppointmentInput) (records.Appointment, error) {
	current, err := c.GetAppointment(ctx, creds, id)
	if err != nil {
		return records.Appointment{}, err
	}
	if records.ServicesChanged(current.Services, in.Services) {
		if err := records.CheckBookable(ctx, c, creds, in.ServiceIDs()); err != nil {
			return records.Appointment{}, err
		}
	}
	a, err := send[records.Appointment](ctx, c, creds, "update_appointment", http.MethodPut, "/appointments/"+segment(id), in, "Error al actualizar cita")
	if err != nil {
		return records.Appointment{}, err
	}
	c.hydrate([]records.Appointment{a})
	return a, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, creds records.Credentials, id string) error {
	return c.exec(ctx, creds, "delete_appointment", http.MethodDelete, "/appointments/"+segment(id), nil, "Error al eliminar cita")
}

func (c *Client) AppointmentStats(ctx context.Context, creds records.Credentials) (records.AppointmentStats, error) {
	return get[records.AppointmentStats](ctx, c, creds, "appointment_stats", "/appointments/stats/summary", nil, "Error al obtener estadísticas")
}
