package records

import (
	"net/url"

	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

type Dentist struct {
	ID       string `json:"_id,omitempty"`
	FullName string `json:"fullName"`
}

// AppointmentLine is one booked catalog service.
type AppointmentLine struct {
	Service  ServiceRef `json:"service"`
	Quantity int        `json:"quantity"`
}

// AppliedLine is a service actually performed during an appointment.
type AppliedLine struct {
	Service   ServiceRef `json:"service"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
	Discount  float64    `json:"discount"`
	Total     float64    `json:"total"`
	Notes     string     `json:"notes,omitempty"`
	AppliedAt string     `json:"appliedAt,omitempty"`
}

type PaymentStatus struct {
	TotalAmount   float64 `json:"totalAmount"`
	Discount      float64 `json:"discount"`
	FinalAmount   float64 `json:"finalAmount"`
	IsPaid        bool    `json:"isPaid"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	PaidAt        string  `json:"paidAt,omitempty"`
	Receipt       string  `json:"receipt,omitempty"`
}

type Appointment struct {
	ID              string                     `json:"_id"`
	Patient         *Patient                   `json:"patient,omitempty"`
	Dentist         *Dentist                   `json:"dentist,omitempty"`
	Services        []AppointmentLine          `json:"services"`
	Date            string                     `json:"date"`
	StartTime       string                     `json:"startTime"`
	EndTime         string                     `json:"endTime"`
	Status          taxonomy.AppointmentStatus `json:"status"`
	Type            taxonomy.AppointmentType   `json:"type"`
	Notes           string                     `json:"notes,omitempty"`
	ReasonForVisit  string                     `json:"reasonForVisit,omitempty"`
	AppliedServices []AppliedLine              `json:"appliedServices,omitempty"`
	Payment         PaymentStatus              `json:"payment"`
	CreatedAt       string                     `json:"createdAt,omitempty"`
	UpdatedAt       string                     `json:"updatedAt,omitempty"`
}

// LineInput is a booked service reference in a form.
type LineInput struct {
	Service  string `json:"service"`
	Quantity int    `json:"quantity"`
}

// AppointmentInput is the body of an appointment create or update.
type AppointmentInput struct {
	Patient        string                     `json:"patient"`
	Services       []LineInput                `json:"services"`
	Date           string                     `json:"date"`
	StartTime      string                     `json:"startTime"`
	EndTime        string                     `json:"endTime"`
	Type           taxonomy.AppointmentType   `json:"type,omitempty"`
	Status         taxonomy.AppointmentStatus `json:"status,omitempty"`
	ReasonForVisit string                     `json:"reasonForVisit,omitempty"`
	Notes          string                     `json:"notes,omitempty"`
}

// Validate checks the appointment form. minMinutes is the shortest slot the
// clinic books.
func (in AppointmentInput) Validate(clock *clinictime.Clock, minMinutes int) error {
	errs := FieldErrors{}
	requireField(errs, "patient", in.Patient, "El paciente es requerido")
	if blank(in.Date) {
		errs.Add("date", "La fecha es requerida")
	} else if _, err := clock.CalendarDay(in.Date); err != nil {
		errs.Add("date", "La fecha no es válida")
	} else if clock.IsPastDate(in.Date) {
		errs.Add("date", "La fecha no puede ser en el pasado")
	}
	requireField(errs, "startTime", in.StartTime, "La hora de inicio es requerida")
	requireField(errs, "endTime", in.EndTime, "La hora de fin es requerida")
	if !blank(in.StartTime) && !blank(in.EndTime) && !clinictime.ValidateTimeRange(in.StartTime, in.EndTime, minMinutes) {
		errs.Add("endTime", "La hora de fin debe ser posterior a la de inicio con una duración mínima")
	}
	if len(in.Services) == 0 {
		errs.Add("services", "Debe seleccionar al menos un servicio")
	}
	for i, line := range in.Services {
		if blank(line.Service) {
			errs.Add(indexed("services", i, "service"), "El servicio es requerido")
		}
		if line.Quantity < 1 {
			errs.Add(indexed("services", i, "quantity"), "La cantidad debe ser al menos 1")
		}
	}
	if in.Type != "" && !in.Type.Valid() {
		errs.Add("type", "El tipo de cita no es válido")
	}
	if in.Status != "" && !in.Status.Valid() {
		errs.Add("status", "El estado no es válido")
	}
	return errs.Err()
}

// ServiceIDs lists the referenced catalog ids in order.
func (in AppointmentInput) ServiceIDs() []string {
	ids := make([]string, 0, len(in.Services))
	for _, line := range in.Services {
		ids = append(ids, line.Service)
	}
	return ids
}

type AppointmentQuery struct {
	Page       int
	Limit      int
	Status     taxonomy.AppointmentStatus
	Date       string
	PatientDNI string
	DateFrom   string
	DateTo     string
}

func (q AppointmentQuery) Values() url.Values {
	v := pageValues(q.Page, q.Limit)
	setIf(v, "status", string(q.Status))
	setIf(v, "date", q.Date)
	setIf(v, "patientDni", q.PatientDNI)
	setIf(v, "dateFrom", q.DateFrom)
	setIf(v, "dateTo", q.DateTo)
	return v
}

type AppointmentPage struct {
	Appointments []Appointment `json:"appointments"`
	Pagination   Pagination    `json:"pagination"`
}

type DashboardQuery struct {
	Date   string
	Status taxonomy.AppointmentStatus
	Limit  int
}

func (q DashboardQuery) Values() url.Values {
	v := pageValues(0, q.Limit)
	setIf(v, "date", q.Date)
	setIf(v, "status", string(q.Status))
	return v
}

type DashboardStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}

type Dashboard struct {
	TodayAppointments    []Appointment  `json:"todayAppointments"`
	UpcomingAppointments []Appointment  `json:"upcomingAppointments"`
	Stats                DashboardStats `json:"stats"`
}

type PatientAppointments struct {
	Patient      Patient       `json:"patient"`
	Appointments []Appointment `json:"appointments"`
}

type TodayStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type AppointmentStats struct {
	Today        TodayStats `json:"today"`
	UpcomingWeek int        `json:"upcomingWeek"`
	TotalMonth   int        `json:"totalMonth"`
}

func setIf(v url.Values, key, value string) {
	if value != "" && value != "all" {
		v.Set(key, value)
	}
}
