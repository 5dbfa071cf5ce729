package records

import (
	"net/url"

	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// Slot shown for treatment records whose source row carries no times.
const (
	defaultSlotStart = "09:00"
	defaultSlotEnd   = "10:00"
)

type AppointmentBrief struct {
	ID        string                   `json:"_id"`
	Patient   *Patient                 `json:"patient"`
	Date      string                   `json:"date"`
	StartTime string                   `json:"startTime"`
	EndTime   string                   `json:"endTime"`
	Type      taxonomy.AppointmentType `json:"type"`
}

type TreatmentLine struct {
	Service   ServiceRef `json:"service"`
	Quantity  int        `json:"quantity"`
	Notes     string     `json:"notes"`
	Completed bool       `json:"completed"`
}

// AppliedService is the treatment record view of one appointment.
type AppliedService struct {
	ID          string                 `json:"_id"`
	Appointment AppointmentBrief       `json:"appointment"`
	Services    []TreatmentLine        `json:"services"`
	Status      taxonomy.AppliedStatus `json:"status"`
	TotalAmount float64                `json:"totalAmount"`
	Notes       string                 `json:"notes"`
	CreatedAt   string                 `json:"createdAt"`
	UpdatedAt   string                 `json:"updatedAt"`
}

// AppliedRow is one row of the upstream applied-services listing.
type AppliedRow struct {
	AppointmentID   string                     `json:"appointmentId"`
	Patient         *Patient                   `json:"patient"`
	Date            string                     `json:"date"`
	StartTime       string                     `json:"startTime,omitempty"`
	EndTime         string                     `json:"endTime,omitempty"`
	Type            taxonomy.AppointmentType   `json:"type"`
	Status          taxonomy.AppointmentStatus `json:"status"`
	AppliedServices []AppliedLine              `json:"appliedServices"`
	TotalAmount     float64                    `json:"totalAmount"`
	FinalAmount     float64                    `json:"finalAmount"`
	Notes           string                     `json:"notes,omitempty"`
}

// Record converts the row into a treatment record stamped with at. Rows
// without a patient cannot be shown and report false.
func (r AppliedRow) Record(at string) (AppliedService, bool) {
	if r.Patient == nil {
		return AppliedService{}, false
	}
	patient := *r.Patient
	patient.FullName = FullNameOf(patient.FirstName, patient.LastName)

	start, end := r.StartTime, r.EndTime
	if start == "" || end == "" {
		start, end = defaultSlotStart, defaultSlotEnd
	}

	lines := make([]TreatmentLine, 0, len(r.AppliedServices))
	for _, applied := range r.AppliedServices {
		lines = append(lines, TreatmentLine{
			Service:   applied.Service,
			Quantity:  applied.Quantity,
			Notes:     applied.Notes,
			Completed: true,
		})
	}

	total := r.FinalAmount
	if total == 0 {
		total = r.TotalAmount
	}

	return AppliedService{
		ID: r.AppointmentID,
		Appointment: AppointmentBrief{
			ID:        r.AppointmentID,
			Patient:   &patient,
			Date:      r.Date,
			StartTime: start,
			EndTime:   end,
			Type:      r.Type,
		},
		Services:    lines,
		Status:      taxonomy.AppliedStatusFor(r.Status),
		TotalAmount: total,
		Notes:       r.Notes,
		CreatedAt:   at,
		UpdatedAt:   at,
	}, true
}

// RecordsFromRows transforms a listing, dropping rows without a patient.
func RecordsFromRows(rows []AppliedRow, at string) []AppliedService {
	out := make([]AppliedService, 0, len(rows))
	for _, row := range rows {
		if rec, ok := row.Record(at); ok {
			out = append(out, rec)
		}
	}
	return out
}

type AppliedQuery struct {
	Page    int
	Limit   int
	Status  string
	Patient string
	Date    string
	Search  string
}

func (q AppliedQuery) Values() url.Values {
	v := pageValues(q.Page, q.Limit)
	setIf(v, "status", q.Status)
	setIf(v, "patient", q.Patient)
	setIf(v, "date", q.Date)
	setIf(v, "search", q.Search)
	return v
}

type AppliedPage struct {
	AppliedServices []AppliedService `json:"appliedServices"`
	Pagination      Pagination       `json:"pagination"`
}

type AppliedStats struct {
	Total           int     `json:"total"`
	Pending         int     `json:"pending"`
	Completed       int     `json:"completed"`
	TodayTreatments int     `json:"todayTreatments"`
	MonthlyRevenue  float64 `json:"monthlyRevenue"`
}

// TreatmentInput is a line of a treatment record form.
type TreatmentInput struct {
	Service   string `json:"service"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
	Completed bool   `json:"completed"`
}

// AppliedServiceInput is the body of a treatment record create.
type AppliedServiceInput struct {
	Appointment string           `json:"appointment"`
	Services    []TreatmentInput `json:"services"`
	Notes       string           `json:"notes,omitempty"`
}

func (in AppliedServiceInput) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "appointment", in.Appointment, "La cita es requerida")
	if len(in.Services) == 0 {
		errs.Add("services", "Debe agregar al menos un servicio")
	}
	for i, line := range in.Services {
		if blank(line.Service) {
			errs.Add(indexed("services", i, "service"), "El servicio es requerido")
		}
		if line.Quantity < 1 {
			errs.Add(indexed("services", i, "quantity"), "La cantidad debe ser al menos 1")
		}
	}
	return errs.Err()
}

// ApplyLines converts the record form into the apply call body.
func (in AppliedServiceInput) ApplyLines() []ApplyLine {
	lines := make([]ApplyLine, 0, len(in.Services))
	for _, s := range in.Services {
		lines = append(lines, ApplyLine{Service: s.Service, Quantity: s.Quantity, Notes: s.Notes})
	}
	return lines
}

// ApplyLine is one service applied to an appointment. Discount is a percentage.
type ApplyLine struct {
	Service  string  `json:"service"`
	Quantity int     `json:"quantity"`
	Discount float64 `json:"discount,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

type ApplyRequest struct {
	AppliedServices []ApplyLine `json:"appliedServices"`
}

func (r ApplyRequest) Validate() error {
	errs := FieldErrors{}
	validateApplyLines(errs, r.AppliedServices)
	return errs.Err()
}

func validateApplyLines(errs FieldErrors, lines []ApplyLine) {
	if len(lines) == 0 {
		errs.Add("appliedServices", "Debe agregar al menos un servicio")
	}
	for i, line := range lines {
		if blank(line.Service) {
			errs.Add(indexed("appliedServices", i, "service"), "El servicio es requerido")
		}
		if line.Quantity < 1 {
			errs.Add(indexed("appliedServices", i, "quantity"), "La cantidad debe ser al menos 1")
		}
		if line.Discount < 0 || line.Discount > 100 {
			errs.Add(indexed("appliedServices", i, "discount"), "El descuento debe estar entre 0 y 100")
		}
	}
}

type ApplyResult struct {
	Appointment     Appointment   `json:"appointment"`
	AppliedServices []AppliedLine `json:"appliedServices"`
	TotalAmount     float64       `json:"totalAmount"`
}

type HistoryRequest struct {
	AppliedServices []ApplyLine `json:"appliedServices"`
	Notes           string      `json:"notes,omitempty"`
}

func (r HistoryRequest) Validate() error {
	errs := FieldErrors{}
	validateApplyLines(errs, r.AppliedServices)
	return errs.Err()
}

type HistoryEntry struct {
	AppointmentID   string                     `json:"appointmentId"`
	Date            string                     `json:"date"`
	Type            taxonomy.AppointmentType   `json:"type"`
	Status          taxonomy.AppointmentStatus `json:"status"`
	Dentist         string                     `json:"dentist,omitempty"`
	AppliedServices []AppliedLine              `json:"appliedServices"`
	TotalAmount     float64                    `json:"totalAmount"`
	FinalAmount     float64                    `json:"finalAmount"`
	Notes           string                     `json:"notes,omitempty"`
}

type HistoryStats struct {
	TotalVisits          int     `json:"totalVisits"`
	TotalServicesApplied int     `json:"totalServicesApplied"`
	TotalAmountSpent     float64 `json:"totalAmountSpent"`
	LastVisit            string  `json:"lastVisit,omitempty"`
}

type PatientHistory struct {
	History []HistoryEntry `json:"history"`
	Stats   HistoryStats   `json:"stats"`
}

// LineUpdate changes one applied line. Nil fields stay as they are.
type LineUpdate struct {
	Quantity *int     `json:"quantity,omitempty"`
	Discount *float64 `json:"discount,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

func (u LineUpdate) Validate() error {
	errs := FieldErrors{}
	if u.Quantity != nil && *u.Quantity < 1 {
		errs.Add("quantity", "La cantidad debe ser al menos 1")
	}
	if u.Discount != nil && (*u.Discount < 0 || *u.Discount > 100) {
		errs.Add("discount", "El descuento debe estar entre 0 y 100")
	}
	return errs.Err()
}
