package static

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

const defaultUpcomingLimit = 5

// reprice recomputes the bill of a: applied lines when there are any,
// otherwise the booked services at catalog price, less the general discount.
func (s *Store) reprice(a *records.Appointment) {
	var total float64
	if len(a.AppliedServices) > 0 {
		for _, line := range a.AppliedServices {
			total += line.Total
		}
	} else {
		for _, line := range a.Services {
			if svc, ok := s.services[line.Service.ID]; ok {
				total += svc.Price * float64(line.Quantity)
			}
		}
	}
	total = billing.RoundCents(total)
	final := billing.ComputeTotals([]billing.LineItem{{UnitPrice: total, Quantity: 1}}, a.Payment.Discount, billing.DiscountPercentage)
	a.Payment.TotalAmount = total
	a.Payment.FinalAmount = billing.RoundCents(final.Total)
}

func (s *Store) populate(ref records.ServiceRef) records.ServiceRef {
	if svc, ok := s.services[ref.ID]; ok {
		return records.Populated(*svc)
	}
	return records.RefTo(ref.ID)
}

// view returns a copy of a with patient and catalog references populated.
func (s *Store) view(a *records.Appointment) records.Appointment {
	out := *a
	if a.Patient != nil {
		if p, ok := s.patients[a.Patient.ID]; ok {
			pv := s.patientView(p)
			out.Patient = &pv
		}
	}
	if a.Dentist != nil {
		d := *a.Dentist
		out.Dentist = &d
	}
	out.Services = make([]records.AppointmentLine, len(a.Services))
	for i, line := range a.Services {
		out.Services[i] = records.AppointmentLine{Service: s.populate(line.Service), Quantity: line.Quantity}
	}
	if len(a.AppliedServices) > 0 {
		out.AppliedServices = make([]records.AppliedLine, len(a.AppliedServices))
		for i, line := range a.AppliedServices {
			line.Service = s.populate(line.Service)
			out.AppliedServices[i] = line
		}
	}
	return out
}

// sortedAppointments returns all appointments ordered by day then start time.
func (s *Store) sortedAppointments() []*records.Appointment {
	out := make([]*records.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) dayOf(a *records.Appointment) string {
	day, err := s.clock.CalendarDay(a.Date)
	if err != nil {
		return a.Date
	}
	return day
}

func (s *Store) AppointmentDashboard(ctx context.Context, creds records.Credentials, q records.DashboardQuery) (records.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.Dashboard{}, err
	}

	day := s.clock.Today()
	if q.Date != "" {
		d, err := s.clock.CalendarDay(q.Date)
		if err != nil {
			return records.Dashboard{}, records.FieldErrors{"date": "La fecha no es válida"}
		}
		day = d
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}

	dash := records.Dashboard{TodayAppointments: []records.Appointment{}, UpcomingAppointments: []records.Appointment{}}
	for _, a := range s.sortedAppointments() {
		d := s.dayOf(a)
		switch {
		case d == day:
			dash.Stats.Total++
			switch {
			case a.Status == taxonomy.StatusCompleted:
				dash.Stats.Completed++
			case a.Status == taxonomy.StatusCancelled:
				dash.Stats.Cancelled++
			case a.Status.Open():
				dash.Stats.Pending++
			}
			if q.Status == "" || a.Status == q.Status {
				dash.TodayAppointments = append(dash.TodayAppointments, s.view(a))
			}
		case d > day && a.Status.Open() && len(dash.UpcomingAppointments) < limit:
			dash.UpcomingAppointments = append(dash.UpcomingAppointments, s.view(a))
		}
	}
	return dash, nil
}

func (s *Store) ListAppointments(ctx context.Context, creds records.Credentials, q records.AppointmentQuery) (records.AppointmentPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.AppointmentPage{}, err
	}

	matched := []records.Appointment{}
	for _, a := range s.sortedAppointments() {
		d := s.dayOf(a)
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.Date != "" && d != q.Date {
			continue
		}
		if q.DateFrom != "" && d < q.DateFrom {
			continue
		}
		if q.DateTo != "" && d > q.DateTo {
			continue
		}
		v := s.view(a)
		if q.PatientDNI != "" && (v.Patient == nil || !strings.Contains(v.Patient.DNI, q.PatientDNI)) {
			continue
		}
		matched = append(matched, v)
	}
	page, pagination := records.Paginate(matched, q.Page, q.Limit)
	return records.AppointmentPage{Appointments: page, Pagination: pagination}, nil
}

func (s *Store) GetAppointment(ctx context.Context, creds records.Credentials, id string) (records.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.Appointment{}, err
	}
	a, ok := s.appointments[id]
	if !ok {
		return records.Appointment{}, notFound("appointment", id)
	}
	return s.view(a), nil
}

func (s *Store) AppointmentsByPatientDNI(ctx context.Context, creds records.Credentials, dni string) (records.PatientAppointments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.PatientAppointments{}, err
	}
	p := s.patientByDNI(dni)
	if p == nil {
		return records.PatientAppointments{}, notFound("patient dni", dni)
	}
	out := records.PatientAppointments{Patient: s.patientView(p), Appointments: []records.Appointment{}}
	for _, a := range s.sortedAppointments() {
		if a.Patient != nil && a.Patient.ID == p.ID {
			out.Appointments = append(out.Appointments, s.view(a))
		}
	}
	return out, nil
}

// lines converts booked form lines, rejecting unknown services. Callers hold s.mu.
// lines resolves booked services. With requireActive set, deactivated
// services are rejected the same way records.CheckBookable rejects them.
func (s *Store) lines(in []records.LineInput, requireActive bool) ([]records.AppointmentLine, error) {
	errs := records.FieldErrors{}
	out := make([]records.AppointmentLine, 0, len(in))
	for i, line := range in {
		field := fmt.Sprintf("services[%d].service", i)
		svc, ok := s.services[line.Service]
		if !ok {
			errs.Add(field, "El servicio no existe")
			continue
		}
		if requireActive && !svc.IsActive {
			errs.Add(field, fmt.Sprintf("El servicio %s no está activo", svc.Name))
			continue
		}
		out = append(out, records.AppointmentLine{Service: records.RefTo(line.Service), Quantity: line.Quantity})
	}
	return out, errs.Err()
}

func (s *Store) CreateAppointment(ctx context.Context, creds records.Credentials, in records.AppointmentInput) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Appointment{}, err
	}
	if _, ok := s.patients[in.Patient]; !ok {
		return records.Appointment{}, records.FieldErrors{"patient": "El paciente no existe"}
	}
	lines, err := s.lines(in.Services, true)
	if err != nil {
		return records.Appointment{}, err
	}

	now := s.timestamp()
	dentist := clinicDentist
	a := &records.Appointment{
		ID:             newID(),
		Patient:        &records.Patient{ID: in.Patient},
		Dentist:        &dentist,
		Services:       lines,
		Date:           in.Date,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		Status:         in.Status,
		Type:           in.Type,
		Notes:          in.Notes,
		ReasonForVisit: in.ReasonForVisit,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if day, err := s.clock.CalendarDay(in.Date); err == nil {
		a.Date = day
	}
	if a.Status == "" {
		a.Status = taxonomy.StatusScheduled
	}
	if a.Type == "" {
		a.Type = taxonomy.TypeConsultation
	}
	s.reprice(a)
	s.appointments[a.ID] = a
	s.logger.Debug("appointment created", "appointment_id", a.ID, "date", a.Date)
	return s.view(a), nil
}

func (s *Store) UpdateAppointment(ctx context.Context, creds records.Credentials, id string, in records.AppointmentInput) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Appointment{}, err
	}
	a, ok := s.appointments[id]
	if !ok {
		return records.Appointment{}, notFound("appointment", id)
	}
	if _, ok := s.patients[in.Patient]; !ok {
		return records.Appointment{}, records.FieldErrors{"patient": "El paciente no existe"}
	}
	lines, err := s.lines(in.Services, records.ServicesChanged(a.Services, in.Services))
	if err != nil {
		return records.Appointment{}, err
	}

	a.Patient = &records.Patient{ID: in.Patient}
	a.Services = lines
	a.Date = in.Date
	if day, err := s.clock.CalendarDay(in.Date); err == nil {
		a.Date = day
	}
	a.StartTime = in.StartTime
	a.EndTime = in.EndTime
	if in.Status != "" {
		a.Status = in.Status
	}
	if in.Type != "" {
		a.Type = in.Type
	}
	a.Notes = in.Notes
	a.ReasonForVisit = in.ReasonForVisit
	a.UpdatedAt = s.timestamp()
	if !a.Payment.IsPaid {
		s.reprice(a)
	}
	return s.view(a), nil
}

func (s *Store) DeleteAppointment(ctx context.Context, creds records.Credentials, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return err
	}
	if _, ok := s.appointments[id]; !ok {
		return notFound("appointment", id)
	}
	delete(s.appointments, id)
	return nil
}

func (s *Store) AppointmentStats(ctx context.Context, creds records.Credentials) (records.AppointmentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.AppointmentStats{}, err
	}

	today := s.clock.Today()
	weekEnd, err := clinictime.AddDays(today, 7)
	if err != nil {
		return records.AppointmentStats{}, err
	}
	month := today[:7]

	var stats records.AppointmentStats
	for _, a := range s.appointments {
		d := s.dayOf(a)
		if d == today {
			stats.Today.Total++
			if a.Status == taxonomy.StatusCompleted {
				stats.Today.Completed++
			} else if a.Status.Open() {
				stats.Today.Pending++
			}
		}
		if d > today && d <= weekEnd {
			stats.UpcomingWeek++
		}
		if strings.HasPrefix(d, month) {
			stats.TotalMonth++
		}
	}
	return stats, nil
}
