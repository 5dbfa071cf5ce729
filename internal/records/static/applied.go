package static

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// treated reports whether a shows up in the treatment views.
func treated(a *records.Appointment) bool {
	return len(a.AppliedServices) > 0 || a.Status == taxonomy.StatusCompleted
}

func (s *Store) appliedRow(a *records.Appointment) records.AppliedRow {
	v := s.view(a)
	return records.AppliedRow{
		AppointmentID:   v.ID,
		Patient:         v.Patient,
		Date:            v.Date,
		StartTime:       v.StartTime,
		EndTime:         v.EndTime,
		Type:            v.Type,
		Status:          v.Status,
		AppliedServices: v.AppliedServices,
		TotalAmount:     v.Payment.TotalAmount,
		FinalAmount:     v.Payment.FinalAmount,
		Notes:           v.Notes,
	}
}

func (s *Store) appliedRecords() []records.AppliedService {
	rows := []records.AppliedRow{}
	sorted := s.sortedAppointments()
	for i := len(sorted) - 1; i >= 0; i-- {
		if treated(sorted[i]) {
			rows = append(rows, s.appliedRow(sorted[i]))
		}
	}
	return records.RecordsFromRows(rows, s.timestamp())
}

func (s *Store) ListApplied(ctx context.Context, creds records.Credentials, q records.AppliedQuery) (records.AppliedPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.AppliedPage{}, err
	}

	search := strings.TrimSpace(q.Search)
	matched := []records.AppliedService{}
	for _, rec := range s.appliedRecords() {
		p := rec.Appointment.Patient
		if q.Status != "" && q.Status != "all" && string(rec.Status) != q.Status {
			continue
		}
		if q.Patient != "" && p.ID != q.Patient {
			continue
		}
		if q.Date != "" && rec.Appointment.Date != q.Date {
			continue
		}
		if search != "" && !containsFold(p.FullName, search) && !strings.Contains(p.DNI, search) {
			continue
		}
		matched = append(matched, rec)
	}
	page, pagination := records.Paginate(matched, q.Page, q.Limit)
	return records.AppliedPage{AppliedServices: page, Pagination: pagination}, nil
}

func (s *Store) AppliedStats(ctx context.Context, creds records.Credentials) (records.AppliedStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.AppliedStats{}, err
	}

	today := s.clock.Today()
	var stats records.AppliedStats
	for _, rec := range s.appliedRecords() {
		stats.Total++
		switch rec.Status {
		case taxonomy.AppliedPending:
			stats.Pending++
		case taxonomy.AppliedCompleted:
			stats.Completed++
		}
		if rec.Appointment.Date == today {
			stats.TodayTreatments++
		}
	}
	month := today[:7]
	for _, a := range s.appointments {
		if a.Payment.IsPaid && strings.HasPrefix(s.dayOf(a), month) {
			stats.MonthlyRevenue += a.Payment.FinalAmount
		}
	}
	stats.MonthlyRevenue = billing.RoundCents(stats.MonthlyRevenue)
	return stats, nil
}

// appliedLines prices form lines at the current catalog price. Callers hold s.mu.
func (s *Store) appliedLines(in []records.ApplyLine) ([]records.AppliedLine, error) {
	errs := records.FieldErrors{}
	now := s.timestamp()
	out := make([]records.AppliedLine, 0, len(in))
	for i, line := range in {
		svc, ok := s.services[line.Service]
		if !ok {
			errs.Add(fmt.Sprintf("appliedServices[%d].service", i), "El servicio no existe")
			continue
		}
		out = append(out, records.AppliedLine{
			Service:   records.RefTo(svc.ID),
			Quantity:  line.Quantity,
			Price:     svc.Price,
			Discount:  line.Discount,
			Total:     billing.RoundCents(billing.AppliedLineTotal(svc.Price, line.Quantity, line.Discount)),
			Notes:     line.Notes,
			AppliedAt: now,
		})
	}
	return out, errs.Err()
}

func (s *Store) ApplyServices(ctx context.Context, creds records.Credentials, appointmentID string, req records.ApplyRequest) (records.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.ApplyResult{}, err
	}
	return s.apply(appointmentID, req.AppliedServices)
}

func (s *Store) apply(appointmentID string, in []records.ApplyLine) (records.ApplyResult, error) {
	a, ok := s.appointments[appointmentID]
	if !ok {
		return records.ApplyResult{}, notFound("appointment", appointmentID)
	}
	if a.Payment.IsPaid {
		return records.ApplyResult{}, records.FieldErrors{"appointment": "La cita ya fue pagada"}
	}
	lines, err := s.appliedLines(in)
	if err != nil {
		return records.ApplyResult{}, err
	}
	a.AppliedServices = append(a.AppliedServices, lines...)
	a.UpdatedAt = s.timestamp()
	s.reprice(a)

	v := s.view(a)
	return records.ApplyResult{
		Appointment:     v,
		AppliedServices: v.AppliedServices,
		TotalAmount:     a.Payment.TotalAmount,
	}, nil
}

func (s *Store) PatientHistory(ctx context.Context, creds records.Credentials, patientID string) (records.PatientHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.PatientHistory{}, err
	}
	if _, ok := s.patients[patientID]; !ok {
		return records.PatientHistory{}, notFound("patient", patientID)
	}

	out := records.PatientHistory{History: []records.HistoryEntry{}}
	sorted := s.sortedAppointments()
	for i := len(sorted) - 1; i >= 0; i-- {
		a := sorted[i]
		if a.Patient == nil || a.Patient.ID != patientID || !treated(a) {
			continue
		}
		v := s.view(a)
		entry := records.HistoryEntry{
			AppointmentID:   v.ID,
			Date:            v.Date,
			Type:            v.Type,
			Status:          v.Status,
			AppliedServices: v.AppliedServices,
			TotalAmount:     v.Payment.TotalAmount,
			FinalAmount:     v.Payment.FinalAmount,
			Notes:           v.Notes,
		}
		if entry.AppliedServices == nil {
			entry.AppliedServices = []records.AppliedLine{}
		}
		if v.Dentist != nil {
			entry.Dentist = v.Dentist.FullName
		}
		out.History = append(out.History, entry)

		out.Stats.TotalVisits++
		out.Stats.TotalServicesApplied += len(v.AppliedServices)
		if v.Payment.IsPaid {
			out.Stats.TotalAmountSpent += v.Payment.FinalAmount
		}
		if v.Date > out.Stats.LastVisit {
			out.Stats.LastVisit = v.Date
		}
	}
	out.Stats.TotalAmountSpent = billing.RoundCents(out.Stats.TotalAmountSpent)
	return out, nil
}

// AddToHistory records a walk-in visit for today with the given treatments.
func (s *Store) AddToHistory(ctx context.Context, creds records.Credentials, patientID string, req records.HistoryRequest) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Appointment{}, err
	}
	if _, ok := s.patients[patientID]; !ok {
		return records.Appointment{}, notFound("patient", patientID)
	}
	lines, err := s.appliedLines(req.AppliedServices)
	if err != nil {
		return records.Appointment{}, err
	}

	now := s.clock.Now()
	start := now.Format("15:04")
	end := now.Add(time.Duration(clinictime.DefaultMinDuration) * time.Minute).Format("15:04")
	if end < start {
		end = "23:59"
	}
	booked := make([]records.AppointmentLine, 0, len(lines))
	for _, line := range lines {
		booked = append(booked, records.AppointmentLine{Service: line.Service, Quantity: line.Quantity})
	}
	dentist := clinicDentist
	stamp := s.timestamp()
	a := &records.Appointment{
		ID:              newID(),
		Patient:         &records.Patient{ID: patientID},
		Dentist:         &dentist,
		Services:        booked,
		Date:            s.clock.Today(),
		StartTime:       start,
		EndTime:         end,
		Status:          taxonomy.StatusCompleted,
		Type:            taxonomy.TypeConsultation,
		Notes:           req.Notes,
		AppliedServices: lines,
		CreatedAt:       stamp,
		UpdatedAt:       stamp,
	}
	s.reprice(a)
	s.appointments[a.ID] = a
	return s.view(a), nil
}

func (s *Store) appliedLine(appointmentID string, index int) (*records.Appointment, error) {
	a, ok := s.appointments[appointmentID]
	if !ok {
		return nil, notFound("appointment", appointmentID)
	}
	if index < 0 || index >= len(a.AppliedServices) {
		return nil, notFound("applied service", fmt.Sprintf("%s[%d]", appointmentID, index))
	}
	if a.Payment.IsPaid {
		return nil, records.FieldErrors{"appointment": "La cita ya fue pagada"}
	}
	return a, nil
}

func (s *Store) UpdateAppliedLine(ctx context.Context, creds records.Credentials, appointmentID string, index int, u records.LineUpdate) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Appointment{}, err
	}
	a, err := s.appliedLine(appointmentID, index)
	if err != nil {
		return records.Appointment{}, err
	}
	line := &a.AppliedServices[index]
	if u.Quantity != nil {
		line.Quantity = *u.Quantity
	}
	if u.Discount != nil {
		line.Discount = *u.Discount
	}
	if u.Notes != nil {
		line.Notes = *u.Notes
	}
	line.Total = billing.RoundCents(billing.AppliedLineTotal(line.Price, line.Quantity, line.Discount))
	a.UpdatedAt = s.timestamp()
	s.reprice(a)
	return s.view(a), nil
}

func (s *Store) RemoveAppliedLine(ctx context.Context, creds records.Credentials, appointmentID string, index int) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Appointment{}, err
	}
	a, err := s.appliedLine(appointmentID, index)
	if err != nil {
		return records.Appointment{}, err
	}
	a.AppliedServices = append(a.AppliedServices[:index:index], a.AppliedServices[index+1:]...)
	a.UpdatedAt = s.timestamp()
	s.reprice(a)
	return s.view(a), nil
}

func (s *Store) CreateApplied(ctx context.Context, creds records.Credentials, in records.AppliedServiceInput) (records.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.ApplyResult{}, err
	}
	result, err := s.apply(in.Appointment, in.ApplyLines())
	if err != nil {
		return records.ApplyResult{}, err
	}
	if in.Notes != "" {
		a := s.appointments[in.Appointment]
		a.Notes = in.Notes
		result.Appointment.Notes = in.Notes
	}
	return result, nil
}

func (s *Store) UpdateApplied(ctx context.Context, creds records.Credentials, id string, in records.AppliedServiceInput) (records.AppliedService, error) {
	return records.AppliedService{}, fmt.Errorf("static: update applied service: %w", records.ErrNotSupported)
}

func (s *Store) DeleteApplied(ctx context.Context, creds records.Credentials, id string) error {
	return fmt.Errorf("static: delete applied service: %w", records.ErrNotSupported)
}

// MarkAppliedCompleted acknowledges the request without changing state.
func (s *Store) MarkAppliedCompleted(ctx context.Context, creds records.Credentials, id string) error {
	return s.authorize(creds)
}
