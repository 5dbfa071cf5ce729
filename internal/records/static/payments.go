package static

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

const mixedMethods = "mixto"

func (s *Store) nextReceipt() string {
	s.receiptSeq++
	return fmt.Sprintf("REC-%s-%04d", strings.ReplaceAll(s.clock.Today(), "-", ""), s.receiptSeq)
}

func (s *Store) ListPayments(ctx context.Context, creds records.Credentials, q records.PaymentQuery) (records.PaymentPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.PaymentPage{}, err
	}

	sorted := append([]records.Payment(nil), s.payments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})

	search := strings.TrimSpace(q.Search)
	matched := []records.Payment{}
	for _, p := range sorted {
		if q.Status != "" && q.Status != "all" && string(p.Status) != q.Status {
			continue
		}
		if q.PaymentMethod != "" && q.PaymentMethod != "all" && !paidWith(p, q.PaymentMethod) {
			continue
		}
		if q.Date != "" && p.Date != q.Date {
			continue
		}
		if search != "" && !containsFold(p.Patient.FullName, search) && !strings.Contains(p.Patient.DNI, search) &&
			!containsFold(p.ReceiptNumber, search) {
			continue
		}
		matched = append(matched, p)
	}
	page, pagination := records.Paginate(matched, q.Page, q.Limit)
	return records.PaymentPage{Payments: page, Pagination: pagination}, nil
}

func paidWith(p records.Payment, method string) bool {
	if p.PaymentMethod == method {
		return true
	}
	for _, m := range p.PaymentMethods {
		if string(m.Method) == method {
			return true
		}
	}
	return false
}

// billLines itemizes an appointment: applied lines when present, otherwise
// the booked services at catalog price.
func (s *Store) billLines(v records.Appointment) []records.ReceiptLine {
	lines := []records.ReceiptLine{}
	if len(v.AppliedServices) > 0 {
		for _, l := range v.AppliedServices {
			lines = append(lines, records.ReceiptLine{
				ServiceName: l.Service.Name(),
				Category:    categoryOf(l.Service),
				Quantity:    l.Quantity,
				UnitPrice:   l.Price,
				Subtotal:    billing.RoundCents(l.Price * float64(l.Quantity)),
				Discount:    l.Discount,
				Total:       l.Total,
				Notes:       l.Notes,
			})
		}
		return lines
	}
	for _, l := range v.Services {
		var price float64
		if l.Service.Service != nil {
			price = l.Service.Service.Price
		}
		amount := billing.RoundCents(price * float64(l.Quantity))
		lines = append(lines, records.ReceiptLine{
			ServiceName: l.Service.Name(),
			Category:    categoryOf(l.Service),
			Quantity:    l.Quantity,
			UnitPrice:   price,
			Subtotal:    amount,
			Total:       amount,
		})
	}
	return lines
}

func categoryOf(ref records.ServiceRef) string {
	if ref.Service == nil {
		return ""
	}
	return string(ref.Service.Category)
}

func patientRef(p *records.Patient) records.PartyRef {
	if p == nil {
		return records.PartyRef{}
	}
	return records.PartyRef{Name: p.FullName, DNI: p.DNI, Phone: p.Phone}
}

func (s *Store) PaymentSummary(ctx context.Context, creds records.Credentials, appointmentID string) (records.PaymentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.PaymentSummary{}, err
	}
	a, ok := s.appointments[appointmentID]
	if !ok {
		return records.PaymentSummary{}, notFound("appointment", appointmentID)
	}
	return s.summary(a), nil
}

func (s *Store) summary(a *records.Appointment) records.PaymentSummary {
	v := s.view(a)
	patient := patientRef(v.Patient)
	patient.Phone = ""
	out := records.PaymentSummary{
		AppointmentID: v.ID,
		Date:          v.Date,
		Patient:       patient,
		Services:      []records.SummaryLine{},
		PaymentStatus: records.SettlementStatus{IsPaid: v.Payment.IsPaid, PaymentMethod: v.Payment.PaymentMethod, PaidAt: v.Payment.PaidAt},
	}
	for _, l := range s.billLines(v) {
		out.Services = append(out.Services, records.SummaryLine{
			ServiceName:    l.ServiceName,
			Category:       l.Category,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			Subtotal:       l.Subtotal,
			Discount:       l.Discount,
			DiscountAmount: billing.RoundCents(l.Subtotal - l.Total),
			Total:          l.Total,
		})
		out.Totals.Subtotal += l.Subtotal
		out.Totals.TotalDiscount += l.Subtotal - l.Total
	}
	out.Totals.Subtotal = billing.RoundCents(out.Totals.Subtotal)
	out.Totals.TotalDiscount = billing.RoundCents(out.Totals.TotalDiscount)
	out.Totals.GeneralDiscount = v.Payment.Discount
	out.Totals.FinalAmount = v.Payment.FinalAmount
	return out
}

func (s *Store) ApplyDiscount(ctx context.Context, creds records.Credentials, appointmentID string, req records.DiscountRequest) (records.DiscountResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.DiscountResult{}, err
	}
	a, ok := s.appointments[appointmentID]
	if !ok {
		return records.DiscountResult{}, notFound("appointment", appointmentID)
	}
	if a.Payment.IsPaid {
		return records.DiscountResult{}, records.FieldErrors{"discount": "La cita ya fue pagada"}
	}
	a.Payment.Discount = req.Discount
	s.reprice(a)
	a.UpdatedAt = s.timestamp()
	return records.DiscountResult{
		OriginalAmount: a.Payment.TotalAmount,
		Discount:       a.Payment.Discount,
		DiscountAmount: billing.RoundCents(a.Payment.TotalAmount - a.Payment.FinalAmount),
		FinalAmount:    a.Payment.FinalAmount,
	}, nil
}

func (s *Store) ProcessPayment(ctx context.Context, creds records.Credentials, appointmentID string, req records.ProcessRequest) (records.ProcessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.ProcessResult{}, err
	}
	a, ok := s.appointments[appointmentID]
	if !ok {
		return records.ProcessResult{}, notFound("appointment", appointmentID)
	}
	if a.Payment.IsPaid {
		return records.ProcessResult{}, records.FieldErrors{"appointment": "La cita ya fue pagada"}
	}
	if err := req.Validate(a.Payment.FinalAmount); err != nil {
		return records.ProcessResult{}, err
	}

	stamp := s.timestamp()
	a.Payment.IsPaid = true
	a.Payment.PaymentMethod = string(req.PaymentMethod)
	a.Payment.PaidAt = stamp
	a.Payment.Receipt = s.nextReceipt()
	if a.Status.Open() {
		a.Status = taxonomy.StatusCompleted
	}
	if req.Notes != "" {
		a.Notes = strings.TrimSpace(a.Notes + "\n" + req.Notes)
	}
	a.UpdatedAt = stamp
	s.payments = append(s.payments, s.paymentFor(a))

	result := records.ProcessResult{Appointment: s.view(a), Receipt: s.receipt(a)}
	if req.AmountPaid != nil {
		result.ChangeDue = billing.RoundCents(billing.ChangeDue(*req.AmountPaid, a.Payment.FinalAmount))
	}
	s.logger.Info("appointment paid", "appointment_id", a.ID, "receipt", a.Payment.Receipt, "amount", a.Payment.FinalAmount)
	return result, nil
}

// paymentFor records the settlement of a paid appointment.
func (s *Store) paymentFor(a *records.Appointment) records.Payment {
	v := s.view(a)
	p := records.Payment{
		ID:             newID(),
		AppointmentID:  v.ID,
		Services:       []records.PaymentLine{},
		Discount:       v.Payment.Discount,
		DiscountType:   billing.DiscountPercentage,
		DiscountAmount: billing.RoundCents(v.Payment.TotalAmount - v.Payment.FinalAmount),
		Subtotal:       v.Payment.TotalAmount,
		FinalAmount:    v.Payment.FinalAmount,
		Total:          v.Payment.FinalAmount,
		PaymentMethod:  v.Payment.PaymentMethod,
		PaymentMethods: []records.MethodAmount{{Method: taxonomy.PaymentMethod(v.Payment.PaymentMethod), Amount: v.Payment.FinalAmount}},
		IsPaid:         true,
		PaidAt:         v.Payment.PaidAt,
		ReceiptNumber:  v.Payment.Receipt,
		Date:           s.clock.Today(),
		CreatedAt:      v.Payment.PaidAt,
		Status:         records.PaymentPaid,
	}
	if v.Patient != nil {
		p.Patient = records.PaymentPatient{ID: v.Patient.ID, Name: v.Patient.FullName, FullName: v.Patient.FullName, DNI: v.Patient.DNI, Phone: v.Patient.Phone}
	}
	for _, l := range s.billLines(v) {
		p.Services = append(p.Services, records.PaymentLine{
			ServiceName: l.ServiceName,
			Category:    l.Category,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Total,
		})
	}
	return p
}

func (s *Store) receipt(a *records.Appointment) records.Receipt {
	v := s.view(a)
	dentist := records.PartyRef{Name: s.settings.Dentist.Name, Phone: s.settings.Contact.Phone}
	if v.Dentist != nil && v.Dentist.FullName != "" {
		dentist.Name = v.Dentist.FullName
	}
	return records.Receipt{
		ReceiptNumber:   v.Payment.Receipt,
		Date:            v.Payment.PaidAt,
		AppointmentDate: v.Date,
		Patient:         patientRef(v.Patient),
		Dentist:         dentist,
		Services:        s.billLines(v),
		Totals: records.ReceiptTotals{
			Subtotal:        v.Payment.TotalAmount,
			GeneralDiscount: v.Payment.Discount,
			FinalAmount:     v.Payment.FinalAmount,
			PaymentMethod:   v.Payment.PaymentMethod,
		},
		ClinicInfo: records.ClinicInfo{
			Name:    s.settings.Name,
			Address: s.settings.Contact.Address,
			Phone:   s.settings.Contact.Phone,
		},
	}
}

func (s *Store) Receipt(ctx context.Context, creds records.Credentials, appointmentID string) (records.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.Receipt{}, err
	}
	a, ok := s.appointments[appointmentID]
	if !ok || !a.Payment.IsPaid {
		return records.Receipt{}, notFound("receipt", appointmentID)
	}
	return s.receipt(a), nil
}

func (s *Store) PaymentStats(ctx context.Context, creds records.Credentials) (records.PaymentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.PaymentStats{}, err
	}

	today := s.clock.Today()
	month := today[:7]
	stats := records.PaymentStats{ByMethod: []records.MethodStat{}}
	byMethod := map[string]*records.MethodStat{}
	for _, p := range s.payments {
		if !p.IsPaid {
			stats.PendingAmount += p.FinalAmount
			continue
		}
		stats.TotalPayments++
		stats.TotalRevenue += p.FinalAmount
		if p.Date == today {
			stats.TodayRevenue += p.FinalAmount
		}
		if strings.HasPrefix(p.Date, month) {
			stats.MonthRevenue += p.FinalAmount
		}
		for _, m := range p.PaymentMethods {
			ms, ok := byMethod[string(m.Method)]
			if !ok {
				ms = &records.MethodStat{Method: string(m.Method)}
				byMethod[string(m.Method)] = ms
			}
			ms.Total += m.Amount
			ms.Count++
		}
	}
	for _, a := range s.appointments {
		if !a.Payment.IsPaid && a.Status != taxonomy.StatusCancelled && a.Status != taxonomy.StatusNoShow {
			stats.PendingAmount += a.Payment.FinalAmount
		}
	}
	for _, ms := range byMethod {
		ms.Total = billing.RoundCents(ms.Total)
		stats.ByMethod = append(stats.ByMethod, *ms)
	}
	sort.Slice(stats.ByMethod, func(i, j int) bool {
		if stats.ByMethod[i].Total != stats.ByMethod[j].Total {
			return stats.ByMethod[i].Total > stats.ByMethod[j].Total
		}
		return stats.ByMethod[i].Method < stats.ByMethod[j].Method
	})
	stats.TotalRevenue = billing.RoundCents(stats.TotalRevenue)
	stats.TodayRevenue = billing.RoundCents(stats.TodayRevenue)
	stats.MonthRevenue = billing.RoundCents(stats.MonthRevenue)
	stats.PendingAmount = billing.RoundCents(stats.PendingAmount)
	return stats, nil
}

func (s *Store) CreatePayment(ctx context.Context, creds records.Credentials, in records.PaymentInput) (records.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Payment{}, err
	}
	patient, ok := s.patients[in.Patient]
	if !ok {
		return records.Payment{}, records.FieldErrors{"patient": "El paciente no existe"}
	}
	totals := in.Normalize()
	if err := in.Validate(); err != nil {
		return records.Payment{}, err
	}

	errs := records.FieldErrors{}
	lines := make([]records.PaymentLine, 0, len(in.Services))
	for i, line := range in.Services {
		svc, ok := s.services[line.Service]
		if !ok {
			errs.Add(fmt.Sprintf("services[%d].service", i), "El servicio no existe")
			continue
		}
		ref := records.RefTo(svc.ID)
		lines = append(lines, records.PaymentLine{
			Service:     &ref,
			ServiceName: svc.Name,
			Category:    string(svc.Category),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
		})
	}
	if err := errs.Err(); err != nil {
		return records.Payment{}, err
	}

	method := mixedMethods
	if len(in.PaymentMethods) == 1 {
		method = string(in.PaymentMethods[0].Method)
	}
	stamp := s.timestamp()
	name := records.FullNameOf(patient.FirstName, patient.LastName)
	p := records.Payment{
		ID:             newID(),
		AppointmentID:  in.Appointment,
		Patient:        records.PaymentPatient{ID: patient.ID, Name: name, FullName: name, DNI: patient.DNI, Phone: patient.Phone},
		Services:       lines,
		Subtotal:       totals.Subtotal,
		Discount:       in.Discount,
		DiscountType:   in.DiscountType,
		DiscountAmount: totals.DiscountAmount,
		FinalAmount:    totals.Total,
		Total:          totals.Total,
		PaymentMethod:  method,
		PaymentMethods: append([]records.MethodAmount(nil), in.PaymentMethods...),
		IsPaid:         true,
		PaidAt:         stamp,
		ReceiptNumber:  s.nextReceipt(),
		Notes:          in.Notes,
		Date:           s.clock.Today(),
		CreatedAt:      stamp,
		Status:         records.PaymentPaid,
	}
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) UpdatePayment(ctx context.Context, creds records.Credentials, id string, in records.PaymentInput) (records.Payment, error) {
	return records.Payment{}, fmt.Errorf("static: update payment: %w", records.ErrNotSupported)
}

func (s *Store) DeletePayment(ctx context.Context, creds records.Credentials, id string) error {
	return fmt.Errorf("static: delete payment: %w", records.ErrNotSupported)
}
