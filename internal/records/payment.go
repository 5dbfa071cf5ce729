package records

import (
	"fmt"
	"net/url"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// PaymentState is the settlement state of a payment record.
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentPaid      PaymentState = "paid"
	PaymentCancelled PaymentState = "cancelled"
)

type PaymentPatient struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	DNI      string `json:"dni"`
	Phone    string `json:"phone,omitempty"`
}

type PaymentLine struct {
	Service     *ServiceRef `json:"service,omitempty"`
	ServiceName string      `json:"serviceName"`
	Category    string      `json:"category"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unitPrice"`
	Total       float64     `json:"total"`
}

// MethodAmount is the part of a bill settled with one method.
type MethodAmount struct {
	Method    taxonomy.PaymentMethod `json:"method"`
	Amount    float64                `json:"amount"`
	Reference string                 `json:"reference,omitempty"`
}

type Payment struct {
	ID             string               `json:"_id"`
	AppointmentID  string               `json:"appointmentId,omitempty"`
	Patient        PaymentPatient       `json:"patient"`
	Services       []PaymentLine        `json:"services"`
	Subtotal       float64              `json:"subtotal"`
	Discount       float64              `json:"discount"`
	DiscountType   billing.DiscountType `json:"discountType"`
	DiscountAmount float64              `json:"discountAmount"`
	FinalAmount    float64              `json:"finalAmount"`
	Total          float64              `json:"total"`
	PaymentMethod  string               `json:"paymentMethod,omitempty"`
	PaymentMethods []MethodAmount       `json:"paymentMethods"`
	IsPaid         bool                 `json:"isPaid"`
	PaidAt         string               `json:"paidAt,omitempty"`
	ReceiptNumber  string               `json:"receiptNumber,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Date           string               `json:"date"`
	CreatedAt      string               `json:"createdAt,omitempty"`
	Status         PaymentState         `json:"status"`
}

type PaymentLineInput struct {
	Service   string  `json:"service"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// PaymentInput is the body of a payment create. Totals in the body are
// overwritten by Normalize before anything else reads them.
type PaymentInput struct {
	Patient        string               `json:"patient"`
	Appointment    string               `json:"appointment,omitempty"`
	Services       []PaymentLineInput   `json:"services"`
	Subtotal       float64              `json:"subtotal"`
	Discount       float64              `json:"discount"`
	DiscountType   billing.DiscountType `json:"discountType"`
	Total          float64              `json:"total"`
	PaymentMethods []MethodAmount       `json:"paymentMethods"`
	Notes          string               `json:"notes"`
}

// LineItems returns the priced lines of the input.
func (in PaymentInput) LineItems() []billing.LineItem {
	items := make([]billing.LineItem, 0, len(in.Services))
	for _, line := range in.Services {
		items = append(items, billing.LineItem{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	return items
}

// Amounts lists the split amounts in order.
func (in PaymentInput) Amounts() []float64 {
	amounts := make([]float64, 0, len(in.PaymentMethods))
	for _, m := range in.PaymentMethods {
		amounts = append(amounts, m.Amount)
	}
	return amounts
}

// Normalize recomputes line totals, subtotal and total from prices and the
// discount, and returns the computed totals.
func (in *PaymentInput) Normalize() billing.Totals {
	if in.DiscountType == "" {
		in.DiscountType = billing.DiscountPercentage
	}
	for i := range in.Services {
		in.Services[i].Total = billing.LineTotal(in.Services[i].UnitPrice, in.Services[i].Quantity)
	}
	totals := billing.ComputeTotals(in.LineItems(), in.Discount, in.DiscountType)
	in.Subtotal = totals.Subtotal
	in.Total = totals.Total
	return totals
}

// Validate checks a normalized payment form, including the split.
func (in PaymentInput) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "patient", in.Patient, "El paciente es requerido")
	if len(in.Services) == 0 {
		errs.Add("services", "Debe agregar al menos un servicio")
	}
	for i, line := range in.Services {
		if line.Quantity < 1 {
			errs.Add(indexed("services", i, "quantity"), "La cantidad debe ser al menos 1")
		}
		if line.UnitPrice < 0 {
			errs.Add(indexed("services", i, "unitPrice"), "El precio no puede ser negativo")
		}
	}
	if in.Discount < 0 {
		errs.Add("discount", "El descuento no puede ser negativo")
	}
	if !in.DiscountType.Valid() {
		errs.Add("discountType", "El tipo de descuento no es válido")
	}
	if in.Total <= 0 {
		errs.Add("total", "El total debe ser mayor a 0")
	}
	if len(in.PaymentMethods) == 0 {
		errs.Add("paymentMethods", "Debe agregar al menos un método de pago")
	}
	for i, m := range in.PaymentMethods {
		if !m.Method.Valid() {
			errs.Add(indexed("paymentMethods", i, "method"), "El método de pago no es válido")
		}
		if m.Amount <= 0 {
			errs.Add(indexed("paymentMethods", i, "amount"), "El monto debe ser mayor a 0")
		}
	}
	if len(in.PaymentMethods) > 0 && !billing.ValidateSplit(in.Amounts(), in.Total) {
		errs.Add("paymentMethods", fmt.Sprintf("La suma de los métodos de pago (%.2f) debe ser igual al total (%.2f)", billing.SplitSum(in.Amounts()), in.Total))
	}
	return errs.Err()
}

type PaymentQuery struct {
	Page          int
	Limit         int
	Search        string
	Status        string
	PaymentMethod string
	Date          string
}

func (q PaymentQuery) Values() url.Values {
	v := pageValues(q.Page, q.Limit)
	setIf(v, "search", q.Search)
	setIf(v, "status", q.Status)
	setIf(v, "paymentMethod", q.PaymentMethod)
	setIf(v, "date", q.Date)
	return v
}

type PaymentPage struct {
	Payments   []Payment  `json:"payments"`
	Pagination Pagination `json:"pagination"`
}

type PartyRef struct {
	Name  string `json:"name"`
	DNI   string `json:"dni,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type SummaryLine struct {
	ServiceName    string  `json:"serviceName"`
	Category       string  `json:"category"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
}

type SummaryTotals struct {
	Subtotal        float64 `json:"subtotal"`
	TotalDiscount   float64 `json:"totalDiscount"`
	FinalAmount     float64 `json:"finalAmount"`
	GeneralDiscount float64 `json:"generalDiscount"`
}

type SettlementStatus struct {
	IsPaid        bool   `json:"isPaid"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	PaidAt        string `json:"paidAt,omitempty"`
}

// PaymentSummary is the bill of one appointment.
type PaymentSummary struct {
	AppointmentID string           `json:"appointmentId"`
	Date          string           `json:"date"`
	Patient       PartyRef         `json:"patient"`
	Services      []SummaryLine    `json:"services"`
	Totals        SummaryTotals    `json:"totals"`
	PaymentStatus SettlementStatus `json:"paymentStatus"`
}

// DiscountRequest applies a general percentage discount to an appointment.
type DiscountRequest struct {
	Discount float64 `json:"discount"`
	Reason   string  `json:"reason,omitempty"`
}

func (r DiscountRequest) Validate() error {
	errs := FieldErrors{}
	if r.Discount < 0 || r.Discount > 100 {
		errs.Add("discount", "El descuento debe estar entre 0 y 100")
	}
	return errs.Err()
}

type DiscountResult struct {
	OriginalAmount float64 `json:"originalAmount"`
	Discount       float64 `json:"discount"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
}

// ProcessRequest settles an appointment bill.
type ProcessRequest struct {
	PaymentMethod taxonomy.PaymentMethod `json:"paymentMethod"`
	AmountPaid    *float64               `json:"amountPaid,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
}

// Validate checks the request against the amount due.
func (r ProcessRequest) Validate(finalAmount float64) error {
	errs := FieldErrors{}
	if !r.PaymentMethod.Valid() {
		errs.Add("paymentMethod", "El método de pago no es válido")
	}
	if r.AmountPaid != nil && *r.AmountPaid+1e-9 < finalAmount {
		errs.Add("amountPaid", fmt.Sprintf("El monto pagado debe ser al menos %.2f", finalAmount))
	}
	return errs.Err()
}

type ProcessResult struct {
	Appointment Appointment `json:"appointment"`
	Receipt     Receipt     `json:"receipt"`
	ChangeDue   float64     `json:"changeDue"`
}

type ReceiptLine struct {
	ServiceName string  `json:"serviceName"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
	Notes       string  `json:"notes,omitempty"`
}

type ReceiptTotals struct {
	Subtotal        float64 `json:"subtotal"`
	GeneralDiscount float64 `json:"generalDiscount"`
	FinalAmount     float64 `json:"finalAmount"`
	PaymentMethod   string  `json:"paymentMethod"`
}

type ClinicInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type Receipt struct {
	ReceiptNumber   string        `json:"receiptNumber"`
	Date            string        `json:"date"`
	AppointmentDate string        `json:"appointmentDate"`
	Patient         PartyRef      `json:"patient"`
	Dentist         PartyRef      `json:"dentist"`
	Services        []ReceiptLine `json:"services"`
	Totals          ReceiptTotals `json:"totals"`
	ClinicInfo      ClinicInfo    `json:"clinicInfo"`
}

type MethodStat struct {
	Method string  `json:"_id"`
	Total  float64 `json:"total"`
	Count  int     `json:"count"`
}

type PaymentStats struct {
	TotalRevenue  float64      `json:"totalRevenue"`
	TodayRevenue  float64      `json:"todayRevenue"`
	MonthRevenue  float64      `json:"monthRevenue"`
	PendingAmount float64      `json:"pendingAmount"`
	TotalPayments int          `json:"totalPayments"`
	ByMethod      []MethodStat `json:"byMethod"`
}

// QuoteRequest is a draft bill priced without creating anything.
type QuoteRequest struct {
	Services       []PaymentLineInput   `json:"services"`
	Discount       float64              `json:"discount"`
	DiscountType   billing.DiscountType `json:"discountType"`
	PaymentMethods []MethodAmount       `json:"paymentMethods"`
}

func (q QuoteRequest) Validate() error {
	errs := FieldErrors{}
	for i, line := range q.Services {
		if line.Quantity < 1 {
			errs.Add(indexed("services", i, "quantity"), "La cantidad debe ser al menos 1")
		}
		if line.UnitPrice < 0 {
			errs.Add(indexed("services", i, "unitPrice"), "El precio no puede ser negativo")
		}
	}
	if q.Discount < 0 {
		errs.Add("discount", "El descuento no puede ser negativo")
	}
	if q.DiscountType != "" && !q.DiscountType.Valid() {
		errs.Add("discountType", "El tipo de descuento no es válido")
	}
	return errs.Err()
}

// Quote prices the draft.
func (q QuoteRequest) Quote() billing.Quote {
	draft := PaymentInput{Services: q.Services, PaymentMethods: q.PaymentMethods}
	kind := q.DiscountType
	if kind == "" {
		kind = billing.DiscountPercentage
	}
	return billing.BuildQuote(draft.LineItems(), q.Discount, kind, draft.Amounts())
}
