package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/events"
	"github.com/wolfman30/docsmile-suite/internal/receipts"
	"github.com/wolfman30/docsmile-suite/internal/records"
)

var paymentsTracer = otel.Tracer("docsmile.internal.http.handlers")

// ReceiptArchiver stores issued receipts.
type ReceiptArchiver interface {
	Store(ctx context.Context, receipt records.Receipt) error
}

// ReceiptSender emails a receipt.
type ReceiptSender interface {
	SendReceipt(ctx context.Context, to string, receipt records.Receipt) error
}

// PaymentsHandler serves billing under /api/payments.
type PaymentsHandler struct {
	base
	backend  records.PaymentBackend
	renderer *receipts.Renderer
	archive  ReceiptArchiver
	mailer   ReceiptSender
}

// PaymentsOption configures optional receipt delivery.
type PaymentsOption func(*PaymentsHandler)

func WithReceiptArchive(a ReceiptArchiver) PaymentsOption {
	return func(h *PaymentsHandler) { h.archive = a }
}

func WithReceiptMailer(m ReceiptSender) PaymentsOption {
	return func(h *PaymentsHandler) { h.mailer = m }
}

func NewPaymentsHandler(backend records.PaymentBackend, deps Deps, opts ...PaymentsOption) *PaymentsHandler {
	h := &PaymentsHandler{base: newBase(deps, "payments_handler"), backend: backend}
	h.renderer = receipts.NewRenderer(h.clock.Location())
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *PaymentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/quote", h.Quote)
	r.Get("/stats", h.Stats)
	r.Get("/appointment/{id}/summary", h.Summary)
	r.Post("/appointment/{id}/discount", h.ApplyDiscount)
	r.Post("/appointment/{id}/pay", h.Process)
	r.Get("/receipt/{id}", h.Receipt)
	r.Post("/receipt/{id}/email", h.EmailReceipt)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *PaymentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.backend.ListPayments(r.Context(), creds(r), records.PaymentQuery{
		Page:          queryInt(r, "page"),
		Limit:         queryInt(r, "limit"),
		Search:        q.Get("search"),
		Status:        q.Get("status"),
		PaymentMethod: q.Get("paymentMethod"),
		Date:          q.Get("date"),
	})
	if err != nil {
		h.fail(w, r, "list_payments", err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (h *PaymentsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.backend.PaymentSummary(r.Context(), creds(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "payment_summary", err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *PaymentsHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req records.DiscountRequest
	body, err := decodeBody(r, &req)
	if err != nil {
		h.badBody(w, r, "apply_discount", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.record(r, audit.ActionDiscount, "appointment", id, body, err)
		h.fail(w, r, "apply_discount", err)
		return
	}
	result, err := h.backend.ApplyDiscount(r.Context(), creds(r), id, req)
	h.record(r, audit.ActionDiscount, "appointment", id, body, err)
	if err != nil {
		h.fail(w, r, "apply_discount", err)
		return
	}
	h.publish(r, "appointment", id, events.DiscountAppliedV1{
		AppointmentID:  id,
		Discount:       result.Discount,
		DiscountAmount: result.DiscountAmount,
		FinalAmount:    result.FinalAmount,
		Reason:         req.Reason,
		ActorID:        actor(r.Context()).ID,
		AppliedAt:      time.Now().UTC(),
	})
	writeData(w, http.StatusOK, result)
}

// Process settles an appointment bill and archives the issued receipt.
func (h *PaymentsHandler) Process(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := paymentsTracer.Start(r.Context(), "handlers.process_payment")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	var req records.ProcessRequest
	body, err := decodeBody(r, &req)
	if err != nil {
		h.badBody(w, r, "process_payment", err)
		return
	}
	span.SetAttributes(attribute.String("payment.method", string(req.PaymentMethod)))
	if !req.PaymentMethod.Valid() {
		err := records.FieldErrors{"paymentMethod": "El método de pago no es válido"}
		h.record(r, audit.ActionPay, "appointment", id, body, err)
		h.fail(w, r, "process_payment", err)
		return
	}

	result, err := h.backend.ProcessPayment(ctx, creds(r), id, req)
	h.record(r, audit.ActionPay, "appointment", id, body, err)
	if err != nil {
		if _, ok := records.AsFieldErrors(err); !ok {
			span.RecordError(err)
			span.SetStatus(codes.Error, "payment failed")
		}
		h.fail(w, r, "process_payment", err)
		return
	}

	if h.archive != nil {
		if err := h.archive.Store(ctx, result.Receipt); err != nil {
			h.logger.Warn("receipt not archived", "error", err, "receipt", result.Receipt.ReceiptNumber)
		}
	}
	h.publish(r, "appointment", id, events.PaymentProcessedV1{
		AppointmentID: id,
		ReceiptNumber: result.Receipt.ReceiptNumber,
		PaymentMethod: string(req.PaymentMethod),
		FinalAmount:   result.Appointment.Payment.FinalAmount,
		ChangeDue:     result.ChangeDue,
		ActorID:       actor(r.Context()).ID,
		ProcessedAt:   time.Now().UTC(),
	})
	writeData(w, http.StatusOK, result)
}

// Receipt handles GET /api/payments/receipt/{id}; format=html returns the
// printable page instead of JSON.
func (h *PaymentsHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.backend.Receipt(r.Context(), creds(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_receipt", err)
		return
	}
	if r.URL.Query().Get("format") != "html" {
		writeData(w, http.StatusOK, receipt)
		return
	}
	page, err := h.renderer.HTML(receipt)
	if err != nil {
		h.logger.Error("receipt render failed", "error", err)
		jsonError(w, "Error al generar el comprobante", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

type emailReceiptRequest struct {
	Email string `json:"email"`
}

func (h *PaymentsHandler) EmailReceipt(w http.ResponseWriter, r *http.Request) {
	var req emailReceiptRequest
	if _, err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, "email_receipt", err)
		return
	}
	if req.Email == "" || !records.ValidEmail(req.Email) {
		h.fail(w, r, "email_receipt", records.FieldErrors{"email": "El correo electrónico no es válido"})
		return
	}
	if h.mailer == nil {
		jsonError(w, "El envío de correos no está configurado", http.StatusServiceUnavailable)
		return
	}
	receipt, err := h.backend.Receipt(r.Context(), creds(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "email_receipt", err)
		return
	}
	if err := h.mailer.SendReceipt(r.Context(), req.Email, receipt); err != nil {
		h.fail(w, r, "email_receipt", err)
		return
	}
	writeMessage(w, http.StatusOK, "Comprobante enviado")
}

func (h *PaymentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.PaymentStats(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "payment_stats", err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// Create records a payment. Totals are recomputed from the lines before the
// split is checked.
func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in records.PaymentInput
	body, err := decodeBody(r, &in)
	if err != nil {
		h.badBody(w, r, "create_payment", err)
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		h.record(r, audit.ActionCreate, "payment", "", body, err)
		h.fail(w, r, "create_payment", err)
		return
	}
	payment, err := h.backend.CreatePayment(r.Context(), creds(r), in)
	h.record(r, audit.ActionCreate, "payment", payment.ID, body, err)
	if err != nil {
		h.fail(w, r, "create_payment", err)
		return
	}
	methods := make([]string, 0, len(in.PaymentMethods))
	for _, m := range in.PaymentMethods {
		methods = append(methods, string(m.Method))
	}
	h.publish(r, "payment", payment.ID, events.PaymentRecordedV1{
		PaymentID:  payment.ID,
		PatientID:  in.Patient,
		Total:      in.Total,
		Methods:    methods,
		ActorID:    actor(r.Context()).ID,
		RecordedAt: time.Now().UTC(),
	})
	writeData(w, http.StatusCreated, payment)
}

func (h *PaymentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in records.PaymentInput
	if _, err := decodeBody(r, &in); err != nil {
		h.badBody(w, r, "update_payment", err)
		return
	}
	payment, err := h.backend.UpdatePayment(r.Context(), creds(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update_payment", err)
		return
	}
	writeData(w, http.StatusOK, payment)
}

func (h *PaymentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.DeletePayment(r.Context(), creds(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete_payment", err)
		return
	}
	writeMessage(w, http.StatusOK, "Pago eliminado")
}

// Quote prices a draft payment without calling the backend.
func (h *PaymentsHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req records.QuoteRequest
	if _, err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, "quote_payment", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, "quote_payment", err)
		return
	}
	for _, m := range req.PaymentMethods {
		if !m.Method.Valid() {
			h.fail(w, r, "quote_payment", records.FieldErrors{
				"paymentMethods": "El método de pago no es válido",
			})
			return
		}
	}
	writeData(w, http.StatusOK, req.Quote())
}
