package rest

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/records"
)

func appointmentPaymentPath(appointmentID, action string) string {
	return "/payments/appointment/" + segment(appointmentID) + "/" + action
}

func (c *Client) ListPayments(ctx context.Context, creds records.Credentials, q records.PaymentQuery) (records.PaymentPage, error) {
	return get[records.PaymentPage](ctx, c, creds, "list_payments", "/payments", q.Values(), "Error al obtener pagos")
}

func (c *Client) PaymentSummary(ctx context.Context, creds records.Credentials, appointmentID string) (records.PaymentSummary, error) {
	return get[records.PaymentSummary](ctx, c, creds, "payment_summary", appointmentPaymentPath(appointmentID, "summary"), nil, "Error al obtener resumen de pago")
}

func (c *Client) ApplyDiscount(ctx context.Context, creds records.Credentials, appointmentID string, req records.DiscountRequest) (records.DiscountResult, error) {
	if err := req.Validate(); err != nil {
		return records.DiscountResult{}, err
	}
	return send[records.DiscountResult](ctx, c, creds, "apply_discount", http.MethodPost, appointmentPaymentPath(appointmentID, "discount"), req, "Error al aplicar descuento")
}

// ProcessPayment settles an appointment. When the amount tendered is given it
// is checked against the bill first and the change due is reported back.
func (c *Client) ProcessPayment(ctx context.Context, creds records.Credentials, appointmentID string, req records.ProcessRequest) (records.ProcessResult, error) {
	ctx, span := restTracer.Start(ctx, "rest.settle_appointment")
	defer span.End()
	span.SetAttributes(
		attribute.String("docsmile.appointment_id", appointmentID),
		attribute.String("docsmile.payment_method", string(req.PaymentMethod)),
	)

	due := 0.0
	if req.AmountPaid != nil {
		summary, err := c.PaymentSummary(ctx, creds, appointmentID)
		if err != nil {
			span.RecordError(err)
			return records.ProcessResult{}, err
		}
		due = summary.Totals.FinalAmount
	}
	if err := req.Validate(due); err != nil {
		span.RecordError(err)
		return records.ProcessResult{}, err
	}

	result, err := send[records.ProcessResult](ctx, c, creds, "process_payment", http.MethodPost, appointmentPaymentPath(appointmentID, "pay"), req, "Error al procesar pago")
	if err != nil {
		return records.ProcessResult{}, err
	}
	if p := result.Appointment.Patient; p != nil {
		p.Normalize(c.clock)
	}
	if req.AmountPaid != nil {
		final := result.Appointment.Payment.FinalAmount
		if final == 0 {
			final = due
		}
		result.ChangeDue = billing.RoundCents(billing.ChangeDue(*req.AmountPaid, final))
	}
	c.logger.Info("payment processed", "appointment_id", appointmentID, "receipt", result.Receipt.ReceiptNumber)
	return result, nil
}

func (c *Client) Receipt(ctx context.Context, creds records.Credentials, appointmentID string) (records.Receipt, error) {
	return get[records.Receipt](ctx, c, creds, "receipt", "/payments/receipt/"+segment(appointmentID), nil, "Error al obtener recibo")
}

func (c *Client) PaymentStats(ctx context.Context, creds records.Credentials) (records.PaymentStats, error) {
	return get[records.PaymentStats](ctx, c, creds, "payment_stats", "/payments/stats", nil, "Error al obtener estadísticas de pagos")
}

// CreatePayment recomputes the totals from the lines before validating and
// forwarding, so client-supplied totals never reach the backend.
func (c *Client) CreatePayment(ctx context.Context, creds records.Credentials, in records.PaymentInput) (records.Payment, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return records.Payment{}, err
	}
	return send[records.Payment](ctx, c, creds, "create_payment", http.MethodPost, "/payments", in, "Error al crear pago")
}

func (c *Client) UpdatePayment(ctx context.Context, creds records.Credentials, id string, in records.PaymentInput) (records.Payment, error) {
	return records.Payment{}, records.ErrNotSupported
}

func (c *Client) DeletePayment(ctx context.Context, creds records.Credentials, id string) error {
	return records.ErrNotSupported
}
