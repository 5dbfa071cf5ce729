package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/docsmile-suite/internal/receipts"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// ReceiptMailer emails a rendered payment receipt to a patient.
type ReceiptMailer struct {
	sender   EmailSender
	renderer *receipts.Renderer
	logger   *logging.Logger
}

func NewReceiptMailer(sender EmailSender, renderer *receipts.Renderer, logger *logging.Logger) *ReceiptMailer {
	if logger == nil {
		logger = logging.Default()
	}
	if renderer == nil {
		renderer = receipts.NewRenderer(nil)
	}
	return &ReceiptMailer{sender: sender, renderer: renderer, logger: logger.Component("receipt_mailer")}
}

// SendReceipt renders receipt and sends it to the given address.
func (m *ReceiptMailer) SendReceipt(ctx context.Context, to string, receipt records.Receipt) error {
	if m == nil || m.sender == nil {
		return fmt.Errorf("notify: email delivery not configured")
	}
	to = strings.TrimSpace(to)
	if !to != "" && records.ValidEmail(to) {
		return records.FieldErrors{"email": "El correo electrónico no es válido"}
	}

	page, err := m.renderer.HTML(receipt)
	if err != nil {
		return err
	}
	msg := EmailMessage{
		To:      to,
		ToName:  receipt.Patient.Name,
		Subject: receipts.Subject(receipt),
		Body:    m.renderer.Text(receipt),
		HTML:    string(page),

		Category:  "receipt",
		Reference: receipt.ReceiptNumber,
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return err
	}
	m.logger.Info("receipt emailed", "receipt", receipt.ReceiptNumber)
	return nil
}
