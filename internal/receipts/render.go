// Package receipts renders payment receipts for printing and email, and
// archives issued receipts.
package receipts

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

const receiptHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Comprobante de Pago - {{.ReceiptNumber}}</title>
<style>
  body { font-family: Arial, sans-serif; margin: 20px; }
  .header, .clinic-info, .footer { text-align: center; }
  .clinic-info { margin-bottom: 20px; border-bottom: 1px solid #ccc; padding-bottom: 10px; }
  .services-table { width: 100%; border-collapse: collapse; margin-bottom: 15px; }
  .services-table th, .services-table td { border: 1px solid #ccc; padding: 8px; text-align: left; }
  .services-table th { background-color: #f0f0f0; }
  .totals { text-align: right; margin-top: 20px; }
  .footer { margin-top: 30px; font-size: 12px; }
</style>
</head>
<body>
<div class="clinic-info">
  <h2>{{.ClinicInfo.Name}}</h2>
  <p>{{.ClinicInfo.Address}}</p>
  <p>Tel: {{.ClinicInfo.Phone}}</p>
</div>
<div class="header">
  <h3>COMPROBANTE DE PAGO</h3>
  <p><strong>N°:</strong> {{.ReceiptNumber}}</p>
  <p><strong>Fecha:</strong> {{stamp .Date}}</p>
</div>
<div class="patient-info">
  <p><strong>Paciente:</strong> {{.Patient.Name}}</p>
  <p><strong>DNI:</strong> {{.Patient.DNI}}</p>
  {{- if .Patient.Phone}}
  <p><strong>Teléfono:</strong> {{.Patient.Phone}}</p>
  {{- end}}
  <p><strong>Fecha de Cita:</strong> {{day .AppointmentDate}}</p>
</div>
<table class="services-table">
  <thead>
    <tr><th>Servicio</th><th>Cant.</th><th>Precio Unit.</th><th>Subtotal</th><th>Desc.</th><th>Total</th></tr>
  </thead>
  <tbody>
  {{- range .Services}}
    <tr><td>{{.ServiceName}}</td><td>{{.Quantity}}</td><td>{{money .UnitPrice}}</td><td>{{money .Subtotal}}</td><td>{{percent .Discount}}</td><td>{{money .Total}}</td></tr>
  {{- end}}
  </tbody>
</table>
<div class="totals">
  <p><strong>Subtotal: {{money .Totals.Subtotal}}</strong></p>
  {{- if gt .Totals.GeneralDiscount 0.0}}
  <p>Descuento General: {{percent .Totals.GeneralDiscount}}</p>
  {{- end}}
  <p><strong>TOTAL: {{money .Totals.FinalAmount}}</strong></p>
  <p>Método de Pago: {{method .Totals.PaymentMethod}}</p>
</div>
<div class="footer">
  <p>Gracias por su confianza</p>
  <p>DocSmile Suite - Sistema de Gestión Dental</p>
</div>
</body>
</html>
`

// Renderer turns receipts into printable HTML and plain text.
type Renderer struct {
	loc  *time.Location
	html *template.Template
}

// NewRenderer formats timestamps in loc.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"money":   FormatCurrency,
		"day":     FormatDay,
		"stamp":   func(s string) string { return FormatStamp(s, loc) },
		"percent": formatPercent,
		"method":  methodLabel,
	}
	return &Renderer{
		loc:  loc,
		html: template.Must(template.New("receipt").Funcs(funcs).Parse(receiptHTML)),
	}
}

// HTML renders the printable receipt page.
func (r *Renderer) HTML(receipt records.Receipt) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.html.Execute(&buf, receipt); err != nil {
		return nil, fmt.Errorf("receipts: render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Text renders a plain-text version for email clients without HTML.
func (r *Renderer) Text(receipt records.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\nTel: %s\n\n", receipt.ClinicInfo.Name, receipt.ClinicInfo.Address, receipt.ClinicInfo.Phone)
	fmt.Fprintf(&b, "COMPROBANTE DE PAGO N° %s\n", receipt.ReceiptNumber)
	fmt.Fprintf(&b, "Fecha: %s\n", FormatStamp(receipt.Date, r.loc))
	fmt.Fprintf(&b, "Paciente: %s (DNI %s)\n", receipt.Patient.Name, receipt.Patient.DNI)
	fmt.Fprintf(&b, "Fecha de Cita: %s\n\n", FormatDay(receipt.AppointmentDate))
	for _, line := range receipt.Services {
		fmt.Fprintf(&b, "- %s x%d  %s\n", line.ServiceName, line.Quantity, FormatCurrency(line.Total))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", FormatCurrency(receipt.Totals.Subtotal))
	if receipt.Totals.GeneralDiscount > 0 {
		fmt.Fprintf(&b, "Descuento General: %s\n", formatPercent(receipt.Totals.GeneralDiscount))
	}
	fmt.Fprintf(&b, "TOTAL: %s\n", FormatCurrency(receipt.Totals.FinalAmount))
	fmt.Fprintf(&b, "Método de Pago: %s\n\nGracias por su confianza\n", methodLabel(receipt.Totals.PaymentMethod))
	return b.String()
}

// Subject is the email subject for a receipt.
func Subject(receipt records.Receipt) string {
	return fmt.Sprintf("Comprobante de Pago %s - %s", receipt.ReceiptNumber, receipt.ClinicInfo.Name)
}

func formatPercent(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".") + "%"
}

func methodLabel(method string) string {
	if method == "" {
		return "-"
	}
	return taxonomy.PaymentMethod(method).Label()
}
