package receipts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

func sampleReceipt() records.Receipt {
	return records.Receipt{
		ReceiptNumber:   "REC-20240725-0002",
		Date:            "2024-07-25T15:00:00Z",
		AppointmentDate: "2024-07-25",
		Patient:         records.PartyRef{Name: "Ana García", DNI: "47852369", Phone: "987654321"},
		Dentist:         records.PartyRef{Name: "Dr. Carlos Rodríguez"},
		Services: []records.ReceiptLine{
			{ServiceName: "Limpieza Dental <Profunda>", Quantity: 1, UnitPrice: 300, Subtotal: 300, Discount: 10, Total: 270},
		},
		Totals:     records.ReceiptTotals{Subtotal: 270, GeneralDiscount: 10, FinalAmount: 243, PaymentMethod: "efectivo"},
		ClinicInfo: records.ClinicInfo{Name: "HappyDent", Address: "Av. Principal 123, Lima", Phone: "01-234-5678"},
	}
}

func lima(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)
	return loc
}

func TestFormatCurrency(t *testing.T) {
	tests := map[float64]string{
		0:       "S/ 0.00",
		243:     "S/ 243.00",
		1234.5:  "S/ 1,234.50",
		1000000: "S/ 1,000,000.00",
		-7.005:  "-S/ 7.01",
		299.999: "S/ 300.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatCurrency(in), "amount %v", in)
	}
}

func TestFormatDates(t *testing.T) {
	assert.Equal(t, "25 de julio de 2024", FormatDay("2024-07-25"))
	assert.Equal(t, "not-a-day", FormatDay("not-a-day"))
	assert.Equal(t, "25 jul 2024, 10:00", FormatStamp("2024-07-25T15:00:00Z", lima(t)))
}

func TestRendererHTML(t *testing.T) {
	page, err := NewRenderer(lima(t)).HTML(sampleReceipt())
	require.NoError(t, err)
	html := string(page)

	assert.Contains(t, html, "COMPROBANTE DE PAGO")
	assert.Contains(t, html, "REC-20240725-0002")
	assert.Contains(t, html, "S/ 243.00")
	assert.Contains(t, html, "Descuento General: 10%")
	assert.Contains(t, html, "Método de Pago: Efectivo")
	assert.Contains(t, html, "Teléfono:")
	assert.Contains(t, html, "Limpieza Dental &lt;Profunda&gt;")
	assert.NotContains(t, html, "<Profunda>")
}

func TestRendererOmitsZeroGeneralDiscount(t *testing.T) {
	r := sampleReceipt()
	r.Totals.GeneralDiscount = 0
	r.Patient.Phone = ""
	page, err := NewRenderer(nil).HTML(r)
	require.NoError(t, err)
	assert.NotContains(t, string(page), "Descuento General")
	assert.NotContains(t, string(page), "Teléfono:")
}

func TestRendererText(t *testing.T) {
	text := NewRenderer(lima(t)).Text(sampleReceipt())
	assert.Contains(t, text, "COMPROBANTE DE PAGO N° REC-20240725-0002")
	assert.Contains(t, text, "TOTAL: S/ 243.00")
	assert.True(t, strings.HasSuffix(text, "Gracias por su confianza\n"))
	assert.Equal(t, "Comprobante de Pago REC-20240725-0002 - HappyDent", Subject(sampleReceipt()))
}

type fakeS3 struct {
	puts map[string]string
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[aws.ToString(params.Key)] = aws.ToString(params.ContentType) + "|" + string(body)
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveStore(t *testing.T) {
	fake := &fakeS3{}
	a := NewArchive(fake, "docsmile-receipts", NewRenderer(nil), nil)
	require.NoError(t, a.Store(context.Background(), sampleReceipt()))

	jsonObj, ok := fake.puts["receipts/v1/2024/07/25/REC-20240725-0002.json"]
	require.True(t, ok, "json object missing: %v", fake.puts)
	assert.True(t, strings.HasPrefix(jsonObj, "application/json|"))
	assert.Contains(t, jsonObj, `"receiptNumber":"REC-20240725-0002"`)

	htmlObj, ok := fake.puts["receipts/v1/2024/07/25/REC-20240725-0002.html"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(htmlObj, "text/html"))
}

func TestArchiveDisabledAndFailures(t *testing.T) {
	var nilArchive *Archive
	assert.NoError(t, nilArchive.Store(context.Background(), sampleReceipt()))
	assert.NoError(t, NewArchive(&fakeS3{}, "", nil, nil).Store(context.Background(), sampleReceipt()))

	failing := NewArchive(&fakeS3{err: errors.New("access denied")}, "bucket", nil, nil)
	assert.Error(t, failing.Store(context.Background(), sampleReceipt()))
	assert.Error(t, NewArchive(&fakeS3{}, "bucket", nil, nil).Store(context.Background(), records.Receipt{}))
}
