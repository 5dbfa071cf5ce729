package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/docsmile-suite/internal/receipts"
	"github.com/wolfman30/docsmile-suite/internal/records"
)

func TestNewSendGridSender(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "caja@docsmile.pe"}, nil))

	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "caja@docsmile.pe"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, DefaultFromName, sender.fromName)

	custom := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromName: "HappyDent"}, nil)
	assert.Equal(t, "HappyDent", custom.fromName)
}

func TestSendGridSender_Unconfigured(t *testing.T) {
	var nilSender *SendGridSender
	assert.Error(t, nilSender.Send(context.Background(), EmailMessage{To: "a@b.pe"}))
	assert.Error(t, (&SendGridSender{}).Send(context.Background(), EmailMessage{To: "a@b.pe"}))
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := newSESSender(fake, SESConfig{FromEmail: "caja@docsmile.pe"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "ana@example.com",
		ToName:  "Ana García",
		Subject: "Comprobante",
		Body:    "texto",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, fake.input)
	assert.Equal(t, "DocSmile Suite <caja@docsmile.pe>", aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{"Ana García <ana@example.com>"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "texto", aws.ToString(fake.input.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))
}

func TestSESSender_TagsAndRouting(t *testing.T) {
	fake := &fakeSES{}
	sender := newSESSender(fake, SESConfig{
		FromEmail:        "caja@docsmile.pe",
		FromName:         "HappyDent",
		ReplyTo:          "recepcion@docsmile.pe",
		ConfigurationSet: "receipts",
	}, nil)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{
		To:        "ana@example.com",
		Subject:   "Comprobante",
		Category:  "receipt",
		Reference: "REC 2024/07",
	}))
	assert.Equal(t, "HappyDent <caja@docsmile.pe>", aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{"recepcion@docsmile.pe"}, fake.input.ReplyToAddresses)
	assert.Equal(t, "receipts", aws.ToString(fake.input.ConfigurationSetName))
	require.Len(t, fake.input.EmailTags, 2)
	assert.Equal(t, "receipt", aws.ToString(fake.input.EmailTags[0].Value))
	assert.Equal(t, "REC_2024_07", aws.ToString(fake.input.EmailTags[1].Value))
	assert.Nil(t, fake.input.Content.Simple.Body.Html)
}

func TestSESSender_Errors(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))

	sender := newSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "caja@docsmile.pe"}, nil)
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "ana@example.com"}))
	assert.Error(t, sender.Send(context.Background(), EmailMessage{}))
}

func TestStubEmailSender_RecordsMessages(t *testing.T) {
	stub := NewStubEmailSender(nil)
	require.NoError(t, stub.Send(context.Background(), EmailMessage{To: "ana@example.com", Subject: "Hola"}))
	assert.Error(t, stub.Send(context.Background(), EmailMessage{}))

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hola", sent[0].Subject)
}

func TestReceiptMailer_SendReceipt(t *testing.T) {
	stub := NewStubEmailSender(nil)
	mailer := NewReceiptMailer(stub, receipts.NewRenderer(nil), nil)
	receipt := records.Receipt{
		ReceiptNumber: "REC-20240725-0001",
		Date:          "2024-07-25T15:00:00Z",
		Patient:       records.PartyRef{Name: "Ana García", DNI: "47852369"},
		Totals:        records.ReceiptTotals{Subtotal: 80, FinalAmount: 80, PaymentMethod: "efectivo"},
		ClinicInfo:    records.ClinicInfo{Name: "HappyDent"},
	}

	require.NoError(t, mailer.SendReceipt(context.Background(), " ana@example.com ", receipt))
	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@example.com", sent[0].To)
	assert.Equal(t, "Ana García", sent[0].ToName)
	assert.Equal(t, "Comprobante de Pago REC-20240725-0001 - HappyDent", sent[0].Subject)
	assert.Equal(t, "receipt", sent[0].Category)
	assert.Equal(t, "REC-20240725-0001", sent[0].Reference)
	assert.Contains(t, sent[0].HTML, "S/ 80.00")
	assert.Contains(t, sent[0].Body, "TOTAL: S/ 80.00")
}

func TestReceiptMailer_RejectsBadAddress(t *testing.T) {
	stub := NewStubEmailSender(nil)
	mailer := NewReceiptMailer(stub, nil, nil)

	err := mailer.SendReceipt(context.Background(), "no-es-correo", records.Receipt{})
	fe, ok := records.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "email")
	assert.Empty(t, stub.Sent())

	var nilMailer *ReceiptMailer
	assert.Error(t, nilMailer.SendReceipt(context.Background(), "ana@example.com", records.Receipt{}))
}
