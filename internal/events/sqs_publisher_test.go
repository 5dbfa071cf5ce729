package events

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisherSendsEnvelope(t *testing.T) {
	fake := &fakeSQS{}
	p := &SQSPublisher{client: fake, queueURL: "http://localhost:4566/000000000000/clinic-events"}

	entry := OutboxEntry{
		ID:        uuid.New(),
		Aggregate: Aggregate("appointment", "a1"),
		EventType: "clinic.appointment.booked.v1",
		Payload:   []byte(`{"event_type":"clinic.appointment.booked.v1"}`),
	}
	if err := p.Handle(context.Background(), entry); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if aws.ToString(fake.input.QueueUrl) != p.queueURL {
		t.Fatalf("unexpected queue: %s", aws.ToString(fake.input.QueueUrl))
	}
	if aws.ToString(fake.input.MessageBody) != string(entry.Payload) {
		t.Fatalf("unexpected body: %s", aws.ToString(fake.input.MessageBody))
	}
	want := map[string]string{
		"event_type":     "clinic.appointment.booked.v1",
		"aggregate":      "appointment:a1",
		"aggregate_type": "appointment",
		"aggregate_id":   "a1",
		"source":         Source,
	}
	for key, value := range want {
		attr, ok := fake.input.MessageAttributes[key]
		if !ok || aws.ToString(attr.StringValue) != value {
			t.Fatalf("attribute %s = %v, want %s", key, attr.StringValue, value)
		}
	}
}

func TestSQSPublisherWrapsErrors(t *testing.T) {
	boom := errors.New("throttled")
	p := &SQSPublisher{client: &fakeSQS{err: boom}, queueURL: "q"}
	err := p.Handle(context.Background(), OutboxEntry{ID: uuid.New(), Aggregate: "odd", EventType: "clinic.payment.processed.v1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
