package events

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher delivers outbox envelopes to an SQS queue. Consumers can
// filter on the event_type and aggregate_type attributes without decoding
// the body.
type SQSPublisher struct {
	client   sqsSender
	queueURL string
}

func NewSQSPublisher(client *sqs.Client, queueURL string) *SQSPublisher {
	if client == nil {
		panic("events: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("events: SQS queueURL cannot be empty")
	}
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) Handle(ctx context.Context, entry OutboxEntry) error {
	attrs := map[string]types.MessageAttributeValue{
		"event_type": stringAttr(entry.EventType),
		"aggregate":  stringAttr(entry.Aggregate),
		"source":     stringAttr(Source),
	}
	if kind, id, ok := SplitAggregate(entry.Aggregate); ok {
		attrs["aggregate_type"] = stringAttr(kind)
		attrs["aggregate_id"] = stringAttr(id)
	}
	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(entry.Payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("events: send %s %s: %w", entry.EventType, entry.ID, err)
	}
	return nil
}

func stringAttr(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
}
