package notify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES only accepts ASCII letters, digits, underscores, dashes, dots and
// at-signs in tag values.
var sesTagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.@-]`)

// SESSender sends email through Amazon SES v2.
type SESSender struct {
	client           sesAPI
	from             string
	replyTo          string
	configurationSet string
	logger           *logging.Logger
}

type SESConfig struct {
	FromEmail string
	FromName  string
	ReplyTo   string
	// ConfigurationSet routes bounce and delivery notifications.
	ConfigurationSet string
}

// NewSESSender returns nil when client is nil.
func NewSESSender(client *sesv2.Client, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	return newSESSender(client, cfg, logger)
}

func newSESSender(client sesAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if logger == nil {
		logger = logging.Default()
	}
	name := cfg.FromName
	if name == "" {
		name = DefaultFromName
	}
	return &SESSender{
		client:           client,
		from:             fmt.Sprintf("%s <%s>", name, cfg.FromEmail),
		replyTo:          cfg.ReplyTo,
		configurationSet: cfg.ConfigurationSet,
		logger:           logger.Component("ses"),
	}
}

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}
	if msg.To == "" {
		return fmt.Errorf("notify: recipient required")
	}

	output, err := s.client.SendEmail(ctx, s.input(msg))
	if err != nil {
		s.logger.Error("SES send failed", "error", err, "to", msg.To, "reference", msg.Reference)
		return fmt.Errorf("notify: SES send failed: %w", err)
	}

	s.logger.Info("email sent via SES", "to", msg.To, "subject", msg.Subject, "reference", msg.Reference, "message_id", aws.ToString(output.MessageId))
	return nil
}

func (s *SESSender) input(msg EmailMessage) *sesv2.SendEmailInput {
	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}

	body := &types.Body{}
	if msg.Body != "" {
		body.Text = utf8Content(msg.Body)
	}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}

	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: utf8Content(msg.Subject), Body: body},
		},
		EmailTags: sesTags(msg),
	}
	if s.replyTo != "" {
		in.ReplyToAddresses = []string{s.replyTo}
	}
	if s.configurationSet != "" {
		in.ConfigurationSetName = aws.String(s.configurationSet)
	}
	return in
}

func sesTags(msg EmailMessage) []types.MessageTag {
	var tags []types.MessageTag
	add := func(name, value string) {
		if value = sesTagUnsafe.ReplaceAllString(value, "_"); value != "" {
			tags = append(tags, types.MessageTag{Name: aws.String(name), Value: aws.String(value)})
		}
	}
	add("category", msg.Category)
	add("reference", msg.Reference)
	return tags
}

func utf8Content(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

var _ EmailSender = (*SESSender)(nil)
