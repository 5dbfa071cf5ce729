package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/docsmile-suite/internal/config"
	"github.com/wolfman30/docsmile-suite/internal/events"
	"github.com/wolfman30/docsmile-suite/internal/notify"
	"github.com/wolfman30/docsmile-suite/internal/receipts"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// Email providers accepted in EMAIL_PROVIDER.
const (
	EmailProviderStub     = "stub"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
)

// BuildEmailSender picks the receipt email transport. Misconfigured providers
// degrade to the logging stub so the console keeps working.
func BuildEmailSender(awsCfg aws.Config, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	switch cfg.EmailProvider {
	case EmailProviderSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
			ReplyTo:   cfg.EmailReplyTo,
		}, logger)
		if sender != nil {
			logger.Info("receipt email via sendgrid")
			return sender
		}
		logger.Warn("sendgrid selected without SENDGRID_API_KEY; using stub")
	case EmailProviderSES:
		if strings.TrimSpace(cfg.EmailFromAddress) == "" {
			logger.Warn("ses selected without EMAIL_FROM; using stub")
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
			ReplyTo:   cfg.EmailReplyTo,

			ConfigurationSet: cfg.SESConfigurationSet,
		}, logger)
		logger.Info("receipt email via ses")
		return sender
	case EmailProviderStub, "":
	default:
		logger.Warn("unknown EMAIL_PROVIDER; using stub", "provider", cfg.EmailProvider)
	}
	return notify.NewStubEmailSender(logger)
}

// BuildReceiptArchive returns nil when RECEIPTS_BUCKET is unset.
func BuildReceiptArchive(awsCfg aws.Config, cfg *appconfig.Config, renderer *receipts.Renderer, logger *logging.Logger) *receipts.Archive {
	if cfg == nil || strings.TrimSpace(cfg.ReceiptsBucket) == "" {
		return nil
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	return receipts.NewArchive(client, cfg.ReceiptsBucket, renderer, logger)
}

// BuildEventPublisher returns the SQS handler for delivered outbox entries, or
// nil when EVENTS_QUEUE_URL is unset.
func BuildEventPublisher(awsCfg aws.Config, cfg *appconfig.Config) *events.SQSPublisher {
	if cfg == nil || strings.TrimSpace(cfg.EventsQueueURL) == "" {
		return nil
	}
	return events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.EventsQueueURL)
}
