package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// S3API is the subset of the S3 client used by Archive.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive stores issued receipts in S3 as JSON plus the rendered HTML. With
// no bucket every call is a no-op.
type Archive struct {
	bucket   string
	s3Client S3API
	renderer *Renderer
	logger   *logging.Logger
}

func NewArchive(s3Client S3API, bucket string, renderer *Renderer, logger *logging.Logger) *Archive {
	if logger == nil {
		logger = logging.Default()
	}
	return &Archive{bucket: bucket, s3Client: s3Client, renderer: renderer, logger: logger.Component("receipt_archive")}
}

// Enabled reports whether archival is configured.
func (a *Archive) Enabled() bool {
	return a != nil && a.bucket != "" && a.s3Client != nil
}

// Key returns the object key prefix for a receipt, partitioned by issue day.
func Key(receipt records.Receipt) string {
	day := "undated"
	if t, err := time.Parse(time.RFC3339, receipt.Date); err == nil {
		day = t.UTC().Format("2006/01/02")
	}
	return fmt.Sprintf("receipts/v1/%s/%s", day, receipt.ReceiptNumber)
}

// Store writes <key>.json and, when a renderer is set, <key>.html.
func (a *Archive) Store(ctx context.Context, receipt records.Receipt) error {
	if !a.Enabled() {
		return nil
	}
	if receipt.ReceiptNumber == "" {
		return fmt.Errorf("receipts: receipt number required")
	}

	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("receipts: marshal receipt: %w", err)
	}
	key := Key(receipt)
	if err := a.put(ctx, key+".json", data, "application/json"); err != nil {
		return err
	}
	if a.renderer != nil {
		page, err := a.renderer.HTML(receipt)
		if err != nil {
			return err
		}
		if err := a.put(ctx, key+".html", page, "text/html; charset=utf-8"); err != nil {
			return err
		}
	}
	a.logger.Info("archived receipt to S3", "receipt", receipt.ReceiptNumber, "s3_key", key)
	return nil
}

func (a *Archive) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("receipts: s3 put %s: %w", key, err)
	}
	return nil
}
