// Package rest is the live system-of-record client. Every call forwards the
// caller's credentials as a bearer token and decodes the {success, data,
// message} envelope.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

var restTracer = otel.Tracer("docsmile.internal.records.rest")

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 4 << 20
)

// Observer receives one sample per upstream call.
type Observer interface {
	ObserveUpstream(operation string, status int, elapsed time.Duration)
}

// Config holds configuration for the REST client.
type Config struct {
	BaseURL string // e.g. http://localhost:5000/api
	Timeout time.Duration
}

// Client implements records.Backend against the clinic REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      *clinictime.Clock
	logger     *logging.Logger
	observer   Observer
}

var _ records.Backend = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver reports call outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New creates a REST client.
func New(cfg Config, clock *clinictime.Clock, logger *logging.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("rest: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("rest: invalid BaseURL: %w", err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		c, err := clinictime.New("")
		if err != nil {
			return nil, err
		}
		clock = c
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		clock:      clock,
		logger:     logger.Component("rest_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the response wrapper of every endpoint. Login and password
// recovery put their payload at the top level instead of under data.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Token      string          `json:"token,omitempty"`
	User       json.RawMessage `json:"user,omitempty"`
	ResetToken string          `json:"resetToken,omitempty"`
}

// call describes one upstream request.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	creds    *records.Credentials
	fallback string
}

func (c *Client) do(ctx context.Context, in call) (envelope, error) {
	ctx, span := restTracer.Start(ctx, "rest."+in.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", in.method),
		attribute.String("docsmile.upstream.path", in.path),
	)

	start := time.Now()
	env, status, err := c.roundTrip(ctx, in)
	if c.observer != nil {
		c.observer.ObserveUpstream(in.op, status, time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return envelope{}, fmt.Errorf("rest: %s: %w", in.op, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	return env, nil
}

func (c *Client) roundTrip(ctx context.Context, in call) (envelope, int, error) {
	if in.creds != nil && !in.creds.Valid() {
		return envelope{}, 0, records.ErrUnauthorized
	}

	endpoint := c.baseURL + in.path
	if len(in.query) > 0 {
		endpoint += "?" + in.query.Encode()
	}

	var reader io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return envelope{}, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, endpoint, reader)
	if err != nil {
		return envelope{}, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if in.creds != nil {
		req.Header.Set("Authorization", in.creds.BearerHeader())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return envelope{}, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = in.fallback
		}
		return envelope{}, resp.StatusCode, &records.UpstreamError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		c.logger.Warn("unexpected upstream response shape", "operation", in.op, "status", resp.StatusCode, "error", decodeErr)
		return envelope{}, resp.StatusCode, &records.UpstreamError{Status: http.StatusBadGateway, Message: in.fallback}
	}
	return env, resp.StatusCode, nil
}

// decode unmarshals the data member into T. A missing data member yields the zero value.
func decode[T any](c *Client, op string, env envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		c.logger.Warn("unexpected upstream data shape", "operation", op, "error", err)
		return out, fmt.Errorf("rest: %s: failed to decode response: %w", op, err)
	}
	return out, nil
}

func get[T any](ctx context.Context, c *Client, creds records.Credentials, op, path string, query url.Values, fallback string) (T, error) {
	env, err := c.do(ctx, call{op: op, method: http.MethodGet, path: path, query: query, creds: &creds, fallback: fallback})
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](c, op, env)
}

func send[T any](ctx context.Context, c *Client, creds records.Credentials, op, method, path string, body any, fallback string) (T, error) {
	env, err := c.do(ctx, call{op: op, method: method, path: path, body: body, creds: &creds, fallback: fallback})
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](c, op, env)
}

func (c *Client) exec(ctx context.Context, creds records.Credentials, op, method, path string, body any, fallback string) error {
	_, err := c.do(ctx, call{op: op, method: method, path: path, body: body, creds: &creds, fallback: fallback})
	return err
}

func segment(value string) string {
	return url.PathEscape(value)
}
