package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/docsmile-suite/internal/config"
	"github.com/wolfman30/docsmile-suite/internal/notify"
	"github.com/wolfman30/docsmile-suite/internal/records/rest"
	"github.com/wolfman30/docsmile-suite/internal/records/static"
	"github.com/wolfman30/docsmile-suite/internal/session"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logging.New("error"), true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, logging.New("error"), true))
}

func TestBuildRedisClientVerifiesConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	store := BuildSessionStore(client, logging.New("error"))
	_, ok := store.(*session.RedisStore)
	assert.True(t, ok, "expected redis-backed store")
}

func TestBuildRedisClientUnreachableReturnsNil(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &appconfig.Config{RedisAddr: addr}
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, logging.New("error"), true))
}

func TestBuildSessionStoreFallsBackToMemory(t *testing.T) {
	store := BuildSessionStore(nil, logging.New("error"))
	_, ok := store.(*session.MemoryStore)
	assert.True(t, ok, "expected memory store")
}

func TestBuildBackendSelectsByDataMode(t *testing.T) {
	clock, err := BuildClock(&appconfig.Config{ClinicTimezone: "America/Lima"})
	require.NoError(t, err)

	backend, err := BuildBackend(&appconfig.Config{DataMode: appconfig.DataModeStatic}, clock, nil, logging.New("error"))
	require.NoError(t, err)
	_, ok := backend.(*static.Store)
	assert.True(t, ok)

	backend, err = BuildBackend(&appconfig.Config{
		DataMode:        appconfig.DataModeLive,
		UpstreamBaseURL: "http://localhost:5000/api",
		UpstreamTimeout: time.Second,
	}, clock, nil, logging.New("error"))
	require.NoError(t, err)
	_, ok = backend.(*rest.Client)
	assert.True(t, ok)
}

func TestBuildBackendRejectsUnknownMode(t *testing.T) {
	_, err := BuildBackend(&appconfig.Config{DataMode: "mirror"}, nil, nil, logging.New("error"))
	assert.Error(t, err)

	_, err = BuildBackend(nil, nil, nil, logging.New("error"))
	assert.Error(t, err)
}

func TestBuildBackendLiveRequiresBaseURL(t *testing.T) {
	_, err := BuildBackend(&appconfig.Config{DataMode: appconfig.DataModeLive}, nil, nil, logging.New("error"))
	assert.Error(t, err)
}

func TestBuildEmailSenderFallsBackToStub(t *testing.T) {
	cases := []appconfig.Config{
		{EmailProvider: ""},
		{EmailProvider: EmailProviderSendGrid},
		{EmailProvider: EmailProviderSES},
		{EmailProvider: "carrier-pigeon"},
	}
	for _, cfg := range cases {
		cfg := cfg
		sender := BuildEmailSender(aws.Config{Region: "us-east-1"}, &cfg, logging.New("error"))
		_, ok := sender.(*notify.StubEmailSender)
		assert.True(t, ok, "provider %q", cfg.EmailProvider)
	}
}

func TestBuildEmailSenderSendGrid(t *testing.T) {
	cfg := &appconfig.Config{EmailProvider: EmailProviderSendGrid, SendGridAPIKey: "SG.test", EmailFromAddress: "caja@docsmile.pe"}
	_, ok := BuildEmailSender(aws.Config{Region: "us-east-1"}, cfg, logging.New("error")).(*notify.SendGridSender)
	assert.True(t, ok)
}

func TestBuildEmailSenderSES(t *testing.T) {
	cfg := &appconfig.Config{EmailProvider: EmailProviderSES, EmailFromAddress: "caja@docsmile.pe"}
	_, ok := BuildEmailSender(aws.Config{Region: "us-east-1"}, cfg, logging.New("error")).(*notify.SESSender)
	assert.True(t, ok)
}

func TestOptionalAWSBuildersDisabledWithoutTargets(t *testing.T) {
	awsCfg := aws.Config{Region: "us-east-1"}
	assert.Nil(t, BuildReceiptArchive(awsCfg, &appconfig.Config{}, nil, logging.New("error")))
	assert.Nil(t, BuildEventPublisher(awsCfg, &appconfig.Config{}))

	archive := BuildReceiptArchive(awsCfg, &appconfig.Config{ReceiptsBucket: "receipts"}, nil, logging.New("error"))
	require.NotNil(t, archive)
	assert.True(t, archive.Enabled())
	assert.NotNil(t, BuildEventPublisher(awsCfg, &appconfig.Config{EventsQueueURL: "http://localhost:4566/000000000000/events"}))
}
