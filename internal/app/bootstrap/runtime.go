package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	appconfig "github.com/wolfman30/docsmile-suite/internal/config"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/records/rest"
	"github.com/wolfman30/docsmile-suite/internal/records/static"
	"github.com/wolfman30/docsmile-suite/internal/session"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore keeps sessions in Redis when reachable and falls back to
// process memory otherwise.
func BuildSessionStore(redisClient *redis.Client, logger *logging.Logger) session.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient == nil {
		logger.Warn("sessions kept in memory; they will not survive a restart")
		return session.NewMemoryStore()
	}
	logger.Info("sessions stored in redis")
	return session.NewRedisStore(redisClient)
}

// BuildClock returns the clinic clock for the configured zone.
func BuildClock(cfg *appconfig.Config) (*clinictime.Clock, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	return clinictime.New(cfg.ClinicTimezone)
}

// BuildBackend selects the system of record from DATA_MODE.
func BuildBackend(cfg *appconfig.Config, clock *clinictime.Clock, observer rest.Observer, logger *logging.Logger) (records.Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.DataMode {
	case appconfig.DataModeStatic:
		store, err := static.New(clock, logger)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: static backend: %w", err)
		}
		logger.Warn("serving fixture data; changes are lost on restart")
		return store, nil
	case appconfig.DataModeLive, "":
		opts := []rest.Option{}
		if observer != nil {
			opts = append(opts, rest.WithObserver(observer))
		}
		client, err := rest.New(rest.Config{
			BaseURL: cfg.UpstreamBaseURL,
			Timeout: cfg.UpstreamTimeout,
		}, clock, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: rest backend: %w", err)
		}
		logger.Info("forwarding to clinic api", "base_url", cfg.UpstreamBaseURL)
		return client, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown DATA_MODE %q", cfg.DataMode)
	}
}
