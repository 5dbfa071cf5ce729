package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

const (
	DefaultTTL = 12 * time.Hour
	issuer     = "docsmile-console"
)

// Manager issues console tokens and resolves them back to sessions. A console
// token is an HS256 JWT whose jti is the session id.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *logging.Logger
}

func NewManager(store Store, secret string, ttl time.Duration, logger *logging.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session: secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Component("session"),
	}, nil
}

// Start records a new session for a successful login and returns the signed
// console token.
func (m *Manager) Start(ctx context.Context, login records.LoginResult) (string, Session, error) {
	now := m.now().UTC()
	sess := Session{
		ID:            uuid.NewString(),
		UpstreamToken: login.Token,
		User:          login.User,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return "", Session{}, err
	}

	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   login.User.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("session: sign token: %w", err)
	}
	m.logger.Info("session started", "session_id", sess.ID, "user_id", login.User.ID)
	return signed, sess, nil
}

// Resolve verifies a console token and loads its session.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return Session{}, ErrSessionNotFound
	}
	return m.store.Load(ctx, claims.ID)
}

// UpdatePreferences replaces the stored preferences, keeping the remaining TTL.
func (m *Manager) UpdatePreferences(ctx context.Context, id string, prefs Preferences) (Session, error) {
	sess, err := m.store.Load(ctx, id)
	if err != nil {
		return Session{}, err
	}
	remaining := sess.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return Session{}, ErrSessionNotFound
	}
	sess.Preferences = prefs
	if err := m.store.Save(ctx, sess, remaining); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// End revokes the session.
func (m *Manager) End(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info("session ended", "session_id", id)
	return nil
}
