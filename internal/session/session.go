// Package session keeps the server-side record of a signed-in console user:
// the upstream token, the user and their UI preferences.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

// ErrSessionNotFound is returned for unknown, expired or revoked sessions.
var ErrSessionNotFound = errors.New("session: not found")

// Preferences are per-user UI settings.
type Preferences struct {
	SidebarCollapsed bool `json:"sidebarCollapsed"`
}

// Session is one signed-in console user.
type Session struct {
	ID            string       `json:"id"`
	UpstreamToken string       `json:"upstreamToken"`
	User          records.User `json:"user"`
	Preferences   Preferences  `json:"preferences"`
	CreatedAt     time.Time    `json:"createdAt"`
	ExpiresAt     time.Time    `json:"expiresAt"`
}

// Credentials returns what the system of record needs to act for the user.
func (s Session) Credentials() records.Credentials {
	return records.Credentials{Token: s.UpstreamToken}
}

// Store persists sessions until they expire.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
