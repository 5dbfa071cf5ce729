package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

var login = records.LoginResult{
	Token: "upstream-token",
	User:  records.User{ID: "2", Username: "doctor", FullName: "Dr. Carlos Rodríguez"},
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)
	return NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	sess := Session{ID: "s1", UpstreamToken: "tok", User: login.User, Preferences: Preferences{SidebarCollapsed: true}}
	if err := store.Save(ctx, sess, time.Hour); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.UpstreamToken != "tok" || got.User.Username != "doctor" || !got.Preferences.SidebarCollapsed {
		t.Fatalf("unexpected session: %+v", got)
	}
	if ttl := mr.TTL("session:s1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 7, 25, 15, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Save(ctx, Session{ID: "s1"}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(ctx, "s1"); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}
	now = now.Add(time.Minute)
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	stores := map[string]Store{"memory": NewMemoryStore()}
	redisStore, _ := newRedisStore(t)
	stores["redis"] = redisStore

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			m, err := NewManager(store, "secret", time.Hour, logging.New("error"))
			if err != nil {
				t.Fatal(err)
			}
			ctx := context.Background()

			token, sess, err := m.Start(ctx, login)
			if err != nil {
				t.Fatal(err)
			}
			resolved, err := m.Resolve(ctx, token)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if resolved.ID != sess.ID || resolved.Credentials().Token != "upstream-token" {
				t.Fatalf("unexpected session: %+v", resolved)
			}

			updated, err := m.UpdatePreferences(ctx, sess.ID, Preferences{SidebarCollapsed: true})
			if err != nil {
				t.Fatal(err)
			}
			if !updated.Preferences.SidebarCollapsed {
				t.Fatal("expected preference to be stored")
			}

			if err := m.End(ctx, sess.ID); err != nil {
				t.Fatal(err)
			}
			if _, err := m.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("expected revoked session, got %v", err)
			}
		})
	}
}

func TestResolveRejectsForeignTokens(t *testing.T) {
	m, err := NewManager(NewMemoryStore(), "secret", time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_, sess, err := m.Start(ctx, login)
	if err != nil {
		t.Fatal(err)
	}

	sign := func(secret string, claims jwt.RegisteredClaims) string {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatal(err)
		}
		return signed
	}
	valid := jwt.RegisteredClaims{ID: sess.ID, Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": sign("other", valid),
		"wrong issuer": sign("secret", jwt.RegisteredClaims{ID: sess.ID, Issuer: "someone", ExpiresAt: valid.ExpiresAt}),
		"expired":      sign("secret", jwt.RegisteredClaims{ID: sess.ID, Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Resolve(ctx, token); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("expected ErrSessionNotFound, got %v", err)
			}
		})
	}
	if _, err := m.Resolve(ctx, sign("secret", valid)); err != nil {
		t.Fatalf("expected valid token to resolve, got %v", err)
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(NewMemoryStore(), " ", 0, nil); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
