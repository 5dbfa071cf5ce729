package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/docsmile-suite/internal/session"
)

type stubResolver struct {
	sessions map[string]session.Session
	err      error
}

func (s stubResolver) Resolve(ctx context.Context, token string) (session.Session, error) {
	if s.err != nil {
		return session.Session{}, s.err
	}
	sess, ok := s.sessions[token]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	return sess, nil
}

func TestSessionAuth(t *testing.T) {
	resolver := stubResolver{sessions: map[string]session.Session{"good": {ID: "s1", UpstreamToken: "up"}}}

	tests := []struct {
		name     string
		resolver SessionResolver
		header   string
		want     int
	}{
		{name: "missing header", resolver: resolver, want: http.StatusUnauthorized},
		{name: "not bearer", resolver: resolver, header: "Basic abc", want: http.StatusUnauthorized},
		{name: "unknown token", resolver: resolver, header: "Bearer bad", want: http.StatusUnauthorized},
		{name: "store failure", resolver: stubResolver{err: errors.New("redis down")}, header: "Bearer good", want: http.StatusUnauthorized},
		{name: "valid", resolver: resolver, header: "Bearer good", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			SessionAuth(tt.resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sess, ok := session.FromContext(r.Context())
				if !ok || sess.Credentials().Token != "up" {
					t.Fatalf("expected session in context")
				}
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
