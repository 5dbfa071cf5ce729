package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/docsmile-suite/internal/session"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// SessionResolver turns a console token into its session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// SessionAuth requires a console bearer token and stores the resolved
// session in the request context.
func SessionAuth(resolver SessionResolver, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Token de acceso requerido")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			sess, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, session.ErrSessionNotFound) {
					logger.Error("session lookup failed", "error", err, "path", r.URL.Path)
				}
				writeError(w, http.StatusUnauthorized, "Sesión inválida o expirada")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}
