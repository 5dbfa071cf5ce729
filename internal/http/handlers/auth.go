package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/audit"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/session"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// SessionManager issues and revokes console sessions.
type SessionManager interface {
	Start(ctx context.Context, login records.LoginResult) (string, session.Session, error)
	UpdatePreferences(ctx context.Context, id string, prefs session.Preferences) (session.Session, error)
	End(ctx context.Context, id string) error
}

// AuthHandler signs console users in and out and runs password recovery.
type AuthHandler struct {
	base
	backend  records.AuthBackend
	profile  records.ProfileBackend
	sessions SessionManager
}

func NewAuthHandler(backend records.AuthBackend, profile records.ProfileBackend, sessions SessionManager, deps Deps) *AuthHandler {
	return &AuthHandler{base: newBase(deps, "auth_handler"), backend: backend, profile: profile, sessions: sessions}
}

type loginResponse struct {
	Token       string              `json:"token"`
	User        records.User        `json:"user"`
	Preferences session.Preferences `json:"preferences"`
	ExpiresAt   string              `json:"expiresAt"`
}

// Login handles POST /api/auth/login. The upstream token stays in the
// session; the console only sees its own signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req records.LoginRequest
	if _, err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, "login", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, "login", err)
		return
	}

	result, err := h.backend.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	token, sess, err := h.sessions.Start(r.Context(), result)
	if err != nil {
		h.logger.Error("session not started", "error", err, "username", req.Username)
		jsonError(w, "No se pudo iniciar la sesión", http.StatusInternalServerError)
		return
	}
	h.record(r.WithContext(session.NewContext(r.Context(), sess)), audit.ActionLogin, "session", sess.ID, nil, nil)
	writeData(w, http.StatusOK, loginResponse{
		Token:       token,
		User:        sess.User,
		Preferences: sess.Preferences,
		ExpiresAt:   sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.fail(w, r, "logout", session.ErrSessionNotFound)
		return
	}
	if err := h.sessions.End(r.Context(), sess.ID); err != nil {
		h.fail(w, r, "logout", err)
		return
	}
	h.record(r, audit.ActionLogout, "session", sess.ID, nil, nil)
	writeMessage(w, http.StatusOK, "Sesión cerrada")
}

// Me returns the signed-in user as the system of record knows it now.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.backend.CurrentUser(r.Context(), creds(r))
	if err != nil {
		h.fail(w, r, "current_user", err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *AuthHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.fail(w, r, "get_preferences", session.ErrSessionNotFound)
		return
	}
	writeData(w, http.StatusOK, sess.Preferences)
}

func (h *AuthHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.fail(w, r, "update_preferences", session.ErrSessionNotFound)
		return
	}
	var prefs session.Preferences
	if _, err := decodeBody(r, &prefs); err != nil {
		h.badBody(w, r, "update_preferences", err)
		return
	}
	updated, err := h.sessions.UpdatePreferences(r.Context(), sess.ID, prefs)
	if err != nil {
		h.fail(w, r, "update_preferences", err)
		return
	}
	writeData(w, http.StatusOK, updated.Preferences)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var c records.PasswordChange
	if _, err := decodeBody(r, &c); err != nil {
		h.badBody(w, r, "change_password", err)
		return
	}
	fields := []byte(`{"currentPassword":"","newPassword":""}`)
	if err := c.Validate(); err != nil {
		h.fail(w, r, "change_password", err)
		return
	}
	err := h.profile.ChangePassword(r.Context(), creds(r), c)
	h.record(r, audit.ActionUpdate, "password", actor(r.Context()).ID, fields, err)
	if err != nil {
		h.fail(w, r, "change_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Contraseña actualizada exitosamente")
}

func (h *AuthHandler) ForgotVerify(w http.ResponseWriter, r *http.Request) {
	var req records.RecoveryRequest
	if _, err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, "forgot_verify", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, "forgot_verify", err)
		return
	}
	identity, err := h.backend.ForgotVerify(r.Context(), req.Username)
	if err != nil {
		h.fail(w, r, "forgot_verify", err)
		return
	}
	writeData(w, http.StatusOK, identity)
}

func (h *AuthHandler) VerifyAnswer(w http.ResponseWriter, r *http.Request) {
	var a records.SecurityAnswer
	if _, err := decodeBody(r, &a); err != nil {
		h.badBody(w, r, "verify_answer", err)
		return
	}
	if err := a.Validate(); err != nil {
		h.fail(w, r, "verify_answer", err)
		return
	}
	token, err := h.backend.VerifySecurityAnswer(r.Context(), a)
	if err != nil {
		h.fail(w, r, "verify_answer", err)
		return
	}
	writeData(w, http.StatusOK, records.ResetToken{ResetToken: token})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req records.PasswordReset
	if _, err := decodeBody(r, &req); err != nil {
		h.badBody(w, r, "reset_password", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, "reset_password", err)
		return
	}
	err := h.backend.ResetPassword(r.Context(), req)
	h.record(r, audit.ActionReset, "password", "", nil, err)
	if err != nil {
		h.fail(w, r, "reset_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Contraseña restablecida exitosamente")
}

// Taxonomies handles GET /api/taxonomies.
func Taxonomies(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, taxonomy.All())
}
