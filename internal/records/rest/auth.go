package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

// Login exchanges credentials for an upstream token. Rejections from the
// backend are reported as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, req records.LoginRequest) (records.LoginResult, error) {
	env, err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/auth/login", body: req, fallback: "Error al iniciar sesión"})
	if err != nil {
		var upstream *records.UpstreamError
		if errors.As(err, &upstream) && (upstream.Status == http.StatusUnauthorized || upstream.Status == http.StatusBadRequest) {
			return records.LoginResult{}, fmt.Errorf("rest: login: %w", records.ErrInvalidCredentials)
		}
		return records.LoginResult{}, err
	}

	result := records.LoginResult{Token: env.Token}
	if len(env.User) > 0 {
		if err := json.Unmarshal(env.User, &result.User); err != nil {
			return records.LoginResult{}, fmt.Errorf("rest: login: failed to decode user: %w", err)
		}
	}
	if result.Token == "" {
		nested, err := decode[records.LoginResult](c, "login", env)
		if err != nil {
			return records.LoginResult{}, err
		}
		result = nested
	}
	if result.Token == "" {
		return records.LoginResult{}, fmt.Errorf("rest: login: %w", records.ErrInvalidCredentials)
	}
	return result, nil
}

// CurrentUser resolves the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context, creds records.Credentials) (records.User, error) {
	env, err := c.do(ctx, call{op: "current_user", method: http.MethodGet, path: "/auth/profile", creds: &creds, fallback: "Error al obtener usuario"})
	if err != nil {
		return records.User{}, err
	}
	if len(env.User) > 0 {
		var u records.User
		if err := json.Unmarshal(env.User, &u); err != nil {
			return records.User{}, fmt.Errorf("rest: current_user: failed to decode user: %w", err)
		}
		return u, nil
	}
	return decode[records.User](c, "current_user", env)
}

func (c *Client) ForgotVerify(ctx context.Context, username string) (records.RecoveryIdentity, error) {
	env, err := c.do(ctx, call{
		op:       "forgot_verify",
		method:   http.MethodPost,
		path:     "/auth/forgot-password/verify",
		body:     records.RecoveryRequest{Username: username},
		fallback: "Usuario no encontrado",
	})
	if err != nil {
		return records.RecoveryIdentity{}, err
	}
	return decode[records.RecoveryIdentity](c, "forgot_verify", env)
}

// VerifySecurityAnswer returns the reset token issued for a correct answer.
func (c *Client) VerifySecurityAnswer(ctx context.Context, a records.SecurityAnswer) (string, error) {
	env, err := c.do(ctx, call{
		op:       "verify_security_answer",
		method:   http.MethodPost,
		path:     "/auth/forgot-password/answer",
		body:     a,
		fallback: "Respuesta incorrecta",
	})
	if err != nil {
		return "", err
	}
	if env.ResetToken != "" {
		return env.ResetToken, nil
	}
	token, err := decode[records.ResetToken](c, "verify_security_answer", env)
	if err != nil {
		return "", err
	}
	if token.ResetToken == "" {
		return "", fmt.Errorf("rest: verify_security_answer: %w", records.ErrUnauthorized)
	}
	return token.ResetToken, nil
}

func (c *Client) ResetPassword(ctx context.Context, r records.PasswordReset) error {
	_, err := c.do(ctx, call{
		op:       "reset_password",
		method:   http.MethodPost,
		path:     "/auth/forgot-password/reset",
		body:     r,
		fallback: "Error al restablecer contraseña",
	})
	return err
}
