package static

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

// Login checks the demo credentials and issues a static-token-<unixmillis>-<username> token.
func (s *Store) Login(ctx context.Context, req records.LoginRequest) (records.LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accountByUsername(req.Username)
	if acct == nil || !matches(acct.passwordHash, req.Password) {
		s.logger.Warn("static login rejected", "username", req.Username)
		return records.LoginResult{}, records.ErrInvalidCredentials
	}
	now := s.clock.Now()
	token := fmt.Sprintf("static-token-%d-%s", now.UnixMilli(), acct.user.Username)
	s.tokens[token] = acct.user.ID
	acct.user.LastLogin = now.UTC().Format(time.RFC3339)
	return records.LoginResult{Token: token, User: acct.user}, nil
}

func (s *Store) CurrentUser(ctx context.Context, creds records.Credentials) (records.User, error) {
	return s.GetProfile(ctx, creds)
}

func (s *Store) ForgotVerify(ctx context.Context, username string) (records.RecoveryIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct := s.accountByUsername(username)
	if acct == nil {
		return records.RecoveryIdentity{}, notFound("user", username)
	}
	id := records.RecoveryIdentity{UserID: acct.user.ID, Username: acct.user.Username, Email: acct.user.Email}
	if q := acct.user.SecurityQuestion; q != nil && q.Question != "" {
		question := q.Question
		id.SecurityQuestion = &question
		id.HasSecurityQuestion = true
	}
	return id, nil
}

// VerifySecurityAnswer accepts any answer in demo mode.
func (s *Store) VerifySecurityAnswer(ctx context.Context, a records.SecurityAnswer) (string, error) {
	return ResetToken, nil
}

// ResetPassword accepts the demo reset token and changes nothing.
func (s *Store) ResetPassword(ctx context.Context, r records.PasswordReset) error {
	if r.ResetToken != ResetToken {
		return fmt.Errorf("static: reset password: %w", records.ErrUnauthorized)
	}
	return nil
}
