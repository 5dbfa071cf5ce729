package static

import (
	"context"
	"fmt"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

func (s *Store) GetProfile(ctx context.Context, creds records.Credentials) (records.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, err := s.account(creds)
	if err != nil {
		return records.User{}, err
	}
	return acct.user, nil
}

func (s *Store) UpdateProfile(ctx context.Context, creds records.Credentials, u records.ProfileUpdate) (records.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account(creds)
	if err != nil {
		return records.User{}, err
	}
	if u.Username != "" {
		if other := s.accountByUsername(u.Username); other != nil && other != acct {
			return records.User{}, records.FieldErrors{"username": "El nombre de usuario ya está en uso"}
		}
	}
	u.Apply(&acct.user)
	acct.user.UpdatedAt = s.timestamp()
	return acct.user, nil
}

func (s *Store) UpdateSecurityQuestion(ctx context.Context, creds records.Credentials, u records.SecurityQuestionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account(creds)
	if err != nil {
		return err
	}
	if !matches(acct.passwordHash, u.CurrentPassword) {
		return fmt.Errorf("static: security question: %w", records.ErrInvalidCredentials)
	}
	h, err := hash(u.Answer)
	if err != nil {
		return fmt.Errorf("static: hash answer: %w", err)
	}
	acct.answerHash = h
	acct.user.SecurityQuestion = &records.SecurityQuestion{Question: u.Question}
	acct.user.UpdatedAt = s.timestamp()
	return nil
}

func (s *Store) ClinicSettings(ctx context.Context, creds records.Credentials) (records.ClinicSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.ClinicSettings{}, err
	}
	return s.settings, nil
}

func (s *Store) UpdateClinicSettings(ctx context.Context, creds records.Credentials, u records.ClinicSettingsUpdate) (records.ClinicSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.ClinicSettings{}, err
	}
	u.Apply(&s.settings)
	return s.settings, nil
}

func (s *Store) ActivityStats(ctx context.Context, creds records.Credentials) (records.ActivityStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, err := s.account(creds)
	if err != nil {
		return records.ActivityStats{}, err
	}
	stats := s.activity
	if acct.user.LastLogin != "" {
		stats.LastLogin = acct.user.LastLogin
	}
	return stats, nil
}

func (s *Store) ChangePassword(ctx context.Context, creds records.Credentials, c records.PasswordChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.account(creds)
	if err != nil {
		return err
	}
	if !matches(acct.passwordHash, c.CurrentPassword) {
		return fmt.Errorf("static: change password: %w", records.ErrInvalidCredentials)
	}
	h, err := hash(c.NewPassword)
	if err != nil {
		return fmt.Errorf("static: hash password: %w", err)
	}
	acct.passwordHash = h
	acct.user.UpdatedAt = s.timestamp()
	return nil
}
