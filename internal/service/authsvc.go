package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"lunastudios/internal/auth"
	"lunastudios/internal/domain"
)

type AuthUsersStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string, role domain.Role) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateProfile(ctx context.Context, userID, name, phone, address string, preferences json.RawMessage) (domain.User, error)
}

type ResetTokensStore interface {
	CreateResetToken(ctx context.Context, token domain.PasswordResetToken) error
	GetResetTokenByHash(ctx context.Context, tokenHash string) (domain.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, tokenHash string, when time.Time) error
}

type AuthService struct {
	Users    AuthUsersStore
	Resets   ResetTokensStore
	Tokens   auth.TokenCodec
	Mailer   Mailer
	Activity ActivityLog
	Dispatch *Dispatcher

	// ResetBaseURL is the frontend page that collects the new password;
	// the raw token is appended as a query parameter.
	ResetBaseURL string
	ResetTTL     time.Duration
	Now          func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Register(ctx context.Context, email, name, password, phone string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	fields := map[string]string{}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "valid email required"
	}
	if name == "" {
		fields["name"] = "required"
	}
	if len(password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		return domain.User{}, "", domain.NewValidationError(fields)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	u, err := s.Users.CreateUser(ctx, email, name, passwordHash, domain.RoleClient)
	if err != nil {
		return domain.User{}, "", err
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		if updated, err := s.Users.UpdateProfile(ctx, u.ID, u.Name, phone, "", nil); err == nil {
			u = updated
		}
	}

	token, err := s.Tokens.Issue(u)
	if err != nil {
		return domain.User{}, "", err
	}

	s.Dispatch.Go("welcome email", func(ctx context.Context) error {
		subject, body := welcomeEmail(u.Name)
		return s.Mailer.Send(ctx, u.Email, subject, body)
	})
	s.logActivity(ctx, u.ID, "register", "user", u.ID, nil)

	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if !u.IsActive {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.User)
	if err != nil {
		return domain.User{}, "", err
	}

	when := s.now()
	s.Dispatch.Go("stamp last login", func(ctx context.Context) error {
		return s.Users.SetLastLogin(ctx, u.ID, when)
	})
	s.logActivity(ctx, u.ID, "login", "user", u.ID, nil)

	return u.User, token, nil
}

// RefreshToken trades a still-valid token for a fresh one, re-reading the
// user so a deactivated account cannot keep renewing itself.
func (s *AuthService) RefreshToken(ctx context.Context, actorID string) (domain.User, string, error) {
	u, err := s.Users.GetUserByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrUnauthorized
		}
		return domain.User{}, "", err
	}
	if !u.IsActive {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	token, err := s.Tokens.Issue(u)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actorID, current, next string) error {
	if len(next) < 6 {
		return domain.NewValidationError(map[string]string{"new_password": "must be at least 6 characters"})
	}

	u, err := s.Users.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	withHash, err := s.Users.GetUserByEmail(ctx, u.Email)
	if err != nil {
		return err
	}

	ok, err := auth.VerifyPassword(withHash.PasswordHash, current)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, actorID, hash); err != nil {
		return err
	}

	s.logActivity(ctx, actorID, "change_password", "user", actorID, nil)
	return nil
}

// ForgotPassword always reports success so callers cannot tell which
// emails have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.NewValidationError(map[string]string{"email": "required"})
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if !u.IsActive {
		return nil
	}

	raw, tokenHash, err := newResetToken()
	if err != nil {
		return err
	}

	ttl := s.ResetTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}
	now := s.now()
	if err := s.Resets.CreateResetToken(ctx, domain.PasswordResetToken{
		UserID:      u.ID,
		TokenHash:   tokenHash,
		SentToEmail: u.Email,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}); err != nil {
		return err
	}

	resetURL := s.ResetBaseURL + "?token=" + url.QueryEscape(raw)
	s.Dispatch.Go("password reset email", func(ctx context.Context) error {
		subject, body := passwordResetEmail(u.Name, resetURL)
		return s.Mailer.Send(ctx, u.Email, subject, body)
	})
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if len(newPassword) < 6 {
		return domain.NewValidationError(map[string]string{"password": "must be at least 6 characters"})
	}

	tokenHash := hashResetToken(rawToken)
	token, err := s.Resets.GetResetTokenByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}
	if token.UsedAt != nil {
		return domain.ErrResetTokenInvalid
	}
	if token.ExpiresAt.Before(s.now()) {
		return domain.ErrResetTokenExpired
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return err
	}
	if err := s.Resets.MarkResetTokenUsed(ctx, tokenHash, s.now()); err != nil {
		return err
	}

	s.logActivity(ctx, token.UserID, "reset_password", "user", token.UserID, nil)
	return nil
}

func (s *AuthService) logActivity(ctx context.Context, userID, action, entityType, entityID string, details json.RawMessage) {
	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}

func newResetToken() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("read token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
