package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
)

type stubAuthUsers struct {
	createUser     func(context.Context, string, string, string, domain.Role) (domain.User, error)
	getUserByEmail func(context.Context, string) (domain.UserWithPassword, error)
}

func (s *stubAuthUsers) CreateUser(ctx context.Context, email, name, hash string, role domain.Role) (domain.User, error) {
	return s.createUser(ctx, email, name, hash, role)
}

func (s *stubAuthUsers) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}

func (s *stubAuthUsers) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	return s.getUserByEmail(ctx, email)
}

func (s *stubAuthUsers) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	return nil
}

func (s *stubAuthUsers) UpdatePassword(ctx context.Context, userID, hash string) error {
	return nil
}

func (s *stubAuthUsers) UpdateProfile(ctx context.Context, userID, name, phone, address string, prefs json.RawMessage) (domain.User, error) {
	return domain.User{}, nil
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	users := &stubAuthUsers{
		createUser: func(context.Context, string, string, string, domain.Role) (domain.User, error) {
			return domain.User{}, domain.ErrEmailTaken
		},
	}
	a := &api{authSvc: &service.AuthService{Users: users}}

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"secret1"}`))
	rr := httptest.NewRecorder()

	a.handleRegister(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d, body %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "email_taken") {
		t.Fatalf("expected email_taken code in body: %s", rr.Body.String())
	}
}

func TestLoginMissingFieldsIsBadRequest(t *testing.T) {
	a := &api{loginLimiter: newLoginLimiter(5*time.Minute, 10)}

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"","password":""}`))
	rr := httptest.NewRecorder()

	a.handleLogin(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	users := &stubAuthUsers{
		getUserByEmail: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}
	a := &api{
		authSvc:      &service.AuthService{Users: users},
		loginLimiter: newLoginLimiter(5*time.Minute, 10),
	}

	body := `{"email":"ana@example.com","password":"wrong"}`
	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
		// Vary the source address so only the email key trips.
		req.RemoteAddr = fmt.Sprintf("10.0.0.%d:1234", i+1)
		last = httptest.NewRecorder()
		a.handleLogin(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated attempts, got %d", last.Code)
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	users := &stubAuthUsers{
		getUserByEmail: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}
	a := &api{
		authSvc:      &service.AuthService{Users: users},
		loginLimiter: newLoginLimiter(5*time.Minute, 10),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"ana@example.com","password":"wrong"}`))
	rr := httptest.NewRecorder()

	a.handleLogin(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d, body %s", rr.Code, rr.Body.String())
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if envelope.Error.Code != "invalid_credentials" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}
