package httpapi

import (
	"net/http"
	"strings"
	"time"

	"lunastudios/internal/domain"
)

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONAllowUnknownFields(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	u, token, err := a.authSvc.Register(r.Context(), req.Email, req.Name, req.Password, req.Phone)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONAllowUnknownFields(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "required", "password": "required"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("ip:"+ip, now) || !a.loginLimiter.Allow("email:"+strings.ToLower(req.Email), now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	u, token, err := a.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

func (a *api) handleRefreshSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	u, token, err := a.authSvc.RefreshToken(r.Context(), actor.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *api) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	if err := a.authSvc.ChangePassword(r.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (a *api) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	if err := a.authSvc.ForgotPassword(r.Context(), req.Email); err != nil {
		WriteDomainError(w, err)
		return
	}

	// Always the same answer, known email or not.
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (a *api) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if req.Token == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"token": "required"}))
		return
	}

	if err := a.authSvc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
