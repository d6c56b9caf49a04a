package httpapi

import (
	"net/http"
	"strconv"

	"lunastudios/internal/domain"
)

func (a *api) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := a.adminSvc.Dashboard(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dash)
}

func (a *api) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.adminSvc.Stats(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (a *api) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	out, err := a.adminSvc.ListUsers(r.Context(), q.Get("search"), page, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

type userStatusRequest struct {
	IsActive bool `json:"is_active"`
}

func (a *api) handleAdminUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req userStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	if err := a.adminSvc.SetUserActive(r.Context(), actor, r.PathValue("id"), req.IsActive); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *api) handleAdminConfigGet(w http.ResponseWriter, r *http.Request) {
	values, err := a.adminSvc.GetConfig(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if values == nil {
		values = map[string]string{}
	}
	WriteJSON(w, http.StatusOK, values)
}

func (a *api) handleAdminConfigPut(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var values map[string]string
	if err := decodeJSON(w, r, &values); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	if err := a.adminSvc.SetConfig(r.Context(), actor, values); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (a *api) handleAdminSendReminders(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	sent, err := a.adminSvc.SendReminders(r.Context(), actor)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
