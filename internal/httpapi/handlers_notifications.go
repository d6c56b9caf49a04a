package httpapi

import (
	"net/http"
	"strconv"

	"lunastudios/internal/domain"
)

func (a *api) handleNotificationsList(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := a.notifSvc.List(r.Context(), actor, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	WriteJSON(w, http.StatusOK, notifications)
}

func (a *api) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.notifSvc.MarkRead(r.Context(), actor, r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
