package httpapi

import (
	"net/http"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
)

func (a *api) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	u, err := a.profileSvc.Get(r.Context(), actor.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (a *api) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.UpdateProfileInput
	if err := decodeJSONAllowUnknownFields(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	u, err := a.profileSvc.Update(r.Context(), actor.ID, in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}
