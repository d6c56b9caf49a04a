package httpapi

import (
	"net/http"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
)

func (a *api) handlePackagesList(w http.ResponseWriter, r *http.Request) {
	packages, err := a.packageSvc.ListActive(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if packages == nil {
		packages = []domain.Package{}
	}
	WriteJSON(w, http.StatusOK, packages)
}

func (a *api) handlePackagesCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.CreatePackageInput
	if err := decodeJSONAllowUnknownFields(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	pkg, err := a.packageSvc.Create(r.Context(), actor, in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, pkg)
}

func (a *api) handleCustomPackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.CustomPackageInput
	if err := decodeJSONAllowUnknownFields(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	req, err := a.packageSvc.RequestCustom(r.Context(), actor, in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, req)
}
