package httpapi

import (
	"net/http"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
)

func (a *api) handlePaymentsCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.CreatePaymentInput
	if err := decodeJSONAllowUnknownFields(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	p, err := a.paymentSvc.Create(r.Context(), actor, in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (a *api) handlePaymentsList(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	payments, err := a.paymentSvc.List(r.Context(), actor)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	WriteJSON(w, http.StatusOK, payments)
}
