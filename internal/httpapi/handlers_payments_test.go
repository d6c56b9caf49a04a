package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
	"lunastudios/internal/store/postgres"
)

type stubPaymentsStore struct {
	t *testing.T

	createPaymentFunc func(context.Context, postgres.CreatePaymentParams) (domain.Payment, error)
	listPaymentsFunc  func(context.Context, string) ([]domain.Payment, error)
}

func (s *stubPaymentsStore) CreatePayment(ctx context.Context, p postgres.CreatePaymentParams) (domain.Payment, error) {
	if s.createPaymentFunc != nil {
		return s.createPaymentFunc(ctx, p)
	}
	s.t.Fatalf("CreatePayment called unexpectedly")
	return domain.Payment{}, context.Canceled
}

func (s *stubPaymentsStore) ListPayments(ctx context.Context, ownerID string) ([]domain.Payment, error) {
	if s.listPaymentsFunc != nil {
		return s.listPaymentsFunc(ctx, ownerID)
	}
	s.t.Fatalf("ListPayments called unexpectedly")
	return nil, context.Canceled
}

type stubPaymentSessions struct {
	getSessionByIDFunc func(context.Context, string) (domain.PhotoSession, error)
}

func (s *stubPaymentSessions) GetSessionByID(ctx context.Context, id string) (domain.PhotoSession, error) {
	return s.getSessionByIDFunc(ctx, id)
}

func TestPaymentsCreateAmountRoundTrips(t *testing.T) {
	sessions := &stubPaymentSessions{
		getSessionByIDFunc: func(_ context.Context, id string) (domain.PhotoSession, error) {
			return domain.PhotoSession{ID: id, UserID: "client-1", Title: "Sesión"}, nil
		},
	}
	payments := &stubPaymentsStore{
		t: t,
		createPaymentFunc: func(_ context.Context, p postgres.CreatePaymentParams) (domain.Payment, error) {
			return domain.Payment{ID: "pay-1", SessionID: p.SessionID, UserID: p.UserID, Amount: p.Amount, PaymentStatus: p.PaymentStatus}, nil
		},
	}
	a := &api{paymentSvc: &service.PaymentService{Payments: payments, Sessions: sessions}}

	body := `{"session_id":"sess-1","amount":"50.00","payment_method":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	req = withActor(req, domain.Actor{ID: "client-1", Role: domain.RoleClient})
	rr := httptest.NewRecorder()

	a.handlePaymentsCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["amount"] != "50.00" {
		t.Fatalf("amount must survive byte for byte, got %v", resp["amount"])
	}
	if resp["payment_status"] != "completed" {
		t.Fatalf("unexpected status: %v", resp["payment_status"])
	}
}

func TestPaymentsCreateUnknownSessionIs404(t *testing.T) {
	sessions := &stubPaymentSessions{
		getSessionByIDFunc: func(context.Context, string) (domain.PhotoSession, error) {
			return domain.PhotoSession{}, domain.ErrNotFound
		},
	}
	a := &api{paymentSvc: &service.PaymentService{Payments: &stubPaymentsStore{t: t}, Sessions: sessions}}

	body := `{"session_id":"missing","amount":"50.00","payment_method":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	req = withActor(req, domain.Actor{ID: "client-1", Role: domain.RoleClient})
	rr := httptest.NewRecorder()

	a.handlePaymentsCreate(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestPaymentsCreateOthersSessionIs403(t *testing.T) {
	sessions := &stubPaymentSessions{
		getSessionByIDFunc: func(_ context.Context, id string) (domain.PhotoSession, error) {
			return domain.PhotoSession{ID: id, UserID: "owner-1"}, nil
		},
	}
	a := &api{paymentSvc: &service.PaymentService{Payments: &stubPaymentsStore{t: t}, Sessions: sessions}}

	body := `{"session_id":"sess-1","amount":"50.00","payment_method":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	req = withActor(req, domain.Actor{ID: "intruder", Role: domain.RoleClient})
	rr := httptest.NewRecorder()

	a.handlePaymentsCreate(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestPaymentsListEmptyIsArray(t *testing.T) {
	payments := &stubPaymentsStore{
		t: t,
		listPaymentsFunc: func(_ context.Context, ownerID string) ([]domain.Payment, error) {
			if ownerID != "client-1" {
				t.Fatalf("client list not scoped: %q", ownerID)
			}
			return nil, nil
		},
	}
	a := &api{paymentSvc: &service.PaymentService{Payments: payments}}

	req := httptest.NewRequest(http.MethodGet, "/api/payments", nil)
	req = withActor(req, domain.Actor{ID: "client-1", Role: domain.RoleClient})
	rr := httptest.NewRecorder()

	a.handlePaymentsList(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}
