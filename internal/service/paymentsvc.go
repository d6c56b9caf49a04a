package service

import (
	"context"
	"strings"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type PaymentsStore interface {
	CreatePayment(ctx context.Context, p postgres.CreatePaymentParams) (domain.Payment, error)
	ListPayments(ctx context.Context, ownerID string) ([]domain.Payment, error)
}

type PaymentSessionsStore interface {
	GetSessionByID(ctx context.Context, id string) (domain.PhotoSession, error)
}

type PaymentService struct {
	Payments      PaymentsStore
	Sessions      PaymentSessionsStore
	Users         SessionUsersStore
	Notifications NotificationCreator
	Activity      ActivityLog
	Mailer        Mailer
	Dispatch      *Dispatcher
}

// CreatePaymentInput carries the amount as an opaque string; whatever the
// client sent is stored and echoed back unchanged.
type CreatePaymentInput struct {
	SessionID     string `json:"session_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id"`
	Notes         string `json:"notes"`
}

func (s *PaymentService) Create(ctx context.Context, actor domain.Actor, in CreatePaymentInput) (domain.Payment, error) {
	fields := map[string]string{}
	if in.SessionID == "" {
		fields["session_id"] = "required"
	}
	if strings.TrimSpace(in.Amount) == "" {
		fields["amount"] = "required"
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		fields["payment_method"] = "required"
	}
	if len(fields) > 0 {
		return domain.Payment{}, domain.NewValidationError(fields)
	}

	sess, err := s.Sessions.GetSessionByID(ctx, in.SessionID)
	if err != nil {
		return domain.Payment{}, err
	}
	if !actor.CanAccess(sess.UserID) {
		return domain.Payment{}, domain.ErrForbidden
	}

	p, err := s.Payments.CreatePayment(ctx, postgres.CreatePaymentParams{
		SessionID:     sess.ID,
		UserID:        sess.UserID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: domain.PaymentCompleted,
		TransactionID: in.TransactionID,
		Notes:         in.Notes,
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.Dispatch.Go("payment confirmation email", func(ctx context.Context) error {
		owner, err := s.Users.GetUserByID(ctx, sess.UserID)
		if err != nil {
			return err
		}
		subject, body := paymentConfirmationEmail(owner.Name, p, sess.Title)
		return s.Mailer.Send(ctx, owner.Email, subject, body)
	})
	s.Dispatch.Go("payment notification", func(ctx context.Context) error {
		_, err := s.Notifications.CreateNotification(ctx, sess.UserID,
			"Pago registrado",
			"Recibimos tu pago de $"+p.Amount+" por la sesión \""+sess.Title+"\".")
		return err
	})
	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "payment_created",
		EntityType: "payment",
		EntityID:   p.ID,
	})

	return p, nil
}

func (s *PaymentService) List(ctx context.Context, actor domain.Actor) ([]domain.Payment, error) {
	ownerID := actor.ID
	if actor.IsAdmin() {
		ownerID = ""
	}
	return s.Payments.ListPayments(ctx, ownerID)
}
