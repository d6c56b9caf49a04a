package service

import (
	"context"
	"strings"
	"time"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type DeliveriesStore interface {
	CreateDelivery(ctx context.Context, p postgres.CreateDeliveryParams) (domain.PhotoDelivery, error)
	ListDeliveries(ctx context.Context, ownerID, sessionID string) ([]domain.PhotoDelivery, error)
	GetDelivery(ctx context.Context, id string) (domain.PhotoDelivery, string, error)
	IncrementDownloadCount(ctx context.Context, id string) error
}

type DeliveryService struct {
	Deliveries    DeliveriesStore
	Sessions      PaymentSessionsStore
	Users         SessionUsersStore
	Notifications NotificationCreator
	Activity      ActivityLog
	Mailer        Mailer
	Dispatch      *Dispatcher
	Now           func() time.Time
}

type CreateDeliveryInput struct {
	SessionID   string     `json:"session_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FileURL     string     `json:"file_url"`
	FileType    string     `json:"file_type"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

func (s *DeliveryService) Create(ctx context.Context, actor domain.Actor, in CreateDeliveryInput) (domain.PhotoDelivery, error) {
	if !actor.IsAdmin() {
		return domain.PhotoDelivery{}, domain.ErrForbidden
	}

	in.Title = strings.TrimSpace(in.Title)
	fields := map[string]string{}
	if in.SessionID == "" {
		fields["session_id"] = "required"
	}
	if in.Title == "" {
		fields["title"] = "required"
	}
	if in.FileURL == "" {
		fields["file_url"] = "required"
	}
	if len(fields) > 0 {
		return domain.PhotoDelivery{}, domain.NewValidationError(fields)
	}

	sess, err := s.Sessions.GetSessionByID(ctx, in.SessionID)
	if err != nil {
		return domain.PhotoDelivery{}, err
	}

	d, err := s.Deliveries.CreateDelivery(ctx, postgres.CreateDeliveryParams{
		SessionID:   sess.ID,
		Title:       in.Title,
		Description: in.Description,
		FileURL:     in.FileURL,
		FileType:    in.FileType,
		ExpiryDate:  in.ExpiryDate,
	})
	if err != nil {
		return domain.PhotoDelivery{}, err
	}

	s.Dispatch.Go("delivery ready email", func(ctx context.Context) error {
		owner, err := s.Users.GetUserByID(ctx, sess.UserID)
		if err != nil {
			return err
		}
		subject, body := deliveryReadyEmail(owner.Name, d, sess.Title)
		return s.Mailer.Send(ctx, owner.Email, subject, body)
	})
	s.Dispatch.Go("delivery notification", func(ctx context.Context) error {
		_, err := s.Notifications.CreateNotification(ctx, sess.UserID,
			"Tu material está listo",
			"Ya puedes descargar \""+d.Title+"\" de tu sesión \""+sess.Title+"\".")
		return err
	})
	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "delivery_created",
		EntityType: "photo_delivery",
		EntityID:   d.ID,
	})

	return d, nil
}

func (s *DeliveryService) List(ctx context.Context, actor domain.Actor, sessionID string) ([]domain.PhotoDelivery, error) {
	ownerID := actor.ID
	if actor.IsAdmin() {
		ownerID = ""
	}
	return s.Deliveries.ListDeliveries(ctx, ownerID, sessionID)
}

// Download resolves a delivery for the actor, bumps the download counter
// and returns the delivery so the handler can hand out the file URL.
func (s *DeliveryService) Download(ctx context.Context, actor domain.Actor, id string) (domain.PhotoDelivery, error) {
	d, ownerID, err := s.Deliveries.GetDelivery(ctx, id)
	if err != nil {
		return domain.PhotoDelivery{}, err
	}
	if !actor.CanAccess(ownerID) {
		return domain.PhotoDelivery{}, domain.ErrForbidden
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if !d.IsActive || d.Expired(now()) {
		return domain.PhotoDelivery{}, domain.ErrDeliveryExpired
	}

	s.Dispatch.Go("bump download count", func(ctx context.Context) error {
		return s.Deliveries.IncrementDownloadCount(ctx, d.ID)
	})

	return d, nil
}
