package service

import (
	"context"

	"lunastudios/internal/domain"
)

type NotificationsStore interface {
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type NotificationService struct {
	Notifications NotificationsStore
}

func (s *NotificationService) List(ctx context.Context, actor domain.Actor, limit int) ([]domain.Notification, error) {
	return s.Notifications.ListNotifications(ctx, actor.ID, limit)
}

// MarkRead is idempotent; marking an already-read notification succeeds.
// The update is scoped to the actor so nobody can touch someone else's rows.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id string) error {
	return s.Notifications.MarkRead(ctx, id, actor.ID)
}
