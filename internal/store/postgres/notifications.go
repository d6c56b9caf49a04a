package postgres

import (
	"context"
	"fmt"

	"lunastudios/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationsStore struct {
	pool *pgxpool.Pool
}

func NewNotificationsStore(pool *pgxpool.Pool) *NotificationsStore {
	return &NotificationsStore{pool: pool}
}

func (s *NotificationsStore) CreateNotification(ctx context.Context, userID, subject, message string) (domain.Notification, error) {
	const q = `
		INSERT INTO notifications (user_id, subject, message)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, subject, message, is_read, created_at
	`

	var (
		n        domain.Notification
		idUUID   pgtype.UUID
		userUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, userID, subject, message).Scan(
		&idUUID,
		&userUUID,
		&n.Subject,
		&n.Message,
		&n.IsRead,
		&n.CreatedAt,
	)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	n.ID = uuidOrEmpty(idUUID)
	n.UserID = uuidOrEmpty(userUUID)
	return n, nil
}

func (s *NotificationsStore) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const q = `
		SELECT id, user_id, subject, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		var (
			n        domain.Notification
			idUUID   pgtype.UUID
			userUUID pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &userUUID, &n.Subject, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = uuidOrEmpty(idUUID)
		n.UserID = uuidOrEmpty(userUUID)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead sets is_read for a notification owned by userID. Already-read
// rows are a no-op, not an error; rows owned by someone else are not
// touched.
func (s *NotificationsStore) MarkRead(ctx context.Context, id, userID string) error {
	const q = `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`
	if _, err := s.pool.Exec(ctx, q, id, userID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
