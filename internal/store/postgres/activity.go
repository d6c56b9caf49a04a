package postgres

import (
	"context"
	"fmt"

	"lunastudios/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityStore struct {
	pool *pgxpool.Pool
}

func NewActivityStore(pool *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

// Append writes one audit row. Rows are never updated or deleted.
func (s *ActivityStore) Append(ctx context.Context, e domain.ActivityEntry) error {
	const q = `
		INSERT INTO activity_log (user_id, action, entity_type, entity_id, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var detailsArg any
	if len(e.Details) > 0 {
		detailsArg = []byte(e.Details)
	}
	_, err := s.pool.Exec(ctx, q,
		e.UserID,
		e.Action,
		e.EntityType,
		nullIfEmpty(e.EntityID),
		detailsArg,
		nullIfEmpty(e.IP),
		nullIfEmpty(e.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *ActivityStore) ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	const q = `
		SELECT id, user_id, action, entity_type, entity_id, details, ip_address, user_agent, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	out := []domain.ActivityEntry{}
	for rows.Next() {
		var (
			e          domain.ActivityEntry
			idUUID     pgtype.UUID
			userUUID   pgtype.UUID
			entityUUID pgtype.UUID
			details    []byte
			ip         pgtype.Text
			userAgent  pgtype.Text
		)
		if err := rows.Scan(&idUUID, &userUUID, &e.Action, &e.EntityType, &entityUUID, &details, &ip, &userAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.ID = uuidOrEmpty(idUUID)
		e.UserID = uuidOrEmpty(userUUID)
		e.EntityID = uuidOrEmpty(entityUUID)
		e.Details = jsonOrNil(details)
		e.IP = textOrEmpty(ip)
		e.UserAgent = textOrEmpty(userAgent)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return out, nil
}
