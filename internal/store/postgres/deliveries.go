package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lunastudios/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveriesStore struct {
	pool *pgxpool.Pool
}

func NewDeliveriesStore(pool *pgxpool.Pool) *DeliveriesStore {
	return &DeliveriesStore{pool: pool}
}

type CreateDeliveryParams struct {
	SessionID   string
	Title       string
	Description string
	FileURL     string
	FileType    string
	ExpiryDate  *time.Time
}

func (s *DeliveriesStore) CreateDelivery(ctx context.Context, p CreateDeliveryParams) (domain.PhotoDelivery, error) {
	const q = `
		INSERT INTO photo_deliveries (session_id, title, description, file_url, file_type, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, session_id, title, description, file_url, file_type, expiry_date, is_active, download_count, created_at
	`

	var expiryArg any
	if p.ExpiryDate != nil {
		expiryArg = *p.ExpiryDate
	}

	var (
		out      domain.PhotoDelivery
		idUUID   pgtype.UUID
		sessUUID pgtype.UUID
		desc     pgtype.Text
		expiryTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q,
		p.SessionID,
		p.Title,
		nullIfEmpty(p.Description),
		p.FileURL,
		p.FileType,
		expiryArg,
	).Scan(
		&idUUID,
		&sessUUID,
		&out.Title,
		&desc,
		&out.FileURL,
		&out.FileType,
		&expiryTS,
		&out.IsActive,
		&out.DownloadCount,
		&out.CreatedAt,
	)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.PhotoDelivery{}, domain.ErrNotFound
		}
		return domain.PhotoDelivery{}, fmt.Errorf("create delivery: %w", err)
	}

	out.ID = uuidOrEmpty(idUUID)
	out.SessionID = uuidOrEmpty(sessUUID)
	out.Description = textOrEmpty(desc)
	out.ExpiryDate = timestamptzPtr(expiryTS)
	return out, nil
}

// ListDeliveries returns deliveries joined with their session. ownerID
// empty means all rows; sessionID optionally narrows to one session.
func (s *DeliveriesStore) ListDeliveries(ctx context.Context, ownerID, sessionID string) ([]domain.PhotoDelivery, error) {
	var c condList
	if ownerID != "" {
		c.Where("s.user_id = ?", ownerID)
	}
	if sessionID != "" {
		c.Where("d.session_id = ?", sessionID)
	}

	q := `
		SELECT d.id, d.session_id, d.title, d.description, d.file_url, d.file_type,
		       d.expiry_date, d.is_active, d.download_count, d.created_at,
		       s.title, s.date
		FROM photo_deliveries d
		JOIN photo_sessions s ON d.session_id = s.id` + c.SQL() + `
		ORDER BY d.created_at DESC`

	rows, err := s.pool.Query(ctx, q, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	out := []domain.PhotoDelivery{}
	for rows.Next() {
		var (
			d         domain.PhotoDelivery
			idUUID    pgtype.UUID
			sessUUID  pgtype.UUID
			desc      pgtype.Text
			expiryTS  pgtype.Timestamptz
			sessTitle pgtype.Text
			sessDate  pgtype.Timestamptz
		)
		if err := rows.Scan(
			&idUUID,
			&sessUUID,
			&d.Title,
			&desc,
			&d.FileURL,
			&d.FileType,
			&expiryTS,
			&d.IsActive,
			&d.DownloadCount,
			&d.CreatedAt,
			&sessTitle,
			&sessDate,
		); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.ID = uuidOrEmpty(idUUID)
		d.SessionID = uuidOrEmpty(sessUUID)
		d.Description = textOrEmpty(desc)
		d.ExpiryDate = timestamptzPtr(expiryTS)
		d.SessionTitle = textOrEmpty(sessTitle)
		d.SessionDate = timestamptzPtr(sessDate)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return out, nil
}

// GetDelivery returns one delivery plus the owning user of its session.
func (s *DeliveriesStore) GetDelivery(ctx context.Context, id string) (domain.PhotoDelivery, string, error) {
	const q = `
		SELECT d.id, d.session_id, d.title, d.description, d.file_url, d.file_type,
		       d.expiry_date, d.is_active, d.download_count, d.created_at, s.user_id
		FROM photo_deliveries d
		JOIN photo_sessions s ON d.session_id = s.id
		WHERE d.id = $1
	`

	var (
		d         domain.PhotoDelivery
		idUUID    pgtype.UUID
		sessUUID  pgtype.UUID
		desc      pgtype.Text
		expiryTS  pgtype.Timestamptz
		ownerUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&idUUID,
		&sessUUID,
		&d.Title,
		&desc,
		&d.FileURL,
		&d.FileType,
		&expiryTS,
		&d.IsActive,
		&d.DownloadCount,
		&d.CreatedAt,
		&ownerUUID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PhotoDelivery{}, "", domain.ErrNotFound
		}
		return domain.PhotoDelivery{}, "", fmt.Errorf("get delivery: %w", err)
	}

	d.ID = uuidOrEmpty(idUUID)
	d.SessionID = uuidOrEmpty(sessUUID)
	d.Description = textOrEmpty(desc)
	d.ExpiryDate = timestamptzPtr(expiryTS)
	return d, uuidOrEmpty(ownerUUID), nil
}

func (s *DeliveriesStore) IncrementDownloadCount(ctx context.Context, id string) error {
	const q = `UPDATE photo_deliveries SET download_count = download_count + 1 WHERE id = $1`
	if _, err := s.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	return nil
}
