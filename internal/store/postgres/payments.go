package postgres

import (
	"context"
	"errors"
	"fmt"

	"lunastudios/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentsStore struct {
	pool *pgxpool.Pool
}

func NewPaymentsStore(pool *pgxpool.Pool) *PaymentsStore {
	return &PaymentsStore{pool: pool}
}

type CreatePaymentParams struct {
	SessionID     string
	UserID        string
	Amount        string
	PaymentMethod string
	PaymentStatus string
	TransactionID string
	Notes         string
}

func (s *PaymentsStore) CreatePayment(ctx context.Context, p CreatePaymentParams) (domain.Payment, error) {
	const q = `
		INSERT INTO payments (session_id, user_id, amount, payment_method, payment_status, transaction_id, payment_date, notes)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, now(), $7)
		RETURNING id, session_id, user_id, amount::text, payment_method, payment_status, transaction_id, notes, payment_date, created_at
	`

	var (
		out      domain.Payment
		idUUID   pgtype.UUID
		sessUUID pgtype.UUID
		userUUID pgtype.UUID
		txID     pgtype.Text
		notes    pgtype.Text
	)
	err := s.pool.QueryRow(ctx, q,
		p.SessionID,
		p.UserID,
		p.Amount,
		p.PaymentMethod,
		p.PaymentStatus,
		nullIfEmpty(p.TransactionID),
		nullIfEmpty(p.Notes),
	).Scan(
		&idUUID,
		&sessUUID,
		&userUUID,
		&out.Amount,
		&out.PaymentMethod,
		&out.PaymentStatus,
		&txID,
		&notes,
		&out.PaymentDate,
		&out.CreatedAt,
	)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.Payment{}, domain.ErrNotFound
		}
		return domain.Payment{}, fmt.Errorf("create payment: %w", err)
	}

	out.ID = uuidOrEmpty(idUUID)
	out.SessionID = uuidOrEmpty(sessUUID)
	out.UserID = uuidOrEmpty(userUUID)
	out.TransactionID = textOrEmpty(txID)
	out.Notes = textOrEmpty(notes)
	return out, nil
}

// ListPayments returns payments joined with session title/date and payer
// name. ownerID empty means all rows (admin callers).
func (s *PaymentsStore) ListPayments(ctx context.Context, ownerID string) ([]domain.Payment, error) {
	var c condList
	if ownerID != "" {
		c.Where("p.user_id = ?", ownerID)
	}

	q := `
		SELECT p.id, p.session_id, p.user_id, p.amount::text, p.payment_method, p.payment_status,
		       p.transaction_id, p.notes, p.payment_date, p.created_at,
		       s.title, s.date, u.name
		FROM payments p
		LEFT JOIN photo_sessions s ON p.session_id = s.id
		LEFT JOIN users u ON p.user_id = u.id` + c.SQL() + `
		ORDER BY p.created_at DESC`

	rows, err := s.pool.Query(ctx, q, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := []domain.Payment{}
	for rows.Next() {
		var (
			p         domain.Payment
			idUUID    pgtype.UUID
			sessUUID  pgtype.UUID
			userUUID  pgtype.UUID
			txID      pgtype.Text
			notes     pgtype.Text
			sessTitle pgtype.Text
			sessDate  pgtype.Timestamptz
			userName  pgtype.Text
		)
		if err := rows.Scan(
			&idUUID,
			&sessUUID,
			&userUUID,
			&p.Amount,
			&p.PaymentMethod,
			&p.PaymentStatus,
			&txID,
			&notes,
			&p.PaymentDate,
			&p.CreatedAt,
			&sessTitle,
			&sessDate,
			&userName,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.ID = uuidOrEmpty(idUUID)
		p.SessionID = uuidOrEmpty(sessUUID)
		p.UserID = uuidOrEmpty(userUUID)
		p.TransactionID = textOrEmpty(txID)
		p.Notes = textOrEmpty(notes)
		p.SessionTitle = textOrEmpty(sessTitle)
		p.SessionDate = timestamptzPtr(sessDate)
		p.UserName = textOrEmpty(userName)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
