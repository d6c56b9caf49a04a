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

type PhotoSessionsStore struct {
	pool *pgxpool.Pool
}

func NewPhotoSessionsStore(pool *pgxpool.Pool) *PhotoSessionsStore {
	return &PhotoSessionsStore{pool: pool}
}

const sessionColumns = `id, user_id, title, description, date, duration_minutes, location, status, price::text, package_id, created_at, updated_at`

type CreateSessionParams struct {
	UserID          string
	Title           string
	Description     string
	Date            time.Time
	DurationMinutes int
	Location        string
	Price           string
	PackageID       string
}

type UpdateSessionParams struct {
	Title           string
	Description     string
	Date            time.Time
	DurationMinutes int
	Location        string
	Status          string
	Price           string
	PackageID       string
}

func scanSession(row pgx.Row) (domain.PhotoSession, error) {
	var (
		sess      domain.PhotoSession
		idUUID    pgtype.UUID
		userUUID  pgtype.UUID
		desc      pgtype.Text
		location  pgtype.Text
		price     pgtype.Text
		pkgUUID   pgtype.UUID
		updatedTS pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID,
		&userUUID,
		&sess.Title,
		&desc,
		&sess.Date,
		&sess.DurationMinutes,
		&location,
		&sess.Status,
		&price,
		&pkgUUID,
		&sess.CreatedAt,
		&updatedTS,
	)
	if err != nil {
		return domain.PhotoSession{}, err
	}

	sess.ID = uuidOrEmpty(idUUID)
	sess.UserID = uuidOrEmpty(userUUID)
	sess.Description = textOrEmpty(desc)
	sess.Location = textOrEmpty(location)
	sess.Price = textOrEmpty(price)
	sess.PackageID = uuidPtr(pkgUUID)
	sess.UpdatedAt = timestamptzPtr(updatedTS)
	return sess, nil
}

func (s *PhotoSessionsStore) CreateSession(ctx context.Context, p CreateSessionParams) (domain.PhotoSession, error) {
	const q = `
		INSERT INTO photo_sessions (user_id, title, description, date, duration_minutes, location, status, price, package_id)
		VALUES ($1, $2, $3, $4, $5, $6, 'pendiente', NULLIF($7, '')::numeric, $8)
		RETURNING ` + sessionColumns

	sess, err := scanSession(s.pool.QueryRow(ctx, q,
		p.UserID,
		p.Title,
		nullIfEmpty(p.Description),
		p.Date,
		p.DurationMinutes,
		nullIfEmpty(p.Location),
		p.Price,
		nullIfEmpty(p.PackageID),
	))
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.PhotoSession{}, domain.NewValidationError(map[string]string{"package_id": "unknown package"})
		}
		return domain.PhotoSession{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *PhotoSessionsStore) GetSessionByID(ctx context.Context, id string) (domain.PhotoSession, error) {
	const q = `SELECT ` + sessionColumns + ` FROM photo_sessions WHERE id = $1`

	sess, err := scanSession(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PhotoSession{}, domain.ErrNotFound
		}
		return domain.PhotoSession{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// UpdateSession overwrites the mutable fields. The owning user never
// changes; last write wins.
func (s *PhotoSessionsStore) UpdateSession(ctx context.Context, id string, p UpdateSessionParams) (domain.PhotoSession, error) {
	const q = `
		UPDATE photo_sessions
		SET title = $2, description = $3, date = $4, duration_minutes = $5,
		    location = $6, status = $7, price = NULLIF($8, '')::numeric,
		    package_id = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + sessionColumns

	sess, err := scanSession(s.pool.QueryRow(ctx, q,
		id,
		p.Title,
		nullIfEmpty(p.Description),
		p.Date,
		p.DurationMinutes,
		nullIfEmpty(p.Location),
		p.Status,
		p.Price,
		nullIfEmpty(p.PackageID),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PhotoSession{}, domain.ErrNotFound
		}
		return domain.PhotoSession{}, fmt.Errorf("update session: %w", err)
	}
	return sess, nil
}

// SessionFilter carries the optional search/report predicates. OwnerID
// set means the caller may only see that user's rows; it is applied
// before any caller-supplied filter.
type SessionFilter struct {
	OwnerID   string
	Query     string
	Status    string
	StartDate string
	EndDate   string
	ClientID  string
}

func (f SessionFilter) conds() *condList {
	var c condList
	if f.OwnerID != "" {
		c.Where("s.user_id = ?", f.OwnerID)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		c.Where("(s.title ILIKE ? OR u.name ILIKE ?)", like, like)
	}
	if f.Status != "" {
		c.Where("s.status = ?", f.Status)
	}
	if f.StartDate != "" {
		c.Where("s.date >= ?::timestamptz", f.StartDate)
	}
	if f.EndDate != "" {
		c.Where("s.date <= ?::timestamptz", f.EndDate)
	}
	if f.ClientID != "" {
		c.Where("s.user_id = ?", f.ClientID)
	}
	return &c
}

func (s *PhotoSessionsStore) SearchSessions(ctx context.Context, f SessionFilter) ([]domain.PhotoSession, error) {
	c := f.conds()
	q := `
		SELECT ` + prefixColumns("s", sessionColumns) + `, u.name
		FROM photo_sessions s
		JOIN users u ON s.user_id = u.id` + c.SQL() + `
		ORDER BY s.date DESC`

	rows, err := s.pool.Query(ctx, q, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("search sessions: %w", err)
	}
	defer rows.Close()

	out := []domain.PhotoSession{}
	for rows.Next() {
		var (
			sess      domain.PhotoSession
			idUUID    pgtype.UUID
			userUUID  pgtype.UUID
			desc      pgtype.Text
			location  pgtype.Text
			price     pgtype.Text
			pkgUUID   pgtype.UUID
			updatedTS pgtype.Timestamptz
		)
		if err := rows.Scan(
			&idUUID,
			&userUUID,
			&sess.Title,
			&desc,
			&sess.Date,
			&sess.DurationMinutes,
			&location,
			&sess.Status,
			&price,
			&pkgUUID,
			&sess.CreatedAt,
			&updatedTS,
			&sess.UserName,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.ID = uuidOrEmpty(idUUID)
		sess.UserID = uuidOrEmpty(userUUID)
		sess.Description = textOrEmpty(desc)
		sess.Location = textOrEmpty(location)
		sess.Price = textOrEmpty(price)
		sess.PackageID = uuidPtr(pkgUUID)
		sess.UpdatedAt = timestamptzPtr(updatedTS)
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search sessions: %w", err)
	}
	return out, nil
}

func (s *PhotoSessionsStore) ListCalendarEvents(ctx context.Context, ownerID string) ([]domain.CalendarEvent, error) {
	var c condList
	if ownerID != "" {
		c.Where("user_id = ?", ownerID)
	}
	q := `SELECT id, title, date, status FROM photo_sessions` + c.SQL() + ` ORDER BY date ASC`

	rows, err := s.pool.Query(ctx, q, c.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	defer rows.Close()

	out := []domain.CalendarEvent{}
	for rows.Next() {
		var (
			ev     domain.CalendarEvent
			idUUID pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &ev.Title, &ev.Date, &ev.Status); err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		ev.ID = uuidOrEmpty(idUUID)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return out, nil
}

// ReminderSession is an upcoming pending session joined with the contact
// details the reminder mail needs.
type ReminderSession struct {
	domain.PhotoSession
	Email string
	Name  string
}

func (s *PhotoSessionsStore) ListUpcomingPending(ctx context.Context, within time.Duration) ([]ReminderSession, error) {
	const q = `
		SELECT s.id, s.user_id, s.title, s.date, s.location, u.email, u.name
		FROM photo_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.date > now()
		  AND s.date <= now() + make_interval(secs => $1)
		  AND s.status = 'pendiente'
		ORDER BY s.date ASC`

	rows, err := s.pool.Query(ctx, q, within.Seconds())
	if err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}
	defer rows.Close()

	out := []ReminderSession{}
	for rows.Next() {
		var (
			r        ReminderSession
			idUUID   pgtype.UUID
			userUUID pgtype.UUID
			location pgtype.Text
		)
		if err := rows.Scan(&idUUID, &userUUID, &r.Title, &r.Date, &location, &r.Email, &r.Name); err != nil {
			return nil, fmt.Errorf("scan upcoming session: %w", err)
		}
		r.ID = uuidOrEmpty(idUUID)
		r.UserID = uuidOrEmpty(userUUID)
		r.Location = textOrEmpty(location)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}
	return out, nil
}
