package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lunastudios/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `id, email, name, phone, address, profile_image, role, preferences, is_active, created_at, last_login`

func (s *UsersStore) scanUser(row pgx.Row) (domain.User, error) {
	var (
		u           domain.User
		idUUID      pgtype.UUID
		phone       pgtype.Text
		address     pgtype.Text
		image       pgtype.Text
		preferences []byte
		lastLoginTS pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID,
		&u.Email,
		&u.Name,
		&phone,
		&address,
		&image,
		&u.Role,
		&preferences,
		&u.IsActive,
		&u.CreatedAt,
		&lastLoginTS,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Phone = textOrEmpty(phone)
	u.Address = textOrEmpty(address)
	u.ProfileImage = textOrEmpty(image)
	u.Preferences = jsonOrNil(preferences)
	u.LastLogin = timestamptzPtr(lastLoginTS)
	return u, nil
}

func (s *UsersStore) CreateUser(ctx context.Context, email, name, passwordHash string, role domain.Role) (domain.User, error) {
	const q = `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := s.scanUser(s.pool.QueryRow(ctx, q, email, name, passwordHash, role))
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := s.scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	const q = `
		SELECT ` + userColumns + `, password_hash
		FROM users
		WHERE email = $1
		LIMIT 1
	`

	var (
		u           domain.UserWithPassword
		idUUID      pgtype.UUID
		phone       pgtype.Text
		address     pgtype.Text
		image       pgtype.Text
		preferences []byte
		lastLoginTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, email).Scan(
		&idUUID,
		&u.Email,
		&u.Name,
		&phone,
		&address,
		&image,
		&u.Role,
		&preferences,
		&u.IsActive,
		&u.CreatedAt,
		&lastLoginTS,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Phone = textOrEmpty(phone)
	u.Address = textOrEmpty(address)
	u.ProfileImage = textOrEmpty(image)
	u.Preferences = jsonOrNil(preferences)
	u.LastLogin = timestamptzPtr(lastLoginTS)
	return u, nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, userID, name, phone, address string, preferences json.RawMessage) (domain.User, error) {
	const q = `
		UPDATE users
		SET name = $2, phone = $3, address = $4, preferences = $5
		WHERE id = $1
		RETURNING ` + userColumns

	var prefsArg any
	if len(preferences) > 0 {
		prefsArg = []byte(preferences)
	}
	u, err := s.scanUser(s.pool.QueryRow(ctx, q, userID, name, nullIfEmpty(phone), nullIfEmpty(address), prefsArg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *UsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	const q = `UPDATE users SET last_login = $2 WHERE id = $1`
	if _, err := s.pool.Exec(ctx, q, userID, when); err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

func (s *UsersStore) SetActive(ctx context.Context, userID string, active bool) error {
	const q = `UPDATE users SET is_active = $2 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID, active)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdminUserRow is the admin listing projection: a user plus how many
// sessions they have booked.
type AdminUserRow struct {
	domain.User
	SessionCount int `json:"session_count"`
}

func (s *UsersStore) ListUsers(ctx context.Context, search string, limit, offset int) ([]AdminUserRow, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var c condList
	if search != "" {
		like := "%" + search + "%"
		c.Where("(u.name ILIKE ? OR u.email ILIKE ?)", like, like)
	}

	q := `
		SELECT ` + prefixColumns("u", userColumns) + `,
		       (SELECT COUNT(*) FROM photo_sessions s WHERE s.user_id = u.id) AS session_count
		FROM users u` + c.SQL() +
		fmt.Sprintf(" ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d", c.Next(), c.Next()+1)
	args := append(c.Args(), limit, offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []AdminUserRow{}
	for rows.Next() {
		var (
			r           AdminUserRow
			idUUID      pgtype.UUID
			phone       pgtype.Text
			address     pgtype.Text
			image       pgtype.Text
			preferences []byte
			lastLoginTS pgtype.Timestamptz
		)
		if err := rows.Scan(
			&idUUID,
			&r.Email,
			&r.Name,
			&phone,
			&address,
			&image,
			&r.Role,
			&preferences,
			&r.IsActive,
			&r.CreatedAt,
			&lastLoginTS,
			&r.SessionCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		r.ID = uuidOrEmpty(idUUID)
		r.Phone = textOrEmpty(phone)
		r.Address = textOrEmpty(address)
		r.ProfileImage = textOrEmpty(image)
		r.Preferences = jsonOrNil(preferences)
		r.LastLogin = timestamptzPtr(lastLoginTS)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var count condList
	if search != "" {
		like := "%" + search + "%"
		count.Where("(name ILIKE ? OR email ILIKE ?)", like, like)
	}
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+count.SQL(), count.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return out, total, nil
}
