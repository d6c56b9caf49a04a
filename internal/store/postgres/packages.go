package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"lunastudios/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PackagesStore struct {
	pool *pgxpool.Pool
}

func NewPackagesStore(pool *pgxpool.Pool) *PackagesStore {
	return &PackagesStore{pool: pool}
}

type CreatePackageParams struct {
	Name            string
	Description     string
	Price           string
	DurationMinutes int
	PhotoCount      int
	LocationCount   int
	Features        json.RawMessage
}

func (s *PackagesStore) ListActivePackages(ctx context.Context) ([]domain.Package, error) {
	const q = `
		SELECT id, name, description, price::text, duration_minutes, photo_count, location_count, features, is_active, created_at
		FROM packages
		WHERE is_active = true
		ORDER BY price ASC
	`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	out := []domain.Package{}
	for rows.Next() {
		var (
			p        domain.Package
			idUUID   pgtype.UUID
			desc     pgtype.Text
			features []byte
		)
		if err := rows.Scan(
			&idUUID,
			&p.Name,
			&desc,
			&p.Price,
			&p.DurationMinutes,
			&p.PhotoCount,
			&p.LocationCount,
			&features,
			&p.IsActive,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		p.ID = uuidOrEmpty(idUUID)
		p.Description = textOrEmpty(desc)
		p.Features = jsonOrNil(features)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return out, nil
}

func (s *PackagesStore) CreatePackage(ctx context.Context, p CreatePackageParams) (domain.Package, error) {
	const q = `
		INSERT INTO packages (name, description, price, duration_minutes, photo_count, location_count, features)
		VALUES ($1, $2, NULLIF($3, '')::numeric, $4, $5, $6, $7)
		RETURNING id, name, description, price::text, duration_minutes, photo_count, location_count, features, is_active, created_at
	`

	var featuresArg any
	if len(p.Features) > 0 {
		featuresArg = []byte(p.Features)
	}

	var (
		out      domain.Package
		idUUID   pgtype.UUID
		desc     pgtype.Text
		features []byte
	)
	err := s.pool.QueryRow(ctx, q,
		p.Name,
		nullIfEmpty(p.Description),
		p.Price,
		p.DurationMinutes,
		p.PhotoCount,
		p.LocationCount,
		featuresArg,
	).Scan(
		&idUUID,
		&out.Name,
		&desc,
		&out.Price,
		&out.DurationMinutes,
		&out.PhotoCount,
		&out.LocationCount,
		&features,
		&out.IsActive,
		&out.CreatedAt,
	)
	if err != nil {
		return domain.Package{}, fmt.Errorf("create package: %w", err)
	}
	out.ID = uuidOrEmpty(idUUID)
	out.Description = textOrEmpty(desc)
	out.Features = jsonOrNil(features)
	return out, nil
}

func (s *PackagesStore) CreateCustomPackageRequest(ctx context.Context, userID, tipo, tiempo, fotos, locaciones string) (domain.CustomPackageRequest, error) {
	const q = `
		INSERT INTO custom_package_requests (user_id, tipo, tiempo, fotos, locaciones)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, tipo, tiempo, fotos, locaciones, created_at
	`

	var (
		out      domain.CustomPackageRequest
		idUUID   pgtype.UUID
		userUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, userID, tipo, tiempo, fotos, locaciones).Scan(
		&idUUID,
		&userUUID,
		&out.Tipo,
		&out.Tiempo,
		&out.Fotos,
		&out.Locaciones,
		&out.CreatedAt,
	)
	if err != nil {
		return domain.CustomPackageRequest{}, fmt.Errorf("create custom package request: %w", err)
	}
	out.ID = uuidOrEmpty(idUUID)
	out.UserID = uuidOrEmpty(userUUID)
	return out, nil
}
