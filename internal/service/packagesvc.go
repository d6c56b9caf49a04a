package service

import (
	"context"
	"encoding/json"
	"strings"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type PackagesStore interface {
	ListActivePackages(ctx context.Context) ([]domain.Package, error)
	CreatePackage(ctx context.Context, p postgres.CreatePackageParams) (domain.Package, error)
	CreateCustomPackageRequest(ctx context.Context, userID, tipo, tiempo, fotos, locaciones string) (domain.CustomPackageRequest, error)
}

type PackageService struct {
	Packages PackagesStore
	Users    SessionUsersStore
	Activity ActivityLog
	Mailer   Mailer
	Dispatch *Dispatcher

	// StudioEmail receives custom package requests.
	StudioEmail string
}

type CreatePackageInput struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           string          `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	PhotoCount      int             `json:"photo_count"`
	LocationCount   int             `json:"location_count"`
	Features        json.RawMessage `json:"features"`
}

type CustomPackageInput struct {
	Tipo       string `json:"tipo"`
	Tiempo     string `json:"tiempo"`
	Fotos      string `json:"fotos"`
	Locaciones string `json:"locaciones"`
}

func (s *PackageService) ListActive(ctx context.Context) ([]domain.Package, error) {
	return s.Packages.ListActivePackages(ctx)
}

func (s *PackageService) Create(ctx context.Context, actor domain.Actor, in CreatePackageInput) (domain.Package, error) {
	if !actor.IsAdmin() {
		return domain.Package{}, domain.ErrForbidden
	}

	in.Name = strings.TrimSpace(in.Name)
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(in.Price) == "" {
		fields["price"] = "required"
	}
	if len(in.Features) > 0 && !json.Valid(in.Features) {
		fields["features"] = "must be valid JSON"
	}
	if len(fields) > 0 {
		return domain.Package{}, domain.NewValidationError(fields)
	}

	pkg, err := s.Packages.CreatePackage(ctx, postgres.CreatePackageParams{
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		PhotoCount:      in.PhotoCount,
		LocationCount:   in.LocationCount,
		Features:        in.Features,
	})
	if err != nil {
		return domain.Package{}, err
	}

	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "package_created",
		EntityType: "package",
		EntityID:   pkg.ID,
	})

	return pkg, nil
}

func (s *PackageService) RequestCustom(ctx context.Context, actor domain.Actor, in CustomPackageInput) (domain.CustomPackageRequest, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Tipo) == "" {
		fields["tipo"] = "required"
	}
	if strings.TrimSpace(in.Tiempo) == "" {
		fields["tiempo"] = "required"
	}
	if len(fields) > 0 {
		return domain.CustomPackageRequest{}, domain.NewValidationError(fields)
	}

	req, err := s.Packages.CreateCustomPackageRequest(ctx, actor.ID, in.Tipo, in.Tiempo, in.Fotos, in.Locaciones)
	if err != nil {
		return domain.CustomPackageRequest{}, err
	}

	s.Dispatch.Go("custom package email", func(ctx context.Context) error {
		if s.StudioEmail == "" {
			return nil
		}
		requester, err := s.Users.GetUserByID(ctx, actor.ID)
		if err != nil {
			return err
		}
		subject, body := customPackageRequestEmail(requester.Name, requester.Email, req)
		return s.Mailer.Send(ctx, s.StudioEmail, subject, body)
	})
	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "custom_package_requested",
		EntityType: "custom_package_request",
		EntityID:   req.ID,
	})

	return req, nil
}
