package service

import (
	"context"
	"encoding/json"
	"strings"

	"lunastudios/internal/domain"
)

type ProfileUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID, name, phone, address string, preferences json.RawMessage) (domain.User, error)
}

type ProfileService struct {
	Users    ProfileUsersStore
	Activity ActivityLog
	Dispatch *Dispatcher
}

type UpdateProfileInput struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	Preferences json.RawMessage `json:"preferences"`
}

func (s *ProfileService) Get(ctx context.Context, actorID string) (domain.User, error) {
	return s.Users.GetUserByID(ctx, actorID)
}

func (s *ProfileService) Update(ctx context.Context, actorID string, in UpdateProfileInput) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.User{}, domain.NewValidationError(map[string]string{"name": "required"})
	}
	if len(in.Preferences) > 0 && !json.Valid(in.Preferences) {
		return domain.User{}, domain.NewValidationError(map[string]string{"preferences": "must be valid JSON"})
	}

	u, err := s.Users.UpdateProfile(ctx, actorID, in.Name, strings.TrimSpace(in.Phone), strings.TrimSpace(in.Address), in.Preferences)
	if err != nil {
		return domain.User{}, err
	}

	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actorID,
		Action:     "update_profile",
		EntityType: "user",
		EntityID:   actorID,
	})
	return u, nil
}
