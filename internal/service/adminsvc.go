package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type AdminUsersStore interface {
	ListUsers(ctx context.Context, search string, limit, offset int) ([]postgres.AdminUserRow, int, error)
	SetActive(ctx context.Context, userID string, active bool) error
}

type SystemConfig interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type AdminReportsStore interface {
	Dashboard(ctx context.Context) (domain.Dashboard, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type ReminderSessionsStore interface {
	ListUpcomingPending(ctx context.Context, within time.Duration) ([]postgres.ReminderSession, error)
}

// AdminActivityStore is the audit log plus the read side the dashboard
// feed needs.
type AdminActivityStore interface {
	ActivityLog
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}

type AdminService struct {
	Users         AdminUsersStore
	Config        SystemConfig
	Reports       AdminReportsStore
	Sessions      ReminderSessionsStore
	Notifications NotificationCreator
	Activity      AdminActivityStore
	Mailer        Mailer
	Dispatch      *Dispatcher
	Logger        *slog.Logger
}

type UsersPage struct {
	Users      []postgres.AdminUserRow `json:"users"`
	Total      int                     `json:"total"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"totalPages"`
}

func (s *AdminService) ListUsers(ctx context.Context, search string, page, pageSize int) (UsersPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	users, total, err := s.Users.ListUsers(ctx, strings.TrimSpace(search), pageSize, (page-1)*pageSize)
	if err != nil {
		return UsersPage{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return UsersPage{Users: users, Total: total, Page: page, TotalPages: totalPages}, nil
}

func (s *AdminService) SetUserActive(ctx context.Context, actor domain.Actor, userID string, active bool) error {
	// An admin cannot lock themselves out.
	if userID == actor.ID {
		return domain.NewValidationError(map[string]string{"user_id": "cannot change your own account status"})
	}

	if err := s.Users.SetActive(ctx, userID, active); err != nil {
		return err
	}

	action := "user_enabled"
	if !active {
		action = "user_disabled"
	}
	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     action,
		EntityType: "user",
		EntityID:   userID,
	})
	return nil
}

func (s *AdminService) GetConfig(ctx context.Context) (map[string]string, error) {
	return s.Config.GetAll(ctx)
}

func (s *AdminService) SetConfig(ctx context.Context, actor domain.Actor, values map[string]string) error {
	if len(values) == 0 {
		return domain.NewValidationError(map[string]string{"config": "at least one key required"})
	}
	for key, value := range values {
		if strings.TrimSpace(key) == "" {
			return domain.NewValidationError(map[string]string{"config": "keys must not be empty"})
		}
		if err := s.Config.Set(ctx, key, value); err != nil {
			return err
		}
	}

	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "config_updated",
		EntityType: "system_config",
	})
	return nil
}

// Dashboard combines the 30-day counters with the latest audit entries.
func (s *AdminService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	dash, err := s.Reports.Dashboard(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}

	recent, err := s.Activity.ListRecent(ctx, 10)
	if err != nil {
		return domain.Dashboard{}, err
	}
	if recent == nil {
		recent = []domain.ActivityEntry{}
	}
	dash.RecentActivity = recent
	return dash, nil
}

func (s *AdminService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.Reports.Stats(ctx)
}

// SendReminders mails every client with a pending session inside the
// configured window (system_config key "reminder_hours", default 24) and
// reports how many reminders went out. A failed send skips that client
// without aborting the batch.
func (s *AdminService) SendReminders(ctx context.Context, actor domain.Actor) (int, error) {
	hours := 24
	if raw, ok, err := s.Config.Get(ctx, "reminder_hours"); err != nil {
		return 0, err
	} else if ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	sessions, err := s.Sessions.ListUpcomingPending(ctx, time.Duration(hours)*time.Hour)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sess := range sessions {
		subject, body := sessionReminderEmail(sess.Name, sess.Title, sess.Date, sess.Location)
		if err := s.Mailer.Send(ctx, sess.Email, subject, body); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("reminder email failed", "session_id", sess.ID, "error", err)
			}
			continue
		}
		sent++

		userID := sess.UserID
		title := sess.Title
		date := sess.Date
		s.Dispatch.Go("reminder notification", func(ctx context.Context) error {
			_, err := s.Notifications.CreateNotification(ctx, userID,
				"Recordatorio de sesión",
				"Tu sesión \""+title+"\" es el "+date.Format("02/01/2006 15:04")+".")
			return err
		})
	}

	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "reminders_sent",
		EntityType: "photo_session",
	})

	return sent, nil
}
