package service

import (
	"context"
	"strings"
	"time"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type SessionsStore interface {
	CreateSession(ctx context.Context, p postgres.CreateSessionParams) (domain.PhotoSession, error)
	GetSessionByID(ctx context.Context, id string) (domain.PhotoSession, error)
	UpdateSession(ctx context.Context, id string, p postgres.UpdateSessionParams) (domain.PhotoSession, error)
	SearchSessions(ctx context.Context, f postgres.SessionFilter) ([]domain.PhotoSession, error)
	ListCalendarEvents(ctx context.Context, ownerID string) ([]domain.CalendarEvent, error)
}

type SessionUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type SessionService struct {
	Sessions      SessionsStore
	Users         SessionUsersStore
	Notifications NotificationCreator
	Activity      ActivityLog
	Mailer        Mailer
	Dispatch      *Dispatcher
}

type CreateSessionInput struct {
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        string    `json:"location"`
	Price           string    `json:"price"`
	PackageID       string    `json:"package_id"`
}

// UpdateSessionInput uses pointers so absent fields keep their stored
// value. The owner is never updatable.
type UpdateSessionInput struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Date            *time.Time `json:"date"`
	DurationMinutes *int       `json:"duration_minutes"`
	Location        *string    `json:"location"`
	Status          *string    `json:"status"`
	Price           *string    `json:"price"`
	PackageID       *string    `json:"package_id"`
}

func (s *SessionService) Create(ctx context.Context, actor domain.Actor, in CreateSessionInput) (domain.PhotoSession, error) {
	in.Title = strings.TrimSpace(in.Title)

	fields := map[string]string{}
	if in.Title == "" {
		fields["title"] = "required"
	}
	if in.Date.IsZero() {
		fields["date"] = "required"
	}
	if len(fields) > 0 {
		return domain.PhotoSession{}, domain.NewValidationError(fields)
	}

	ownerID := actor.ID
	if in.UserID != "" {
		if !actor.CanAccess(in.UserID) {
			return domain.PhotoSession{}, domain.ErrForbidden
		}
		ownerID = in.UserID
	}

	sess, err := s.Sessions.CreateSession(ctx, postgres.CreateSessionParams{
		UserID:          ownerID,
		Title:           in.Title,
		Description:     in.Description,
		Date:            in.Date,
		DurationMinutes: in.DurationMinutes,
		Location:        in.Location,
		Price:           in.Price,
		PackageID:       in.PackageID,
	})
	if err != nil {
		return domain.PhotoSession{}, err
	}

	s.Dispatch.Go("session created notification", func(ctx context.Context) error {
		_, err := s.Notifications.CreateNotification(ctx, sess.UserID,
			"Sesión agendada",
			"Tu sesión \""+sess.Title+"\" fue agendada para el "+sess.Date.Format("02/01/2006 15:04")+".")
		return err
	})
	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "session_created",
		EntityType: "photo_session",
		EntityID:   sess.ID,
	})

	return sess, nil
}

func (s *SessionService) Get(ctx context.Context, actor domain.Actor, id string) (domain.PhotoSession, error) {
	sess, err := s.Sessions.GetSessionByID(ctx, id)
	if err != nil {
		return domain.PhotoSession{}, err
	}
	if !actor.CanAccess(sess.UserID) {
		return domain.PhotoSession{}, domain.ErrForbidden
	}
	return sess, nil
}

func (s *SessionService) Update(ctx context.Context, actor domain.Actor, id string, in UpdateSessionInput) (domain.PhotoSession, error) {
	cur, err := s.Sessions.GetSessionByID(ctx, id)
	if err != nil {
		return domain.PhotoSession{}, err
	}
	if !actor.CanAccess(cur.UserID) {
		return domain.PhotoSession{}, domain.ErrForbidden
	}

	p := postgres.UpdateSessionParams{
		Title:           cur.Title,
		Description:     cur.Description,
		Date:            cur.Date,
		DurationMinutes: cur.DurationMinutes,
		Location:        cur.Location,
		Status:          cur.Status,
		Price:           cur.Price,
	}
	if cur.PackageID != nil {
		p.PackageID = *cur.PackageID
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Date != nil {
		p.Date = *in.Date
	}
	if in.DurationMinutes != nil {
		p.DurationMinutes = *in.DurationMinutes
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Status != nil {
		p.Status = strings.TrimSpace(*in.Status)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.PackageID != nil {
		p.PackageID = *in.PackageID
	}
	if p.Title == "" {
		return domain.PhotoSession{}, domain.NewValidationError(map[string]string{"title": "required"})
	}

	updated, err := s.Sessions.UpdateSession(ctx, id, p)
	if err != nil {
		return domain.PhotoSession{}, err
	}

	if in.Status != nil && updated.Status != cur.Status {
		s.notifyStatusChange(updated)
	}
	appendActivity(ctx, s.Dispatch, s.Activity, domain.ActivityEntry{
		UserID:     actor.ID,
		Action:     "session_updated",
		EntityType: "photo_session",
		EntityID:   updated.ID,
	})

	return updated, nil
}

func (s *SessionService) notifyStatusChange(sess domain.PhotoSession) {
	s.Dispatch.Go("session status email", func(ctx context.Context) error {
		owner, err := s.Users.GetUserByID(ctx, sess.UserID)
		if err != nil {
			return err
		}
		subject, body := sessionStatusEmail(owner.Name, sess)
		return s.Mailer.Send(ctx, owner.Email, subject, body)
	})
	s.Dispatch.Go("session status notification", func(ctx context.Context) error {
		_, err := s.Notifications.CreateNotification(ctx, sess.UserID,
			"Estado de sesión actualizado",
			"Tu sesión \""+sess.Title+"\" ahora está \""+sess.Status+"\".")
		return err
	})
}

// List returns sessions visible to the actor. Non-admin callers are always
// pinned to their own rows; the client filter is admin only.
func (s *SessionService) List(ctx context.Context, actor domain.Actor, f postgres.SessionFilter) ([]domain.PhotoSession, error) {
	if !actor.IsAdmin() {
		f.OwnerID = actor.ID
		f.ClientID = ""
	} else {
		f.OwnerID = ""
	}
	return s.Sessions.SearchSessions(ctx, f)
}

func (s *SessionService) CalendarEvents(ctx context.Context, actor domain.Actor) ([]domain.CalendarEvent, error) {
	ownerID := actor.ID
	if actor.IsAdmin() {
		ownerID = ""
	}
	return s.Sessions.ListCalendarEvents(ctx, ownerID)
}
