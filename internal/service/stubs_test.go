package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"lunastudios/internal/domain"
	"lunastudios/internal/store/postgres"
)

type stubUsersStore struct {
	t *testing.T

	createUserFunc     func(context.Context, string, string, string, domain.Role) (domain.User, error)
	getUserByIDFunc    func(context.Context, string) (domain.User, error)
	getUserByEmailFunc func(context.Context, string) (domain.UserWithPassword, error)
	setLastLoginFunc   func(context.Context, string, time.Time) error
	updatePasswordFunc func(context.Context, string, string) error
	updateProfileFunc  func(context.Context, string, string, string, string, json.RawMessage) (domain.User, error)
}

func (s *stubUsersStore) CreateUser(ctx context.Context, email, name, passwordHash string, role domain.Role) (domain.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, email, name, passwordHash, role)
	}
	s.t.Fatalf("CreateUser called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithPassword{}, errors.New("unexpected call")
}

func (s *stubUsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	if s.setLastLoginFunc != nil {
		return s.setLastLoginFunc(ctx, userID, when)
	}
	s.t.Fatalf("SetLastLogin called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	if s.updatePasswordFunc != nil {
		return s.updatePasswordFunc(ctx, userID, passwordHash)
	}
	s.t.Fatalf("UpdatePassword called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) UpdateProfile(ctx context.Context, userID, name, phone, address string, preferences json.RawMessage) (domain.User, error) {
	if s.updateProfileFunc != nil {
		return s.updateProfileFunc(ctx, userID, name, phone, address, preferences)
	}
	s.t.Fatalf("UpdateProfile called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

type stubResetsStore struct {
	t *testing.T

	createResetTokenFunc   func(context.Context, domain.PasswordResetToken) error
	getResetTokenFunc      func(context.Context, string) (domain.PasswordResetToken, error)
	markResetTokenUsedFunc func(context.Context, string, time.Time) error
}

func (s *stubResetsStore) CreateResetToken(ctx context.Context, token domain.PasswordResetToken) error {
	if s.createResetTokenFunc != nil {
		return s.createResetTokenFunc(ctx, token)
	}
	s.t.Fatalf("CreateResetToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubResetsStore) GetResetTokenByHash(ctx context.Context, tokenHash string) (domain.PasswordResetToken, error) {
	if s.getResetTokenFunc != nil {
		return s.getResetTokenFunc(ctx, tokenHash)
	}
	s.t.Fatalf("GetResetTokenByHash called unexpectedly")
	return domain.PasswordResetToken{}, errors.New("unexpected call")
}

func (s *stubResetsStore) MarkResetTokenUsed(ctx context.Context, tokenHash string, when time.Time) error {
	if s.markResetTokenUsedFunc != nil {
		return s.markResetTokenUsedFunc(ctx, tokenHash, when)
	}
	s.t.Fatalf("MarkResetTokenUsed called unexpectedly")
	return errors.New("unexpected call")
}

type stubSessionsStore struct {
	t *testing.T

	createSessionFunc      func(context.Context, postgres.CreateSessionParams) (domain.PhotoSession, error)
	getSessionByIDFunc     func(context.Context, string) (domain.PhotoSession, error)
	updateSessionFunc      func(context.Context, string, postgres.UpdateSessionParams) (domain.PhotoSession, error)
	searchSessionsFunc     func(context.Context, postgres.SessionFilter) ([]domain.PhotoSession, error)
	listCalendarEventsFunc func(context.Context, string) ([]domain.CalendarEvent, error)
}

func (s *stubSessionsStore) CreateSession(ctx context.Context, p postgres.CreateSessionParams) (domain.PhotoSession, error) {
	if s.createSessionFunc != nil {
		return s.createSessionFunc(ctx, p)
	}
	s.t.Fatalf("CreateSession called unexpectedly")
	return domain.PhotoSession{}, errors.New("unexpected call")
}

func (s *stubSessionsStore) GetSessionByID(ctx context.Context, id string) (domain.PhotoSession, error) {
	if s.getSessionByIDFunc != nil {
		return s.getSessionByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetSessionByID called unexpectedly")
	return domain.PhotoSession{}, errors.New("unexpected call")
}

func (s *stubSessionsStore) UpdateSession(ctx context.Context, id string, p postgres.UpdateSessionParams) (domain.PhotoSession, error) {
	if s.updateSessionFunc != nil {
		return s.updateSessionFunc(ctx, id, p)
	}
	s.t.Fatalf("UpdateSession called unexpectedly")
	return domain.PhotoSession{}, errors.New("unexpected call")
}

func (s *stubSessionsStore) SearchSessions(ctx context.Context, f postgres.SessionFilter) ([]domain.PhotoSession, error) {
	if s.searchSessionsFunc != nil {
		return s.searchSessionsFunc(ctx, f)
	}
	s.t.Fatalf("SearchSessions called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubSessionsStore) ListCalendarEvents(ctx context.Context, ownerID string) ([]domain.CalendarEvent, error) {
	if s.listCalendarEventsFunc != nil {
		return s.listCalendarEventsFunc(ctx, ownerID)
	}
	s.t.Fatalf("ListCalendarEvents called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubPaymentsStore struct {
	t *testing.T

	createPaymentFunc func(context.Context, postgres.CreatePaymentParams) (domain.Payment, error)
	listPaymentsFunc  func(context.Context, string) ([]domain.Payment, error)
}

func (s *stubPaymentsStore) CreatePayment(ctx context.Context, p postgres.CreatePaymentParams) (domain.Payment, error) {
	if s.createPaymentFunc != nil {
		return s.createPaymentFunc(ctx, p)
	}
	s.t.Fatalf("CreatePayment called unexpectedly")
	return domain.Payment{}, errors.New("unexpected call")
}

func (s *stubPaymentsStore) ListPayments(ctx context.Context, ownerID string) ([]domain.Payment, error) {
	if s.listPaymentsFunc != nil {
		return s.listPaymentsFunc(ctx, ownerID)
	}
	s.t.Fatalf("ListPayments called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubDeliveriesStore struct {
	t *testing.T

	createDeliveryFunc func(context.Context, postgres.CreateDeliveryParams) (domain.PhotoDelivery, error)
	listDeliveriesFunc func(context.Context, string, string) ([]domain.PhotoDelivery, error)
	getDeliveryFunc    func(context.Context, string) (domain.PhotoDelivery, string, error)
	incrementFunc      func(context.Context, string) error
}

func (s *stubDeliveriesStore) CreateDelivery(ctx context.Context, p postgres.CreateDeliveryParams) (domain.PhotoDelivery, error) {
	if s.createDeliveryFunc != nil {
		return s.createDeliveryFunc(ctx, p)
	}
	s.t.Fatalf("CreateDelivery called unexpectedly")
	return domain.PhotoDelivery{}, errors.New("unexpected call")
}

func (s *stubDeliveriesStore) ListDeliveries(ctx context.Context, ownerID, sessionID string) ([]domain.PhotoDelivery, error) {
	if s.listDeliveriesFunc != nil {
		return s.listDeliveriesFunc(ctx, ownerID, sessionID)
	}
	s.t.Fatalf("ListDeliveries called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubDeliveriesStore) GetDelivery(ctx context.Context, id string) (domain.PhotoDelivery, string, error) {
	if s.getDeliveryFunc != nil {
		return s.getDeliveryFunc(ctx, id)
	}
	s.t.Fatalf("GetDelivery called unexpectedly")
	return domain.PhotoDelivery{}, "", errors.New("unexpected call")
}

func (s *stubDeliveriesStore) IncrementDownloadCount(ctx context.Context, id string) error {
	if s.incrementFunc != nil {
		return s.incrementFunc(ctx, id)
	}
	s.t.Fatalf("IncrementDownloadCount called unexpectedly")
	return errors.New("unexpected call")
}

// recordingMailer, recordingNotifications and recordingActivity collect
// everything written to them. They are safe for the dispatcher's
// goroutines.
type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type recordingNotifications struct {
	mu      sync.Mutex
	created []domain.Notification
}

func (n *recordingNotifications) CreateNotification(_ context.Context, userID, subject, message string) (domain.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	created := domain.Notification{UserID: userID, Subject: subject, Message: message}
	n.created = append(n.created, created)
	return created, nil
}

func (n *recordingNotifications) all() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.created...)
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (a *recordingActivity) Append(_ context.Context, e domain.ActivityEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *recordingActivity) ListRecent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := append([]domain.ActivityEntry(nil), a.entries...)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (a *recordingActivity) all() []domain.ActivityEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ActivityEntry(nil), a.entries...)
}
