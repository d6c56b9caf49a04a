package domain

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// Actor is the identity attached to a request after token verification.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanAccess reports whether the actor may read or mutate a resource owned
// by ownerID. Admins may access everything; everyone else only their own
// rows.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin() || (a.ID != "" && a.ID == ownerID)
}

type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone,omitempty"`
	Address      string          `json:"address,omitempty"`
	ProfileImage string          `json:"profile_image,omitempty"`
	Role         Role            `json:"role"`
	Preferences  json.RawMessage `json:"preferences,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	LastLogin    *time.Time      `json:"last_login,omitempty"`
}

type UserWithPassword struct {
	User
	PasswordHash string `json:"-"`
}

// PhotoSession is a booked shoot. Status is free text; the values the
// studio uses today are "pendiente", "confirmada", "completada" and
// "cancelada". The owner never changes after creation.
type PhotoSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Date            time.Time  `json:"date"`
	DurationMinutes int        `json:"duration_minutes"`
	Location        string     `json:"location,omitempty"`
	Status          string     `json:"status"`
	Price           string     `json:"price,omitempty"`
	PackageID       *string    `json:"package_id,omitempty"`
	UserName        string     `json:"user_name,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type Package struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           string          `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	PhotoCount      int             `json:"photo_count"`
	LocationCount   int             `json:"location_count"`
	Features        json.RawMessage `json:"features,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CustomPackageRequest struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Tipo       string    `json:"tipo"`
	Tiempo     string    `json:"tiempo"`
	Fotos      string    `json:"fotos"`
	Locaciones string    `json:"locaciones"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	PaymentCompleted = "completed"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment amounts travel as strings so that what the client sent comes
// back byte for byte; no numeric validation happens server side.
type Payment struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Amount        string    `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	PaymentDate   time.Time `json:"payment_date"`
	CreatedAt     time.Time `json:"created_at"`

	SessionTitle string     `json:"session_title,omitempty"`
	SessionDate  *time.Time `json:"session_date,omitempty"`
	UserName     string     `json:"user_name,omitempty"`
}

type PhotoDelivery struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"session_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	FileURL       string     `json:"file_url"`
	FileType      string     `json:"file_type"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	DownloadCount int        `json:"download_count"`
	CreatedAt     time.Time  `json:"created_at"`

	SessionTitle string     `json:"session_title,omitempty"`
	SessionDate  *time.Time `json:"session_date,omitempty"`
}

func (d PhotoDelivery) Expired(now time.Time) bool {
	return d.ExpiryDate != nil && d.ExpiryDate.Before(now)
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityEntry is an append-only audit row.
type ActivityEntry struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	IP         string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PasswordResetToken stores only the SHA-256 hash of the raw token that was
// mailed out; the raw value never touches the database.
type PasswordResetToken struct {
	ID          string
	UserID      string
	TokenHash   string
	SentToEmail string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
}

// CalendarEvent is the projection of a session used by the booking calendar.
type CalendarEvent struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}
