package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lunastudios/internal/domain"
)

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies the bearer tokens carried in the
// Authorization header. HS256 with a shared secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) TokenCodec {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return TokenCodec{secret: secretCopy, ttl: ttl, now: time.Now}
}

func (c TokenCodec) Issue(u domain.User) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded actor.
// Any failure maps to ErrUnauthorized; callers never see parser details.
func (c TokenCodec) Verify(raw string) (domain.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	if claims.UserID == "" {
		return domain.Actor{}, domain.ErrUnauthorized
	}

	role := domain.Role(claims.Role)
	if role != domain.RoleAdmin {
		role = domain.RoleClient
	}
	return domain.Actor{ID: claims.UserID, Role: role}, nil
}
