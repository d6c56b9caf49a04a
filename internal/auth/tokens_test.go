package auth

import (
	"errors"
	"testing"
	"time"

	"lunastudios/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)

	raw, err := codec.Issue(domain.User{ID: "user-1", Role: domain.RoleAdmin, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	actor, err := codec.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if actor.ID != "user-1" {
		t.Fatalf("actor id: got %q", actor.ID)
	}
	if actor.Role != domain.RoleAdmin {
		t.Fatalf("actor role: got %q", actor.Role)
	}
}

func TestTokenUnknownRoleDowngradesToClient(t *testing.T) {
	codec := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)

	raw, err := codec.Issue(domain.User{ID: "user-1", Role: "superuser"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	actor, err := codec.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if actor.Role != domain.RoleClient {
		t.Fatalf("role: got %q, want client", actor.Role)
	}
}

func TestTokenExpired(t *testing.T) {
	codec := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Minute)
	issued := time.Now().Add(-time.Hour)
	codec.now = func() time.Time { return issued }

	raw, err := codec.Issue(domain.User{ID: "user-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	codec.now = time.Now
	if _, err := codec.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify expired: got %v, want ErrUnauthorized", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	codec := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	other := NewTokenCodec([]byte("fedcba9876543210fedcba9876543210"), time.Hour)

	raw, err := codec.Issue(domain.User{ID: "user-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify wrong secret: got %v, want ErrUnauthorized", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	codec := NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("Verify(%q): got %v, want ErrUnauthorized", raw, err)
		}
	}
}
