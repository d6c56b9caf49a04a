package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"lunastudios/internal/domain"
)

type authCtxKey int

const actorKey authCtxKey = iota

// lastLoginStore is the slice of the users store the middleware needs to
// stamp activity.
type lastLoginStore interface {
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
}

func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		actor, err := a.tokens.Verify(raw)
		if err != nil {
			WriteDomainError(w, err)
			return
		}

		if a.users != nil {
			userID := actor.ID
			when := time.Now()
			a.dispatch.Go("stamp last login", func(ctx context.Context) error {
				return a.users.SetLastLogin(ctx, userID, when)
			})
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (a *api) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := CurrentActor(r.Context())
		if !ok || !actor.IsAdmin() {
			WriteDomainError(w, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func CurrentActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
