package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type guestKey struct{}

const guestCookieMaxAge = 365 * 24 * time.Hour

// GuestScope assigns anonymous visitors a stable scope id kept in a cookie.
// Authenticated requests pass through untouched.
func GuestScope(cookieName string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) != "" {
				next.ServeHTTP(w, r)
				return
			}
			scope := ""
			if c, err := r.Cookie(cookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					scope = id.String()
				}
			}
			if scope == "" {
				scope = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    scope,
					Path:     "/",
					MaxAge:   int(guestCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), guestKey{}, scope)))
		})
	}
}

func GuestScopeFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(guestKey{}).(string); ok {
		return v
	}
	return ""
}
