package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/greenprompt/backend/internal/auth"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/models"
)

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserLookup loads a user by id, returning nil when absent.
type UserLookup interface {
	LookupByID(ctx context.Context, id int64) (*models.User, error)
}

// Identify reads the session cookie and, when it carries a valid token for an
// existing user, puts that user on the request context. Any failure leaves
// the request anonymous; it never rejects.
func Identify(tokens TokenVerifier, users UserLookup, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				logger.Debug(r.Context(), "ignoring session token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.LookupByID(r.Context(), userID)
			if err != nil {
				logger.Warn(r.Context(), "session user lookup failed", "user_id", userID, "error", err)
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
