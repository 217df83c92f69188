package auth

import (
	"context"

	"github.com/ayush/greenprompt/backend/internal/models"
)

type ctxKey struct{}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKey{}).(*models.User)
	return u
}

// UserIDFromContext returns a pointer to the user id, nil when anonymous.
func UserIDFromContext(ctx context.Context) *int64 {
	u := UserFromContext(ctx)
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}
