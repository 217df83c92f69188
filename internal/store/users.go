package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayush/greenprompt/backend/internal/common"
	"github.com/ayush/greenprompt/backend/internal/models"
)

// UserStore handles user rows.
type UserStore struct {
	db      DBTX
	dialect Dialect
}

func NewUserStore(db DBTX, dialect Dialect) *UserStore {
	return &UserStore{db: db, dialect: dialect}
}

// CreateUser inserts a user. A duplicate email yields common.ErrConflict.
func (s *UserStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	u := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`INSERT INTO users (email, password_hash, created_at)
		 VALUES (?, ?, ?)
		 RETURNING id`),
		u.Email, u.PasswordHash, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email %q is already registered", common.ErrConflict, email)
		}
		return nil, fmt.Errorf("%w: create user: %w", common.ErrStorage, err)
	}
	return u, nil
}

// GetUserByEmail returns common.ErrNotFound when no row matches.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

// GetUserByID returns common.ErrNotFound when no row matches.
func (s *UserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *UserStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get user: %w", common.ErrStorage, err)
	}
	return &u, nil
}

// CountUsers returns the number of registered users.
func (s *UserStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count users: %w", common.ErrStorage, err)
	}
	return n, nil
}
