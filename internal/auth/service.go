package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/greenprompt/backend/internal/common"
	"github.com/ayush/greenprompt/backend/internal/models"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Service registers and authenticates users.
type Service struct {
	users     UserStore
	cost      int
	dummyHash []byte
}

// NewService builds a Service hashing with the given bcrypt cost
// (0 means bcrypt.DefaultCost).
func NewService(users UserStore, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// compared against when the email is unknown so both paths pay for a hash
	dummy, _ := bcrypt.GenerateFromPassword([]byte("greenprompt-dummy-password"), cost)
	return &Service{users: users, cost: cost, dummyHash: dummy}
}

// Register creates a user. Duplicate emails return common.ErrConflict and
// leave the existing row untouched.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be at most 72 bytes", common.ErrValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, email, string(hashed))
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Authenticate returns the user when the password matches, and (nil, nil)
// when the email is unknown or the password is wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, nil
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	u.PasswordHash = ""
	return u, nil
}

// LookupByID returns (nil, nil) when the user does not exist.
func (s *Service) LookupByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}
