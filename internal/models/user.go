package models

import "time"

// User represents a row in the users table.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialize
	CreatedAt    time.Time `json:"-"`
}

// PublicUser is the shape returned by the auth endpoints.
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Public returns the client-facing view of u, or nil when u is nil.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{ID: u.ID, Email: u.Email}
}

// CredentialsRequest is the JSON body for POST /api/auth/signup and /api/auth/login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse wraps a user (or null) for the auth endpoints.
type UserResponse struct {
	User *PublicUser `json:"user"`
}
