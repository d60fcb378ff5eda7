package auth

import (
	"context"
	"errors"
)

// UserRepository defines operations for user persistence and retrieval.
type UserRepository interface {
	// GetUserByUsername returns a user by username (case-insensitive). If the user
	// is not found, (nil, ErrUserNotFound) is returned.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// CreateUser hashes the password and stores a new user.
	// Returns ErrUserExists on conflict.
	CreateUser(ctx context.Context, username, password string, isAdmin bool) (*User, error)

	// ValidateCredentials checks username and password and records the login.
	// Any mismatch yields ErrInvalidCredentials.
	ValidateCredentials(ctx context.Context, username, password string) (*User, error)
}

// Domain-level errors returned by the repository.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password is too short")
	ErrInvalidToken       = errors.New("invalid token")
)
