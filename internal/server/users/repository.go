// Package users provides account storage and the register/login service
// that fronts the API with bearer credentials.
package users

import "context"

type Repository interface {
	// Create inserts a new user. Returns common.ErrorValidation if the
	// username is already taken.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByUsername returns common.ErrorNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
