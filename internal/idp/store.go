// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package idp

import "context"

// UserRepository is the persistence contract for identity accounts.
//
// Implementations return [apperr.NotFound] when a lookup misses and
// [apperr.Conflict] on unique-constraint violations, keeping storage
// details out of the service layer.
type UserRepository interface {
	// FindByID retrieves an account by its numeric ID.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail retrieves an account by its unique email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a new account and fills in its generated ID.
	Create(ctx context.Context, user *User) error

	// Update overwrites the mutable fields of an existing account.
	Update(ctx context.Context, user *User) error
}
