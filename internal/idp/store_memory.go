// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package idp

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/myduka/gateway/internal/platform/apperr"
)

// MemoryUserRepository is an in-process [UserRepository] for tests and
// throwaway development environments. Accounts are lost on restart.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

// NewMemoryUserRepository creates an empty in-memory account repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID: 1,
		users:  make(map[int64]*User),
	}
}

// FindByID retrieves an account by its numeric ID.
func (repository *MemoryUserRepository) FindByID(_ context.Context, id int64) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, found := repository.users[id]
	if !found {
		return nil, apperr.NotFound("Account")
	}

	clone := *user
	return &clone, nil
}

// FindByEmail retrieves an account by its unique email (case-insensitive).
func (repository *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	for _, user := range repository.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}

	return nil, apperr.NotFound("Account")
}

// Create persists a new account and fills in its generated ID.
func (repository *MemoryUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict("An account with this email already exists")
		}
	}

	now := time.Now()
	user.ID = repository.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	repository.nextID++

	clone := *user
	repository.users[user.ID] = &clone

	return nil
}

// Update overwrites the mutable fields of an existing account.
func (repository *MemoryUserRepository) Update(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, found := repository.users[user.ID]; !found {
		return apperr.NotFound("Account")
	}

	user.UpdatedAt = time.Now()
	clone := *user
	repository.users[user.ID] = &clone

	return nil
}
