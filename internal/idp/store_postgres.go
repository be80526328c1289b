// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package idp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/myduka/gateway/internal/platform/apperr"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint violations.
const uniqueViolation = "23505"

// PostgresUserRepository implements [UserRepository] using pgx.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a PostgreSQL-backed account repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// FindByID retrieves an account by its numeric ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	const query = `
		SELECT id, email, firstname, lastname, passwordhash, role, merchantid, storeid, isactive, createdat, updatedat
		FROM identity.account
		WHERE id = $1`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, id), "find_by_id")
}

// FindByEmail retrieves an account by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, firstname, lastname, passwordhash, role, merchantid, storeid, isactive, createdat, updatedat
		FROM identity.account
		WHERE email = $1`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, email), "find_by_email")
}

// Create persists a new account and fills in its generated ID.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO identity.account (
			email, firstname, lastname, passwordhash, role, merchantid, storeid, isactive, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := repository.pool.QueryRow(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.MerchantID,
		user.StoreID,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Conflict("An account with this email already exists")
		}
		return fmt.Errorf("postgres_account_create_failed: %w", err)
	}

	return nil
}

// Update overwrites the mutable fields of an existing account.
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE identity.account
		SET firstname = $2, lastname = $3, passwordhash = $4, role = $5,
		    merchantid = $6, storeid = $7, isactive = $8, updatedat = $9
		WHERE id = $1`

	user.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.Role,
		user.MerchantID,
		user.StoreID,
		user.IsActive,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_account_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

// scanOne maps one result row onto a [*User], bridging pgx.ErrNoRows.
func (repository *PostgresUserRepository) scanOne(row pgx.Row, operation string) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.Role,
		&user.MerchantID,
		&user.StoreID,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_%s_failed: %w", operation, err)
	}

	return user, nil
}
