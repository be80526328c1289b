// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package idp

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/myduka/gateway/internal/platform/apperr"
	"github.com/myduka/gateway/internal/platform/sec"
	"github.com/myduka/gateway/internal/platform/validate"
	"github.com/myduka/gateway/internal/roles"
)

// Service implements the identity operations of the embedded provider.
type Service struct {
	users  UserRepository
	tokens *sec.TokenService
}

// NewService wires the identity service to its repository and token signer.
func NewService(users UserRepository, tokens *sec.TokenService) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// LoginResult carries the tokens and account produced by a successful
// login or invitation redemption.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// # Authentication

// Login verifies email + password and issues a fresh token pair.
//
// # Flow
//  1. Validate the input shape.
//  2. Look up the account; misses and bad passwords share one error
//     message so attackers cannot enumerate accounts.
//  3. Reject inactive accounts and accounts still awaiting invitation
//     redemption (no password set).
//  4. Issue an access token and a refresh token.
func (service *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {

	// ── 1. Validate ───────────────────────────────────────────────────────
	validator := &validate.Validator{}
	if err := validator.
		Required("email", email).
		Email("email", email).
		Required("password", password).
		Err(); err != nil {
		return nil, err
	}

	// ── 2. Look up the account ────────────────────────────────────────────
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, apperr.Internal(err)
	}

	// ── 3. Account state gates ────────────────────────────────────────────
	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is not active")
	}
	if !user.PasswordSet() {
		return nil, apperr.Unauthorized("Account setup is incomplete. Use your invitation link.")
	}
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	// ── 4. Issue tokens ───────────────────────────────────────────────────
	return service.issueTokens(user)
}

// Me validates an access token and returns the current account state.
//
// The account is re-fetched on every call so deactivation takes effect
// before the token expires.
func (service *Service) Me(ctx context.Context, accessToken string) (*User, error) {
	claims, err := service.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, apperr.Internal(err)
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("Account is not active")
	}

	return user, nil
}

// Logout acknowledges a logout request.
//
// Tokens are stateless, so there is nothing to revoke server-side; the
// gateway clears the browser session and the tokens age out on their own.
func (service *Service) Logout(_ context.Context, _ string) error {
	return nil
}

// # Registration

// RegisterInput describes a merchant self-registration.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// Register creates an active merchant account ready to log in.
//
// Merchants are the root of every tenant: admins and clerks can only enter
// through a merchant's invitation, so self-registration is restricted to
// the merchant role. This is also how a fresh deployment gets its first
// account.
//
// # Flow
//  1. Reject any requested role other than merchant.
//  2. Validate the payload.
//  3. Reject duplicate emails.
//  4. Hash the password and create the account active.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {

	// ── 1. Role gate ──────────────────────────────────────────────────────
	if roles.Normalize(input.Role) != roles.RoleMerchant {
		return nil, apperr.Forbidden("Only merchants can self-register. Admins and clerks must be invited.")
	}

	// ── 2. Validate ───────────────────────────────────────────────────────
	validator := &validate.Validator{}
	if err := validator.
		Required("email", input.Email).
		Email("email", input.Email).
		Required("first_name", input.FirstName).
		Required("last_name", input.LastName).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		Err(); err != nil {
		return nil, err
	}

	// ── 3. Uniqueness ─────────────────────────────────────────────────────
	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("An account with this email already exists")
	} else if !isNotFound(err) {
		return nil, apperr.Internal(err)
	}

	// ── 4. Create the active account ──────────────────────────────────────
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	merchant := &User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		FirstName:    normalizeName(input.FirstName),
		LastName:     normalizeName(input.LastName),
		PasswordHash: passwordHash,
		Role:         string(roles.RoleMerchant),
		IsActive:     true,
	}
	if err := service.users.Create(ctx, merchant); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	return merchant, nil
}

// # Invitations

// InviteInput describes the account a merchant wants to invite.
type InviteInput struct {
	Email     string
	Role      string
	FirstName string
	LastName  string
	StoreID   *int64
}

// Invitation is the result of issuing an invite: the redeemable token and
// the inactive account it points at.
type Invitation struct {
	Token string
	User  *User
}

// Invite creates an inactive account and issues a redeemable invitation token.
//
// # Rules
//   - Only merchants may invite.
//   - Invitable roles are admin and clerk; clerks need a store assignment.
//   - The invited email must not already have an account.
func (service *Service) Invite(ctx context.Context, inviter *User, input InviteInput) (*Invitation, error) {

	// ── 1. Authorization ──────────────────────────────────────────────────
	if inviter == nil || roles.Normalize(inviter.Role) != roles.RoleMerchant {
		return nil, apperr.Forbidden("Only merchants can send invitations")
	}

	// ── 2. Validate ───────────────────────────────────────────────────────
	invitedRole := string(roles.Normalize(input.Role))
	validator := &validate.Validator{}
	if err := validator.
		Required("email", input.Email).
		Email("email", input.Email).
		OneOf("role", strings.ToLower(strings.TrimSpace(input.Role)), "admin", "clerk").
		Custom("store_id", invitedRole == string(roles.RoleClerk) && input.StoreID == nil,
			"Clerks must be assigned a store").
		Err(); err != nil {
		return nil, err
	}

	// ── 3. Uniqueness ─────────────────────────────────────────────────────
	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("An account with this email already exists")
	} else if !isNotFound(err) {
		return nil, apperr.Internal(err)
	}

	// ── 4. Create the inactive account ────────────────────────────────────
	merchantID := inviter.ID
	invited := &User{
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		FirstName:  normalizeName(input.FirstName),
		LastName:   normalizeName(input.LastName),
		Role:       invitedRole,
		MerchantID: &merchantID,
		StoreID:    input.StoreID,
		IsActive:   false,
	}
	if err := service.users.Create(ctx, invited); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	// ── 5. Issue the invitation token ─────────────────────────────────────
	token, err := service.tokens.GenerateInviteToken(invited.Email, invited.Role, invited.MerchantID, invited.StoreID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Invitation{Token: token, User: invited}, nil
}

// CompleteInviteInput is the payload for redeeming an invitation.
type CompleteInviteInput struct {
	Token     string
	FirstName string
	LastName  string
	Password  string
}

// CompleteInvite redeems an invitation: the account is completed,
// activated, and logged in atomically from the caller's perspective.
//
// # Flow
//  1. Verify the invitation token (signature, expiry, type).
//  2. Validate the profile payload.
//  3. Find the invited account by its pinned email, or create it if the
//     invitation predates the account record.
//  4. Reject invitations whose account was already set up.
//  5. Set the profile and password, activate, and issue tokens like login.
func (service *Service) CompleteInvite(ctx context.Context, input CompleteInviteInput) (*LoginResult, error) {

	// ── 1. Verify the invitation ──────────────────────────────────────────
	claims, err := service.tokens.VerifyInviteToken(input.Token)
	if err != nil {
		return nil, apperr.Unauthorized("Invitation is invalid or expired")
	}

	// ── 2. Validate ───────────────────────────────────────────────────────
	validator := &validate.Validator{}
	if err := validator.
		Required("first_name", input.FirstName).
		Required("last_name", input.LastName).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		Err(); err != nil {
		return nil, err
	}

	// ── 3. Find or create the invited account ─────────────────────────────
	user, err := service.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if !isNotFound(err) {
			return nil, apperr.Internal(err)
		}
		user = &User{
			Email:      claims.Email,
			Role:       claims.Role,
			MerchantID: claims.MerchantID,
			StoreID:    claims.StoreID,
		}
		if createErr := service.users.Create(ctx, user); createErr != nil {
			return nil, apperr.Internal(createErr)
		}
	}

	// ── 4. Single redemption ──────────────────────────────────────────────
	if user.IsActive && user.PasswordSet() {
		return nil, apperr.Conflict("This invitation has already been redeemed")
	}

	// ── 5. Complete & activate ────────────────────────────────────────────
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user.FirstName = normalizeName(input.FirstName)
	user.LastName = normalizeName(input.LastName)
	user.PasswordHash = passwordHash
	user.Role = claims.Role
	user.MerchantID = claims.MerchantID
	user.StoreID = claims.StoreID
	user.IsActive = true

	if err := service.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}

	return service.issueTokens(user)
}

// # Helpers

// issueTokens mints the access/refresh pair for an authenticated account.
func (service *Service) issueTokens(user *User) (*LoginResult, error) {
	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshToken, err := service.tokens.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// normalizeName trims and NFC-normalizes a person name so visually
// identical Unicode inputs persist identically.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// isNotFound reports whether err is the repository's NOT_FOUND error.
func isNotFound(err error) bool {
	var ae *apperr.AppError
	return errors.As(err, &ae) && ae.Code == "NOT_FOUND"
}
