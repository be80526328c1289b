// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// identity provider's Application layer.
package sec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/myduka/gateway/internal/platform/constants"
)

// Token types embedded in the 'typ' claim. Every verification path checks
// the type, so an invitation token can never be replayed as an access token.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeInvite  = "invitation"
)

// AuthClaims represents the payload embedded inside an access or refresh token.
//
// # Why custom claims?
//
// By embedding the Email and Role directly inside the JWT, callers can
// reconstruct the active user context WITHOUT querying the database on
// every verification. Claim names are abbreviated to keep the payload small.
type AuthClaims struct {
	jwt.RegisteredClaims

	Email     string `json:"eml"`
	Role      string `json:"rol"`
	TokenType string `json:"typ"`
}

// UserID returns the numeric user ID carried in the Subject claim.
func (c *AuthClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sec: malformed subject claim: %w", err)
	}
	return id, nil
}

// InviteClaims represents the payload of an invitation token.
//
// It pins the invited email, target role, and tenant scope so the account
// created at redemption time matches exactly what the merchant authorized.
type InviteClaims struct {
	jwt.RegisteredClaims

	Email      string `json:"eml"`
	Role       string `json:"rol"`
	MerchantID *int64 `json:"mid,omitempty"`
	StoreID    *int64 `json:"sid,omitempty"`
	TokenType  string `json:"typ"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService signing with the given shared secret.
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// # Generation

// GenerateAccessToken creates a short-lived access token for a user.
func (service *TokenService) GenerateAccessToken(userID int64, email, role string) (string, error) {
	return service.generateAuthToken(userID, email, role, TokenTypeAccess, constants.AccessTokenTTL)
}

// GenerateRefreshToken creates a long-lived refresh token for a user.
func (service *TokenService) GenerateRefreshToken(userID int64, email, role string) (string, error) {
	return service.generateAuthToken(userID, email, role, TokenTypeRefresh, constants.RefreshTokenTTL)
}

func (service *TokenService) generateAuthToken(userID int64, email, role, tokenType string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email:     email,
		Role:      role,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// GenerateInviteToken creates an invitation token pinning the invited
// email, role, and tenant scope for later redemption.
func (service *TokenService) GenerateInviteToken(email, role string, merchantID, storeID *int64) (string, error) {
	currentTime := time.Now()
	claims := InviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(constants.InviteTokenTTL)),
		},
		Email:      email,
		Role:       role,
		MerchantID: merchantID,
		StoreID:    storeID,
		TokenType:  TokenTypeInvite,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign invite token: %w", err)
	}

	return signedToken, nil
}

// # Verification

// VerifyAccessToken checks the signature, validity, and type of an access token.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	return service.verifyAuthToken(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken checks the signature, validity, and type of a refresh token.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*AuthClaims, error) {
	return service.verifyAuthToken(tokenString, TokenTypeRefresh)
}

func (service *TokenService) verifyAuthToken(tokenString, expectedType string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, service.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("sec: unexpected token type %q", claims.TokenType)
	}

	return claims, nil
}

// VerifyInviteToken checks the signature, validity, and type of an invitation token.
func (service *TokenService) VerifyInviteToken(tokenString string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InviteClaims{}, service.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid invite token: %w", err)
	}

	claims, ok := token.Claims.(*InviteClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid invite token claims")
	}

	if claims.TokenType != TokenTypeInvite {
		return nil, fmt.Errorf("sec: unexpected token type %q", claims.TokenType)
	}

	return claims, nil
}

// keyFunc rejects any signing algorithm other than HMAC before releasing the secret.
func (service *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
	}
	return service.secret, nil
}
