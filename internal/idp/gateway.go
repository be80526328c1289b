// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

package idp

import (
	"context"

	"github.com/myduka/gateway/internal/authgw"
	"github.com/myduka/gateway/internal/session"
)

// Gateway adapts the embedded identity [Service] to the [authgw.AuthGateway]
// contract, so standalone deployments wire it in place of the HTTP client
// without the rest of the gateway noticing.
type Gateway struct {
	service *Service
}

// NewGateway wraps the identity service in the AuthGateway contract.
func NewGateway(service *Service) *Gateway {
	return &Gateway{service: service}
}

// Login exchanges email + password for credentials.
func (gateway *Gateway) Login(ctx context.Context, email, password string) (*authgw.Credentials, error) {
	result, err := gateway.service.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return toCredentials(result), nil
}

// Me validates an access token and returns the current profile.
func (gateway *Gateway) Me(ctx context.Context, accessToken string) (*session.UserProfile, error) {
	user, err := gateway.service.Me(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// RegisterAdminFromInvite redeems an invitation and returns fresh credentials.
func (gateway *Gateway) RegisterAdminFromInvite(ctx context.Context, completion authgw.InviteCompletion) (*authgw.Credentials, error) {
	result, err := gateway.service.CompleteInvite(ctx, CompleteInviteInput{
		Token:     completion.InviteToken,
		FirstName: completion.FirstName,
		LastName:  completion.LastName,
		Password:  completion.Password,
	})
	if err != nil {
		return nil, err
	}
	return toCredentials(result), nil
}

// Logout acknowledges a logout for the token.
func (gateway *Gateway) Logout(ctx context.Context, accessToken string) error {
	return gateway.service.Logout(ctx, accessToken)
}

// toCredentials projects a LoginResult onto the gateway credentials shape.
func toCredentials(result *LoginResult) *authgw.Credentials {
	return &authgw.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User.Profile(),
	}
}
