package goSession

import (
	"context"
	"fmt"
)

// requireAuthenticated gates the token reads: every accessor below first
// proves the session is live (which may silently refresh it) before
// delegating to the authorization client.
func (e *Engine) requireAuthenticated(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingIdentifier
	}
	authed, err := e.IsAuthenticated(ctx, userID)
	if err != nil {
		return err
	}
	if !authed {
		return ErrNotLoggedIn
	}
	return nil
}

// GetIDToken returns the raw ID token for a logged-in user.
func (e *Engine) GetIDToken(ctx context.Context, userID string) (string, error) {
	if err := e.requireAuthenticated(ctx, userID); err != nil {
		return "", err
	}
	token, err := e.client.GetIDToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return token, nil
}

// GetAccessToken returns the raw access token for a logged-in user.
func (e *Engine) GetAccessToken(ctx context.Context, userID string) (string, error) {
	if err := e.requireAuthenticated(ctx, userID); err != nil {
		return "", err
	}
	token, err := e.client.GetAccessToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return token, nil
}

// GetBasicUserInfo returns display claims for a logged-in user.
func (e *Engine) GetBasicUserInfo(ctx context.Context, userID string) (*BasicUserInfo, error) {
	if err := e.requireAuthenticated(ctx, userID); err != nil {
		return nil, err
	}
	info, err := e.client.GetBasicUserInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return info, nil
}

// GetDecodedIDToken returns the decoded ID-token claims for a logged-in user.
func (e *Engine) GetDecodedIDToken(ctx context.Context, userID string) (IDTokenClaims, error) {
	if err := e.requireAuthenticated(ctx, userID); err != nil {
		return nil, err
	}
	claims, err := e.client.GetDecodedIDToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return claims, nil
}
