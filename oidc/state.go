package oidc

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	authStatePrefix  = "authstate:"
	tokenStatePrefix = "tokens:"
)

// authState is the transient state of one pending authorization round trip.
// Written when the authorization URL is issued, consumed exactly once by the
// code exchange.
type authState struct {
	State    string `json:"state"`
	Nonce    string `json:"nonce"`
	Verifier string `json:"verifier"`
}

// tokenState is the client's own copy of the token material for one user.
// Distinct from the engine's session record: this is what the refresh grant
// and the local authentication check operate on.
type tokenState struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
	ObtainedAt   int64  `json:"obtained_at"` // epoch milliseconds
}

func (c *Client) saveAuthState(ctx context.Context, userID string, st *authState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := c.kv.SetData(ctx, authStatePrefix+userID, string(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return nil
}

func (c *Client) loadAuthState(ctx context.Context, userID string) (*authState, error) {
	raw, err := c.kv.GetData(ctx, authStatePrefix+userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	if raw == "" {
		return nil, ErrNoPendingAuthorization
	}
	st := &authState{}
	if err := json.Unmarshal([]byte(raw), st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return st, nil
}

func (c *Client) clearAuthState(ctx context.Context, userID string) error {
	if err := c.kv.RemoveData(ctx, authStatePrefix+userID); err != nil {
		return fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return nil
}

func (c *Client) saveTokenState(ctx context.Context, userID string, st *tokenState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := c.kv.SetData(ctx, tokenStatePrefix+userID, string(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return nil
}

// loadTokenState returns nil with no error when the user holds no token
// material; absence is a normal outcome for the authentication check.
func (c *Client) loadTokenState(ctx context.Context, userID string) (*tokenState, error) {
	raw, err := c.kv.GetData(ctx, tokenStatePrefix+userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	if raw == "" {
		return nil, nil
	}
	st := &tokenState{}
	if err := json.Unmarshal([]byte(raw), st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return st, nil
}

func (c *Client) clearTokenState(ctx context.Context, userID string) error {
	if err := c.kv.RemoveData(ctx, tokenStatePrefix+userID); err != nil {
		return fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return nil
}
