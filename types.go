package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/session"
)

// AuthURLCallback is invoked with the provider authorization URL during the
// start branch of SignIn. The caller is expected to issue the HTTP redirect;
// SignIn itself never blocks waiting for the round trip.
type AuthURLCallback func(url string)

// KeyValueStore is the persistence collaborator contract: single string
// values, absence reads as an empty string. The session layer owns all
// (de)serialization on top of it.
type KeyValueStore = session.KeyValueStore

// TokenResult carries the token material handed back to routing layers.
// Session holds the session key the material is stored under, so callers can
// set their cookie from it.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
	Session      string `json:"session"`
}

// IDTokenClaims is the decoded payload of an ID token.
type IDTokenClaims map[string]any

// BasicUserInfo is the subset of ID-token claims exposed to callers that
// only need display data. Raw carries the full claim set.
type BasicUserInfo struct {
	Sub         string
	Email       string
	Username    string
	GivenName   string
	FamilyName  string
	DisplayName string
	Raw         IDTokenClaims
}

// SignInOptions carries per-call parameters appended to the authorization
// request (prompt, login_hint, fidp and the like). Nil means defaults.
type SignInOptions struct {
	Params map[string]string
}

// AuthClient is the authorization-server collaborator. Implementations must
// keep no per-user mutable fields on the instance itself; all per-user state
// lives behind the userID key in the implementation's own data layer,
// accessed by explicit key on every call. All failures are typed errors,
// never sentinel return values.
type AuthClient interface {
	GetAuthorizationURL(ctx context.Context, opts *SignInOptions, userID string) (string, error)
	RequestAccessToken(ctx context.Context, authorizationCode, sessionState, state, userID string) (*TokenResult, error)
	RefreshAccessToken(ctx context.Context, userID string) (*TokenResult, error)
	IsAuthenticated(ctx context.Context, userID string) (bool, error)
	GetSignOutURL(ctx context.Context, userID string) (string, error)
	GetIDToken(ctx context.Context, userID string) (string, error)
	GetAccessToken(ctx context.Context, userID string) (string, error)
	GetBasicUserInfo(ctx context.Context, userID string) (*BasicUserInfo, error)
	GetDecodedIDToken(ctx context.Context, userID string) (IDTokenClaims, error)

	// ClearUserSession discards the client's per-user transient state
	// (PKCE verifier, nonce, stored tokens) after a failed refresh or an
	// explicit eviction.
	ClearUserSession(ctx context.Context, userID string) error
}
