package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	goSession "github.com/MrEthical07/goSession"
)

var (
	// ErrNoPendingAuthorization is returned when a code exchange arrives with no stored round-trip state for the user.
	ErrNoPendingAuthorization = errors.New("no pending authorization for user")
	// ErrStateMismatch is returned when the state parameter does not match the pending authorization.
	ErrStateMismatch = errors.New("state parameter mismatch")
	// ErrNonceMismatch is returned when the ID-token nonce does not match the pending authorization.
	ErrNonceMismatch = errors.New("id token nonce mismatch")
	// ErrNoTokenResponse is returned when the token endpoint yields no usable token material.
	ErrNoTokenResponse = errors.New("no token material in provider response")
	// ErrNoSession is returned when a token read finds no stored material for the user.
	ErrNoSession = errors.New("no token material stored for user")
	// ErrNoRefreshToken is returned when a refresh is attempted without a stored refresh token.
	ErrNoRefreshToken = errors.New("no refresh token stored for user")
	// ErrStateUnavailable wraps key-value collaborator faults in the client's data layer.
	ErrStateUnavailable = errors.New("authorization state store unavailable")
)

// Asgardeo-conventional endpoint paths, used when no explicit endpoints are
// configured and discovery is not performed.
const (
	defaultAuthorizePath  = "/oauth2/authorize"
	defaultTokenPath      = "/oauth2/token"
	defaultEndSessionPath = "/oidc/logout"
)

// Config describes the provider registration for a Client.
type Config struct {
	ClientID     string
	ClientSecret string
	// ServerOrigin is the provider base URL; conventional endpoint paths are
	// appended unless the explicit endpoints below are set.
	ServerOrigin       string
	SignInRedirectURL  string
	SignOutRedirectURL string
	Scopes             []string

	// Explicit endpoint overrides, for providers with non-conventional
	// layouts and for tests.
	AuthorizeEndpoint  string
	TokenEndpoint      string
	EndSessionEndpoint string
}

// KeyValueStore is the collaborator holding the client's per-user data
// layer. Same contract as the session layer's store.
type KeyValueStore = goSession.KeyValueStore

// Client implements goSession.AuthClient over the authorization-code flow
// with PKCE. The instance holds configuration only; all per-user state is
// keyed by userID in the key-value collaborator.
type Client struct {
	cfg        Config
	kv         KeyValueStore
	oauth      oauth2.Config
	endSession string
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures optional Client behavior.
type Option func(*Client)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithNowTime sets the clock used for expiry checks (for testing).
func WithNowTime(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithHTTPClient routes token-endpoint traffic through the given client
// (for testing and custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client with endpoints derived from cfg.ServerOrigin (or the
// explicit overrides). No I/O is performed; ID tokens are checked for expiry
// locally but not signature-verified. Use Discover for JWKS verification.
func New(cfg Config, kv KeyValueStore, opts ...Option) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("ClientID is required")
	}
	if cfg.ServerOrigin == "" && (cfg.AuthorizeEndpoint == "" || cfg.TokenEndpoint == "") {
		return nil, errors.New("ServerOrigin or explicit endpoints required")
	}
	if kv == nil {
		return nil, errors.New("key-value store is required")
	}

	origin := strings.TrimRight(cfg.ServerOrigin, "/")
	authorizeURL := cfg.AuthorizeEndpoint
	if authorizeURL == "" {
		authorizeURL = origin + defaultAuthorizePath
	}
	tokenURL := cfg.TokenEndpoint
	if tokenURL == "" {
		tokenURL = origin + defaultTokenPath
	}
	endSession := cfg.EndSessionEndpoint
	if endSession == "" {
		endSession = origin + defaultEndSessionPath
	}

	c := &Client{
		cfg: cfg,
		kv:  kv,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.SignInRedirectURL,
			Scopes:       scopesWithOpenID(cfg.Scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:  authorizeURL,
				TokenURL: tokenURL,
			},
		},
		endSession: endSession,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Discover creates a Client with endpoints resolved from the provider's
// discovery document and ID-token signature verification enabled against its
// JWKS. The only construction-time I/O in the package.
func Discover(ctx context.Context, cfg Config, kv KeyValueStore, opts ...Option) (*Client, error) {
	provider, err := gooidc.NewProvider(ctx, strings.TrimRight(cfg.ServerOrigin, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	// Absent end_session_endpoint falls back to the conventional path.
	_ = provider.Claims(&extra)

	endpoint := provider.Endpoint()
	if cfg.AuthorizeEndpoint == "" {
		cfg.AuthorizeEndpoint = endpoint.AuthURL
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = endpoint.TokenURL
	}
	if cfg.EndSessionEndpoint == "" && extra.EndSessionEndpoint != "" {
		cfg.EndSessionEndpoint = extra.EndSessionEndpoint
	}

	c, err := New(cfg, kv, opts...)
	if err != nil {
		return nil, err
	}
	c.verifier = provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID})
	return c, nil
}

func scopesWithOpenID(scopes []string) []string {
	for _, s := range scopes {
		if s == gooidc.ScopeOpenID {
			return append([]string(nil), scopes...)
		}
	}
	return append([]string{gooidc.ScopeOpenID}, scopes...)
}

func (c *Client) callContext(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func randomParam() (string, error) {
	var raw [24]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// GetAuthorizationURL issues a fresh authorization request for userID:
// generates state, nonce, and PKCE verifier, stores them as the user's
// pending authorization, and returns the provider URL to redirect to.
// A repeated call replaces the pending authorization wholesale.
func (c *Client) GetAuthorizationURL(ctx context.Context, opts *goSession.SignInOptions, userID string) (string, error) {
	state, err := randomParam()
	if err != nil {
		return "", err
	}
	nonce, err := randomParam()
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	if err := c.saveAuthState(ctx, userID, &authState{
		State:    state,
		Nonce:    nonce,
		Verifier: verifier,
	}); err != nil {
		return "", err
	}

	authOpts := []oauth2.AuthCodeOption{
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("nonce", nonce),
	}
	if opts != nil {
		for k, v := range opts.Params {
			authOpts = append(authOpts, oauth2.SetAuthURLParam(k, v))
		}
	}

	return c.oauth.AuthCodeURL(state, authOpts...), nil
}

// RequestAccessToken completes the redirect round trip: validates state
// against the pending authorization, exchanges the code with the PKCE
// verifier, checks the ID-token nonce, persists the material in the user's
// data layer, and consumes the pending authorization. sessionState is the
// provider's session tracking parameter and is carried, not validated.
func (c *Client) RequestAccessToken(ctx context.Context, authorizationCode, sessionState, state, userID string) (*goSession.TokenResult, error) {
	pending, err := c.loadAuthState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state != "" && pending.State != state {
		return nil, ErrStateMismatch
	}

	tok, err := c.oauth.Exchange(c.callContext(ctx), authorizationCode, oauth2.VerifierOption(pending.Verifier))
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	rawIDToken, _ := tok.Extra("id_token").(string)
	if tok.AccessToken == "" || rawIDToken == "" {
		return nil, ErrNoTokenResponse
	}

	if err := c.checkIDToken(ctx, rawIDToken, pending.Nonce); err != nil {
		return nil, err
	}

	st := c.tokenStateFromToken(tok, rawIDToken)
	if err := c.saveTokenState(ctx, userID, st); err != nil {
		return nil, err
	}
	if err := c.clearAuthState(ctx, userID); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("pending authorization cleanup failed")
	}

	_ = sessionState
	return resultFromTokenState(st), nil
}

// RefreshAccessToken runs the refresh grant with the user's stored refresh
// token and replaces the stored material on success.
func (c *Client) RefreshAccessToken(ctx context.Context, userID string) (*goSession.TokenResult, error) {
	st, err := c.loadTokenState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNoSession
	}
	if st.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	tok, err := c.oauth.TokenSource(c.callContext(ctx), &oauth2.Token{RefreshToken: st.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh grant: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNoTokenResponse
	}

	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		// Providers may omit the ID token on refresh; keep the previous one.
		rawIDToken = st.IDToken
	}

	next := c.tokenStateFromToken(tok, rawIDToken)
	if next.RefreshToken == "" {
		next.RefreshToken = st.RefreshToken
	}
	if err := c.saveTokenState(ctx, userID, next); err != nil {
		return nil, err
	}

	return resultFromTokenState(next), nil
}

// IsAuthenticated is the fast local check: true iff the user has stored
// token material whose ID token is unexpired (and signature-valid when the
// client was built with Discover). No token-endpoint traffic.
func (c *Client) IsAuthenticated(ctx context.Context, userID string) (bool, error) {
	st, err := c.loadTokenState(ctx, userID)
	if err != nil {
		return false, err
	}
	if st == nil || st.IDToken == "" {
		return false, nil
	}

	if c.verifier != nil {
		if _, err := c.verifier.Verify(ctx, st.IDToken); err != nil {
			return false, nil
		}
		return true, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(st.IDToken, claims); err != nil {
		return false, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, nil
	}
	return c.now().Before(exp.Time), nil
}

// GetSignOutURL builds the provider logout URL for userID. Produced even
// when no token material remains, so repeated sign-outs stay idempotent;
// id_token_hint is attached only when available.
func (c *Client) GetSignOutURL(ctx context.Context, userID string) (string, error) {
	q := url.Values{}
	if c.cfg.SignOutRedirectURL != "" {
		q.Set("post_logout_redirect_uri", c.cfg.SignOutRedirectURL)
	}

	st, err := c.loadTokenState(ctx, userID)
	if err != nil {
		return "", err
	}
	if st != nil && st.IDToken != "" {
		q.Set("id_token_hint", st.IDToken)
	}

	if len(q) == 0 {
		return c.endSession, nil
	}
	return c.endSession + "?" + q.Encode(), nil
}

// GetIDToken returns the stored raw ID token.
func (c *Client) GetIDToken(ctx context.Context, userID string) (string, error) {
	st, err := c.requireTokenState(ctx, userID)
	if err != nil {
		return "", err
	}
	return st.IDToken, nil
}

// GetAccessToken returns the stored raw access token.
func (c *Client) GetAccessToken(ctx context.Context, userID string) (string, error) {
	st, err := c.requireTokenState(ctx, userID)
	if err != nil {
		return "", err
	}
	return st.AccessToken, nil
}

// GetDecodedIDToken returns the stored ID token's claim set.
func (c *Client) GetDecodedIDToken(ctx context.Context, userID string) (goSession.IDTokenClaims, error) {
	st, err := c.requireTokenState(ctx, userID)
	if err != nil {
		return nil, err
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(st.IDToken, claims); err != nil {
		return nil, fmt.Errorf("decode id token: %w", err)
	}
	return goSession.IDTokenClaims(claims), nil
}

// GetBasicUserInfo projects the standard display claims out of the ID token.
func (c *Client) GetBasicUserInfo(ctx context.Context, userID string) (*goSession.BasicUserInfo, error) {
	claims, err := c.GetDecodedIDToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return &goSession.BasicUserInfo{
		Sub:         str("sub"),
		Email:       str("email"),
		Username:    str("preferred_username"),
		GivenName:   str("given_name"),
		FamilyName:  str("family_name"),
		DisplayName: str("name"),
		Raw:         claims,
	}, nil
}

// ClearUserSession discards the user's pending authorization and stored
// token material.
func (c *Client) ClearUserSession(ctx context.Context, userID string) error {
	if err := c.clearAuthState(ctx, userID); err != nil {
		return err
	}
	return c.clearTokenState(ctx, userID)
}

func (c *Client) requireTokenState(ctx context.Context, userID string) (*tokenState, error) {
	st, err := c.loadTokenState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNoSession
	}
	return st, nil
}

func (c *Client) checkIDToken(ctx context.Context, rawIDToken, nonce string) error {
	if c.verifier != nil {
		idt, err := c.verifier.Verify(ctx, rawIDToken)
		if err != nil {
			return fmt.Errorf("id token verification: %w", err)
		}
		if nonce != "" && idt.Nonce != nonce {
			return ErrNonceMismatch
		}
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return fmt.Errorf("decode id token: %w", err)
	}
	if nonce != "" {
		got, _ := claims["nonce"].(string)
		if got != nonce {
			return ErrNonceMismatch
		}
	}
	return nil
}

func (c *Client) tokenStateFromToken(tok *oauth2.Token, rawIDToken string) *tokenState {
	scope, _ := tok.Extra("scope").(string)

	expiresIn := tok.ExpiresIn
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(time.Until(tok.Expiry) / time.Second)
	}

	return &tokenState{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      rawIDToken,
		TokenType:    tok.TokenType,
		Scope:        scope,
		ExpiresIn:    expiresIn,
		ObtainedAt:   c.now().UnixMilli(),
	}
}

func resultFromTokenState(st *tokenState) *goSession.TokenResult {
	return &goSession.TokenResult{
		AccessToken:  st.AccessToken,
		IDToken:      st.IDToken,
		RefreshToken: st.RefreshToken,
		TokenType:    st.TokenType,
		Scope:        st.Scope,
		ExpiresIn:    st.ExpiresIn,
	}
}
