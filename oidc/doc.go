// Package oidc implements the goSession.AuthClient contract against a real
// OIDC provider using the authorization-code flow with PKCE.
//
// The client instance is a stateless facade: it keeps no per-user mutable
// fields. All per-user state — the pending authorization (state, nonce, PKCE
// verifier) and the obtained token material — lives in a key-value
// collaborator under keys derived from the explicit userID passed into every
// call, so one Client serves any number of concurrent users.
//
// Endpoints are derived from the server origin using the provider's
// conventional paths, or resolved via OIDC discovery with [Discover], which
// additionally enables ID-token signature verification against the provider
// JWKS.
package oidc
