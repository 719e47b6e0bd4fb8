// Package middleware exposes HTTP middleware adapters on top of
// goSession.Engine.
//
// # Guards
//
//   - [Guard] — requires a live session bound to the request's session cookie.
//   - [RequireAuthenticated] — Guard with the default cookie name.
//
// Each guard reads the session cookie, asks the engine whether the user is
// authenticated, and injects the user identifier into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT make
// session decisions itself — liveness, silent refresh, and eviction are all
// delegated to Engine.IsAuthenticated.
//
// # What this package must NOT do
//
//   - Read or decode tokens (the engine and its client own token material).
//   - Access the key-value store (the engine handles I/O).
//   - Mint session identifiers (that is the sign-in handler's job).
package middleware
