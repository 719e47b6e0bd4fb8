// Package goSession is a server-side session layer in front of an
// OIDC/OAuth2 authorization-code flow. Given a per-browser identifier it
// decides whether a user is authenticated, drives the sign-in handshake
// (redirect-to-provider vs. code exchange), stores and refreshes token
// material, and evicts sessions that have gone stale.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. Each operation touches only its own identifier's key, so
// no cross-session synchronization is needed or performed.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (TokenResult, BasicUserInfo, AuditEvent). The wire
// protocol is owned by the [AuthClient] collaborator (package oidc ships a
// ready implementation);
// physical persistence is owned by the [KeyValueStore] collaborator (package
// kvstore ships Redis and in-memory implementations).
//
// # What this package must NOT do
//
//   - Perform HTTP redirects or touch cookies; SignIn hands the
//     authorization URL to a caller-supplied callback and returns.
//   - Cache "the current user" in ambient state. Every call is keyed by an
//     explicit identifier so one Engine serves any number of users.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
package goSession
