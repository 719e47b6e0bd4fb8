// Package kvstore ships ready-made key-value collaborators for the session
// layer: a Redis-backed store for production and an in-process map store for
// tests and single-node deployments.
//
// Both satisfy the string-valued SetData/GetData/RemoveData contract the
// session and oidc packages consume. Absent keys read as empty strings,
// never as errors.
package kvstore
