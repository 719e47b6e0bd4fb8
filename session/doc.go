// Package session persists per-user token records on top of an external
// key-value collaborator and decides record validity.
//
// The package owns two of the core concerns: the Session Store (a thin JSON
// mapping over the collaborator, one record per identifier) and the Session
// Validator (a pure expiry check). The store never treats absence as an
// error; an expired record is surfaced flagged and evicted asynchronously.
//
// The JSON encoding of [Record] is the at-rest format shared with existing
// deployments. Field renames are breaking.
package session
