// Package identifier generates and validates the opaque session identifiers
// that key every session record and authorization-client call.
//
// Exactly one derivation scheme is supported: random version-4 UUIDs. Earlier
// revisions of this system derived identifiers from the subject claim with a
// name-based UUID; that scheme is intentionally gone. An identifier carries no
// user identity and is safe to hand to a browser before authentication.
package identifier

import "github.com/google/uuid"

const acceptedVersion = 4

// New returns a fresh random identifier for anonymous pre-authentication
// tracking. Collision-resistant, opaque, unrelated to user identity.
func New() string {
	return uuid.NewString()
}

// IsWellFormed reports whether id is a syntactically valid UUID of the single
// accepted version. It is the gate applied before any store deletion so that
// malformed or attacker-supplied keys never reach the key-value collaborator.
func IsWellFormed(id string) bool {
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == acceptedVersion
}
