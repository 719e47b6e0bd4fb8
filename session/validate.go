package session

import "time"

// DefaultExpiryUnit is the unit applied to Record.ExpiresIn when computing
// the expiry instant.
//
// OIDC token responses conventionally express expires_in in seconds, but the
// deployments this library replaces computed expiry as
// created_at + expires_in minutes, stretching real session lifetime 60x.
// The minute unit is kept as the default for behavior compatibility rather
// than silently corrected; deployments wanting conventional lifetimes
// set Config.Session.ExpiryUnit to time.Second.
const DefaultExpiryUnit = time.Minute

// ValidatorFunc decides whether a record is still valid at a given instant.
// Injected into Store so expiry policy stays a pure, swappable decision.
type ValidatorFunc func(rec *Record, now time.Time) bool

// IsValid reports whether rec is still valid at now, using unit for the
// ExpiresIn conversion. The expiry instant itself is invalid (strict less-
// than). Pure: no I/O, no clock reads.
func IsValid(rec *Record, now time.Time, unit time.Duration) bool {
	if rec == nil || rec.IsZero() {
		return false
	}
	expiry := rec.CreatedAt + rec.ExpiresIn*unit.Milliseconds()
	return now.UnixMilli() < expiry
}

// Validator returns a ValidatorFunc bound to a fixed unit.
func Validator(unit time.Duration) ValidatorFunc {
	if unit <= 0 {
		unit = DefaultExpiryUnit
	}
	return func(rec *Record, now time.Time) bool {
		return IsValid(rec, now, unit)
	}
}
