package session

// Record is the token material bound to one user identifier. Its JSON field
// names are the stable at-rest format written through the key-value
// collaborator.
//
// CreatedAt is stamped exactly once, when the token response is received from
// the authorization server, and is never mutated afterward; a refresh
// replaces the whole record.
type Record struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
	CreatedAt    int64  `json:"created_at"` // epoch milliseconds

	// Expired is set on the returned copy when Get finds a record the
	// validator rejects. Never serialized, never stored.
	Expired bool `json:"-"`
}

// IsZero reports whether the record holds no token material. Get returns a
// zero record for absent keys; callers use this instead of a not-found error.
func (r *Record) IsZero() bool {
	if r == nil {
		return true
	}
	return r.AccessToken == "" && r.IDToken == "" && r.RefreshToken == "" &&
		r.TokenType == "" && r.Scope == "" && r.ExpiresIn == 0 && r.CreatedAt == 0
}
