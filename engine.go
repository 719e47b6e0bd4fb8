package goSession

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/identifier"
	"github.com/MrEthical07/goSession/session"
)

// Engine is the session lifecycle orchestrator. It composes the session
// store, the validator, and the authorization-client collaborator into the
// authenticate-check, sign-in, refresh, and sign-out operations, each keyed
// by an explicit user identifier.
type Engine struct {
	config  Config
	store   *session.Store
	client  AuthClient
	audit   *auditDispatcher
	metrics *Metrics
	log     zerolog.Logger
	nowTime func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were shed under load.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// IsAuthenticated reports whether the user behind userID currently holds a
// live session. It fails closed: anticipated conditions (missing record,
// expired record, failed refresh) answer false with a nil error; only
// unexpected collaborator faults propagate, wrapped as ErrUpstream.
//
// A session counts as authenticated when the authorization client's own
// local check passes AND either the store holds a fresh record or a silent
// refresh succeeds. Refresh is always attempted before declaring the user
// logged out, granting at most one extra round trip of implicit grace.
func (e *Engine) IsAuthenticated(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	clientAuthed, err := e.client.IsAuthenticated(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !clientAuthed {
		e.metricInc(MetricAuthCheckFalse)
		return false, nil
	}

	rec, err := e.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !rec.IsZero() && !rec.Expired {
		e.metricInc(MetricAuthCheckTrue)
		return true, nil
	}

	// The client still considers the user authenticated while the store
	// record is stale or missing. Try a silent refresh before giving up.
	if _, refreshErr := e.RefreshAccessToken(ctx, userID); refreshErr == nil {
		e.metricInc(MetricAuthCheckTrue)
		return true, nil
	}

	e.evictSession(ctx, userID)
	e.metricInc(MetricAuthCheckFalse)
	return false, nil
}

// SignIn drives the sign-in state machine for userID.
//
// Already authenticated: answers from the stored record without contacting
// the authorization server. No code/state: computes the provider
// authorization URL, hands it to cb, and returns an all-empty TokenResult
// without waiting for the redirect round trip. Code and state present:
// exchanges the code for tokens and persists the resulting session record —
// the engine is the only writer of that record.
func (e *Engine) SignIn(ctx context.Context, cb AuthURLCallback, userID, authorizationCode, sessionState, state string, opts *SignInOptions) (*TokenResult, error) {
	if userID == "" {
		return nil, ErrMissingIdentifier
	}

	if authed, err := e.IsAuthenticated(ctx, userID); err == nil && authed {
		rec, recErr := e.store.Get(ctx, userID)
		if recErr == nil && !rec.IsZero() && !rec.Expired {
			e.metricInc(MetricSignInShortCircuit)
			e.emitAudit(ctx, auditEventSignInRepeat, true, userID, nil, nil)
			return tokenResultFromRecord(rec, userID), nil
		}
	}

	if authorizationCode == "" || state == "" {
		return e.startSignIn(ctx, cb, userID, opts)
	}
	return e.completeSignIn(ctx, userID, authorizationCode, sessionState, state)
}

// startSignIn is the fire-and-return branch: notify the caller of the
// authorization URL and hand back an empty result.
func (e *Engine) startSignIn(ctx context.Context, cb AuthURLCallback, userID string, opts *SignInOptions) (*TokenResult, error) {
	if cb == nil {
		return nil, ErrInvalidCallback
	}

	authURL, err := e.client.GetAuthorizationURL(ctx, opts, userID)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, userID, err, func() map[string]string {
			return map[string]string{
				"reason": "authorization_url",
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	cb(authURL)

	e.metricInc(MetricSignInStart)
	e.emitAudit(ctx, auditEventSignInStart, true, userID, nil, nil)
	return &TokenResult{}, nil
}

// completeSignIn exchanges the authorization code and persists the session
// record with a freshly stamped created_at.
func (e *Engine) completeSignIn(ctx context.Context, userID, authorizationCode, sessionState, state string) (*TokenResult, error) {
	result, err := e.client.RequestAccessToken(ctx, authorizationCode, sessionState, state, userID)
	if err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, userID, err, func() map[string]string {
			return map[string]string{
				"reason": "code_exchange",
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if _, err := e.store.Put(ctx, userID, e.recordFromResult(result)); err != nil {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, userID, err, func() map[string]string {
			return map[string]string{
				"reason": "record_persist",
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result.Session = userID
	e.metricInc(MetricSignInComplete)
	e.emitAudit(ctx, auditEventSignInComplete, true, userID, nil, nil)
	return result, nil
}

// RefreshAccessToken delegates the refresh grant to the authorization client
// and replaces the stored record wholesale under a new created_at stamp.
func (e *Engine) RefreshAccessToken(ctx context.Context, userID string) (*TokenResult, error) {
	if userID == "" {
		return nil, ErrMissingIdentifier
	}

	result, err := e.client.RefreshAccessToken(ctx, userID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, userID, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if result == nil || result.AccessToken == "" {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, userID, ErrRefreshFailed, nil)
		return nil, ErrRefreshFailed
	}

	if _, err := e.store.Put(ctx, userID, e.recordFromResult(result)); err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, userID, err, nil)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result.Session = userID
	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, nil, nil)
	return result, nil
}

// SignOut obtains the provider sign-out URL and deletes the session record.
// Record deletion is attempted unconditionally but a deletion failure does
// not withhold the URL — logout proceeds even when local cleanup is
// imperfect, and the condition is logged and audited instead.
func (e *Engine) SignOut(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingIdentifier
	}
	if !identifier.IsWellFormed(userID) {
		return "", ErrInvalidIdentifier
	}

	signOutURL, err := e.client.GetSignOutURL(ctx, userID)
	if err != nil {
		e.emitAudit(ctx, auditEventSignOut, false, userID, err, nil)
		return "", fmt.Errorf("%w: %v", ErrSignOutFailed, err)
	}
	if signOutURL == "" {
		e.emitAudit(ctx, auditEventSignOut, false, userID, ErrSignOutFailed, nil)
		return "", ErrSignOutFailed
	}

	var cleanupErr error
	if _, err := e.store.Remove(ctx, userID); err != nil {
		cleanupErr = err
		e.log.Warn().Err(err).Str("user_id", userID).Msg("session record cleanup failed on sign-out")
	}

	e.metricInc(MetricSignOut)
	e.emitAudit(ctx, auditEventSignOut, true, userID, cleanupErr, nil)
	return signOutURL, nil
}

// evictSession removes a stale record and the client's transient state after
// an unrefreshable session. Best effort; failures only log.
func (e *Engine) evictSession(ctx context.Context, userID string) {
	if _, err := e.store.Remove(ctx, userID); err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("stale session removal failed")
	}
	if err := e.client.ClearUserSession(ctx, userID); err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("authorization state cleanup failed")
	}
	e.metricInc(MetricStaleEvicted)
	e.emitAudit(ctx, auditEventStaleEvicted, true, userID, nil, nil)
}

func (e *Engine) recordFromResult(result *TokenResult) *session.Record {
	return &session.Record{
		AccessToken:  result.AccessToken,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		TokenType:    result.TokenType,
		Scope:        result.Scope,
		ExpiresIn:    result.ExpiresIn,
		CreatedAt:    e.nowTime().UnixMilli(),
	}
}

func tokenResultFromRecord(rec *session.Record, userID string) *TokenResult {
	return &TokenResult{
		AccessToken:  rec.AccessToken,
		IDToken:      rec.IDToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    rec.TokenType,
		Scope:        rec.Scope,
		ExpiresIn:    rec.ExpiresIn,
		Session:      userID,
	}
}
