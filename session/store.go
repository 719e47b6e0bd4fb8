package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSession/identifier"
)

// ErrInvalidKey is returned when a deletion is attempted with a key that is
// not a well-formed session identifier.
var ErrInvalidKey = errors.New("invalid session key")

// ErrStoreUnavailable wraps faults surfaced by the key-value collaborator.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrCorruptRecord is returned when a stored value cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt session record")

const defaultKeyPrefix = "session:"

// KeyValueStore is the minimal contract the store needs from its persistence
// collaborator. Values are single strings; this package owns (de)serialization
// on top. GetData returns an empty string for absent keys.
type KeyValueStore interface {
	SetData(ctx context.Context, key, value string) error
	GetData(ctx context.Context, key string) (string, error)
	RemoveData(ctx context.Context, key string) error
}

// Store maps session identifiers to JSON-encoded records on top of a
// KeyValueStore. Validity is decided by the injected validator; the store
// itself holds no clock policy.
type Store struct {
	kv       KeyValueStore
	prefix   string
	validate ValidatorFunc
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures optional Store behavior.
type Option func(*Store)

// WithPrefix overrides the key namespace prepended to every identifier.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithNowTime sets the clock used when applying the validator (for testing).
func WithNowTime(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for asynchronous eviction outcomes.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a Store over the given collaborator. validate decides
// record validity on Get; pass Validator(DefaultExpiryUnit) for the stock
// policy.
func NewStore(kv KeyValueStore, validate ValidatorFunc, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		prefix:   defaultKeyPrefix,
		validate: validate,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validate == nil {
		s.validate = Validator(DefaultExpiryUnit)
	}
	return s
}

func (s *Store) storageKey(key string) string {
	return s.prefix + key
}

// Put serializes rec and writes it under key, overwriting any prior record.
// Returns key unchanged on success.
func (s *Store) Put(ctx context.Context, key string, rec *Record) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if err := s.kv.SetData(ctx, s.storageKey(key), string(data)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return key, nil
}

// Get reads the record stored under key. Absence is a normal outcome: a zero
// record and nil error are returned. When a record exists but the validator
// rejects it, the returned copy carries Expired=true and the stale stored
// record is deleted as a fire-and-forget side effect; the stored copy is
// never mutated in place.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := s.kv.GetData(ctx, s.storageKey(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if raw == "" {
		return &Record{}, nil
	}

	rec := &Record{}
	if err := json.Unmarshal([]byte(raw), rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	if !s.validate(rec, s.now()) {
		s.log.Warn().Str("key", key).Msg("expired session")
		rec.Expired = true
		go s.evictStale(key)
	}

	return rec, nil
}

// Remove deletes the record under key. The key must be a well-formed
// identifier; this is the gate that keeps malformed or attacker-supplied
// keys away from the collaborator's delete path.
func (s *Store) Remove(ctx context.Context, key string) (bool, error) {
	if !identifier.IsWellFormed(key) {
		return false, ErrInvalidKey
	}
	if err := s.kv.RemoveData(ctx, s.storageKey(key)); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}

// evictStale deletes an expired record outside the caller's request. Runs on
// its own context; failure only logs, the next Get will retry eviction.
func (s *Store) evictStale(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.kv.RemoveData(ctx, s.storageKey(key)); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("stale session eviction failed")
	}
}
