// Package cachestore is the persistent key/value layer for locality data.
// Timestamped records expire after their key's TTL; corrupt or expired data
// reads as absent and is never surfaced to callers as an error.
package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

// Backend is the raw storage engine behind a Store.
type Backend interface {
	// Get returns the stored bytes and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Store wraps a Backend with record envelopes, TTL checks and namespacing.
type Store struct {
	backend   Backend
	namespace string
	policies  map[string]Policy
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithMetrics records cache lookups and writes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithPolicy overrides the policy for a single key.
func WithPolicy(key string, p Policy) Option {
	return func(s *Store) {
		s.policies[key] = p
	}
}

// New creates a Store whose keys are prefixed with namespace.
func New(backend Backend, namespace string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		namespace: namespace,
		policies:  DefaultPolicies(),
		clock:     clockwork.NewRealClock(),
		logger:    logger.With(slog.String("component", "cachestore")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the prefix applied to every key.
func (s *Store) Namespace() string {
	return s.namespace
}

// BackendKey returns the key as seen by the backend.
func (s *Store) BackendKey(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *Store) policy(key string) Policy {
	if p, ok := s.policies[key]; ok {
		return p
	}
	return Policy{Timestamped: true}
}

// Save serializes value under key. Timestamped keys are wrapped in a
// CachedRecord stamped with the current time. A failed write is logged and
// returned; callers are free to ignore it.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	l := s.logger.With(slog.String("method", "Save"), slog.String("key", key))

	data, err := json.Marshal(value)
	if err != nil {
		l.ErrorContext(ctx, "Failed to serialize value", slog.Any("error", err))
		s.recordWrite(key, "error")
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}

	if s.policy(key).Timestamped {
		data, err = json.Marshal(types.CachedRecord[json.RawMessage]{
			Value:     data,
			Timestamp: s.clock.Now().UnixMilli(),
		})
		if err != nil {
			l.ErrorContext(ctx, "Failed to serialize record", slog.Any("error", err))
			s.recordWrite(key, "error")
			return fmt.Errorf("failed to serialize %s record: %w", key, err)
		}
	}

	if err := s.backend.Set(ctx, s.BackendKey(key), data); err != nil {
		l.WarnContext(ctx, "Backend rejected write", slog.Any("error", err))
		s.recordWrite(key, "error")
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	s.recordWrite(key, "ok")
	return nil
}

// LoadRaw returns the JSON value stored under key if it is present, well
// formed and not expired. Expired records are removed, never refreshed.
func (s *Store) LoadRaw(ctx context.Context, key string) (json.RawMessage, bool) {
	l := s.logger.With(slog.String("method", "Load"), slog.String("key", key))

	data, ok, err := s.backend.Get(ctx, s.BackendKey(key))
	if err != nil {
		l.WarnContext(ctx, "Backend read failed", slog.Any("error", err))
		s.recordLookup(key, "miss")
		return nil, false
	}
	if !ok {
		s.recordLookup(key, "miss")
		return nil, false
	}

	policy := s.policy(key)
	if !policy.Timestamped {
		if !json.Valid(data) {
			l.WarnContext(ctx, "Discarding corrupt value", slog.Any("error", types.ErrCacheCorrupted))
			s.recordLookup(key, "corrupt")
			return nil, false
		}
		s.recordLookup(key, "hit")
		return data, true
	}

	var record types.CachedRecord[json.RawMessage]
	if err := json.Unmarshal(data, &record); err != nil || len(record.Value) == 0 || record.Timestamp <= 0 {
		l.WarnContext(ctx, "Discarding corrupt record", slog.Any("error", types.ErrCacheCorrupted))
		s.recordLookup(key, "corrupt")
		return nil, false
	}

	if policy.TTL > 0 {
		age := s.clock.Now().Sub(time.UnixMilli(record.Timestamp))
		if age > policy.TTL {
			l.DebugContext(ctx, "Record expired", slog.Duration("age", age))
			s.recordLookup(key, "expired")
			if err := s.backend.Delete(ctx, s.BackendKey(key)); err != nil {
				l.WarnContext(ctx, "Failed to remove expired record", slog.Any("error", err))
			}
			return nil, false
		}
	}

	s.recordLookup(key, "hit")
	return record.Value, true
}

// Load decodes the value under key into dest. It reports false for absent,
// expired or corrupt entries.
func (s *Store) Load(ctx context.Context, key string, dest any) bool {
	raw, ok := s.LoadRaw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.WarnContext(ctx, "Discarding value of unexpected shape",
			slog.String("key", key), slog.Any("error", err))
		s.recordLookup(key, "corrupt")
		return false
	}
	return true
}

// Get is the typed form of Load.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var zero T
	raw, ok := s.LoadRaw(ctx, key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.WarnContext(ctx, "Discarding value of unexpected shape",
			slog.String("key", key), slog.Any("error", err))
		s.recordLookup(key, "corrupt")
		return zero, false
	}
	return v, true
}

// Remove deletes a single key.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.ClearAll(ctx, key)
}

// ClearAll deletes every given key in one backend call.
func (s *Store) ClearAll(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	backendKeys := make([]string, len(keys))
	for i, k := range keys {
		backendKeys[i] = s.BackendKey(k)
	}
	if err := s.backend.Delete(ctx, backendKeys...); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove keys",
			slog.Any("keys", keys), slog.Any("error", err))
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	return nil
}

func (s *Store) recordLookup(key, result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(key, result).Inc()
	}
}

func (s *Store) recordWrite(key, outcome string) {
	if s.metrics != nil {
		s.metrics.CacheWrites.WithLabelValues(key, outcome).Inc()
	}
}
