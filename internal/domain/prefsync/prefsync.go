// Package prefsync reconciles a session's cached preferences with the
// per-account record held remotely. Reconciliation is last-writer-wins at
// whole-record granularity: a remote record replaces the local one.
package prefsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

// RemoteStore holds one preference record per account.
type RemoteStore interface {
	// Get returns types.ErrNotFound when the account has no record.
	Get(ctx context.Context, userID string) (types.LocationPreferences, error)
	// Put replaces the record wholesale.
	Put(ctx context.Context, userID string, prefs types.LocationPreferences) error
}

// Source tells which side won a sync.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

type SyncResult struct {
	Preferences types.LocationPreferences
	Source      Source
}

type Synchronizer struct {
	remote  RemoteStore
	logger  *slog.Logger
	metrics *observability.Metrics
}

type Option func(*Synchronizer)

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

func New(remote RemoteStore, logger *slog.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		remote: remote,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncWithRemote pulls the account record. When one exists it is returned
// unchanged; otherwise local is pushed and returned.
func (s *Synchronizer) SyncWithRemote(ctx context.Context, userID string, local types.LocationPreferences) (SyncResult, error) {
	ctx, span := otel.Tracer("PreferenceSynchronizer").Start(ctx, "SyncWithRemote", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SyncWithRemote"), slog.String("user_id", userID))

	if userID == "" {
		span.SetStatus(codes.Error, "Unauthenticated")
		return SyncResult{}, types.ErrUnauthenticated
	}

	remote, err := s.remote.Get(ctx, userID)
	switch {
	case err == nil:
		if verr := remote.Validate(); verr != nil {
			s.record("pull", "error")
			span.RecordError(verr)
			span.SetStatus(codes.Error, "Invalid remote record")
			l.WarnContext(ctx, "Remote preferences are invalid", slog.Any("error", verr))
			return SyncResult{}, &types.SyncError{Op: "validate", Err: verr}
		}
		s.record("pull", "success")
		span.SetAttributes(attribute.String("sync.source", string(SourceRemote)))
		span.SetStatus(codes.Ok, "Remote record applied")
		l.InfoContext(ctx, "Remote preferences applied")
		return SyncResult{Preferences: remote, Source: SourceRemote}, nil

	case errors.Is(err, types.ErrNotFound):
		s.record("pull", "not_found")
		if err := s.put(ctx, userID, local, "push"); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Push failed")
			l.WarnContext(ctx, "Failed to seed remote preferences", slog.Any("error", err))
			return SyncResult{}, err
		}
		span.SetAttributes(attribute.String("sync.source", string(SourceLocal)))
		span.SetStatus(codes.Ok, "Local record pushed")
		l.InfoContext(ctx, "Local preferences pushed to empty remote")
		return SyncResult{Preferences: local, Source: SourceLocal}, nil

	default:
		s.record("pull", "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Pull failed")
		l.WarnContext(ctx, "Failed to fetch remote preferences", slog.Any("error", err))
		return SyncResult{}, &types.SyncError{Op: "get", Err: err}
	}
}

// Push is the write-through used after every explicit change.
func (s *Synchronizer) Push(ctx context.Context, userID string, prefs types.LocationPreferences) error {
	ctx, span := otel.Tracer("PreferenceSynchronizer").Start(ctx, "Push", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "Unauthenticated")
		return types.ErrUnauthenticated
	}
	if err := s.put(ctx, userID, prefs, "write_through"); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Write-through failed")
		s.logger.WarnContext(ctx, "Preference write-through failed",
			slog.String("user_id", userID), slog.Any("error", err))
		return err
	}
	span.SetStatus(codes.Ok, "Preferences pushed")
	return nil
}

func (s *Synchronizer) put(ctx context.Context, userID string, prefs types.LocationPreferences, direction string) error {
	if err := s.remote.Put(ctx, userID, prefs); err != nil {
		s.record(direction, "error")
		return &types.SyncError{Op: "put", Err: fmt.Errorf("failed to store preferences: %w", err)}
	}
	s.record(direction, "success")
	return nil
}

func (s *Synchronizer) record(direction, outcome string) {
	if s.metrics != nil {
		s.metrics.Syncs.WithLabelValues(direction, outcome).Inc()
	}
}
