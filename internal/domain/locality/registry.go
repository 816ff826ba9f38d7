package locality

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/loci-locality/internal/domain/cachestore"
	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

// Builder holds what every session's Coordinator shares.
type Builder struct {
	Backend      cachestore.Backend
	Catalog      Catalog
	Detector     Detector
	Synchronizer Synchronizer
	Notifier     Notifier
	Clock        clockwork.Clock
	Metrics      *observability.Metrics
	Logger       *slog.Logger
	AutoDetect   bool
}

// Build creates the Coordinator of sessionID over a store namespaced by it.
func (b Builder) Build(sessionID string) *Coordinator {
	clock := b.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	storeOpts := []cachestore.Option{cachestore.WithClock(clock)}
	opts := []Option{WithClock(clock), WithAutoDetect(b.AutoDetect)}
	if b.Metrics != nil {
		storeOpts = append(storeOpts, cachestore.WithMetrics(b.Metrics))
		opts = append(opts, WithMetrics(b.Metrics))
	}
	if b.Detector != nil {
		opts = append(opts, WithDetector(b.Detector))
	}
	if b.Synchronizer != nil {
		opts = append(opts, WithSynchronizer(b.Synchronizer))
	}
	if b.Notifier != nil {
		opts = append(opts, WithNotifier(b.Notifier))
	}

	store := cachestore.New(b.Backend, sessionID, b.Logger, storeOpts...)
	return NewCoordinator(sessionID, store, b.Catalog, b.Logger, opts...)
}

// Registry keeps one initialized Coordinator per session and evicts it after
// it has been idle for the configured TTL. Evicted sessions are rebuilt from
// the backend on their next request.
type Registry struct {
	builder  Builder
	sessions *cache.Cache
	group    singleflight.Group
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func NewRegistry(builder Builder, idleTTL time.Duration, logger *slog.Logger) *Registry {
	r := &Registry{
		builder:  builder,
		sessions: cache.New(idleTTL, idleTTL/2),
		logger:   logger,
		metrics:  builder.Metrics,
	}
	r.sessions.OnEvicted(func(string, any) {
		if r.metrics != nil {
			r.metrics.ActiveSessions.Dec()
		}
	})
	return r
}

// Get returns the session's Coordinator, creating and initializing it once.
// userID is attached to the session; a newly attached account triggers a
// sync with the remote preference store.
func (r *Registry) Get(ctx context.Context, sessionID, userID string) (*Coordinator, error) {
	if sessionID == "" {
		return nil, types.ErrBadRequest
	}

	if v, found := r.sessions.Get(sessionID); found {
		c := v.(*Coordinator)
		r.sessions.Set(sessionID, c, cache.DefaultExpiration)
		r.attach(ctx, c, userID)
		return c, nil
	}

	v, err, _ := r.group.Do(sessionID, func() (any, error) {
		if v, found := r.sessions.Get(sessionID); found {
			return v, nil
		}
		c := r.builder.Build(sessionID)
		if err := c.Init(context.WithoutCancel(ctx)); err != nil {
			r.logger.ErrorContext(ctx, "Session initialized with errors",
				slog.String("session_id", sessionID), slog.Any("error", err))
		}
		r.sessions.Set(sessionID, c, cache.DefaultExpiration)
		if r.metrics != nil {
			r.metrics.ActiveSessions.Inc()
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	c := v.(*Coordinator)
	r.attach(ctx, c, userID)
	return c, nil
}

func (r *Registry) attach(ctx context.Context, c *Coordinator, userID string) {
	if !c.Authenticate(userID) || userID == "" {
		return
	}
	if err := c.SyncWithAPI(ctx); err != nil && !errors.Is(err, ErrStale) {
		r.logger.WarnContext(ctx, "Initial preference sync failed",
			slog.String("session_id", c.SessionID()), slog.Any("error", err))
	}
}

// Forget drops a session from memory. Its persisted data is untouched.
func (r *Registry) Forget(sessionID string) {
	r.sessions.Delete(sessionID)
}

// Len reports how many sessions are held in memory.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
