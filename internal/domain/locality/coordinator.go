// Package locality hosts the Coordinator, the single owner and write path of
// a session's LocationState, and the Registry that keeps one Coordinator per
// browser session.
package locality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-locality/internal/domain/cachestore"
	"github.com/FACorreiaa/loci-locality/internal/domain/history"
	"github.com/FACorreiaa/loci-locality/internal/domain/prefsync"
	"github.com/FACorreiaa/loci-locality/internal/domain/resolver"
	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

// ErrStale is returned when a detection or sync finished after a newer
// selection and its result was discarded.
var ErrStale = errors.New("result superseded by a newer selection")

// Catalog is the part of the city catalog the coordinator needs.
type Catalog interface {
	CityByID(id string) (types.City, bool)
	Default() types.City
}

// Detector finds the city the client is in.
type Detector interface {
	Detect(ctx context.Context) (types.City, error)
}

// Synchronizer reconciles preferences with the account record.
type Synchronizer interface {
	SyncWithRemote(ctx context.Context, userID string, local types.LocationPreferences) (prefsync.SyncResult, error)
	Push(ctx context.Context, userID string, prefs types.LocationPreferences) error
}

// Notifier publishes location changes outside the process.
type Notifier interface {
	Publish(ctx context.Context, ev types.LocationChangedEvent) error
}

const subscriberBuffer = 16

// Coordinator serializes every mutation of a session's locality. Detection
// and remote sync run without the lock; a city epoch discards their results
// when a newer explicit selection happened meanwhile.
type Coordinator struct {
	mu sync.Mutex

	sessionID string
	userID    string

	store    *cachestore.Store
	catalog  Catalog
	resolver *resolver.Resolver
	history  *history.Engine
	detector Detector
	sync     Synchronizer
	notifier Notifier

	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	autoDetect bool

	state       types.LocationState
	initialized bool
	inflight    int
	cityEpoch   uint64
	prefsEpoch  uint64

	subscribers map[int]chan types.LocationChangedEvent
	nextSub     int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithDetector(d Detector) Option {
	return func(c *Coordinator) {
		c.detector = d
	}
}

func WithSynchronizer(s Synchronizer) Option {
	return func(c *Coordinator) {
		c.sync = s
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithAutoDetect makes Init detect the city when nothing was recorded yet.
func WithAutoDetect(enabled bool) Option {
	return func(c *Coordinator) {
		c.autoDetect = enabled
	}
}

// NewCoordinator creates an uninitialized Coordinator; call Init before use.
func NewCoordinator(sessionID string, store *cachestore.Store, catalog Catalog, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		sessionID:   sessionID,
		store:       store,
		catalog:     catalog,
		clock:       clockwork.NewRealClock(),
		logger:      logger.With(slog.String("session_id", sessionID)),
		subscribers: make(map[int]chan types.LocationChangedEvent),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver = resolver.New(store, catalog, c.logger)
	c.history = history.NewEngine(catalog, c.clock)
	c.state = types.LocationState{
		SearchRadius: types.DefaultSearchRadiusKm,
		Loading:      true,
		Preferences:  types.DefaultPreferences(),
	}
	return c
}

func (c *Coordinator) SessionID() string {
	return c.sessionID
}

// State returns a deep copy of the current state.
func (c *Coordinator) State() types.LocationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Coordinator) Suggestions() types.Suggestions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Suggestions()
}

// UserID returns the authenticated account, or "" when anonymous.
func (c *Coordinator) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Authenticate attaches an account to the session. An empty userID detaches
// it. It reports whether the account changed.
func (c *Coordinator) Authenticate(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == userID {
		return false
	}
	c.userID = userID
	return true
}

// Init loads persisted state, resolves the current city and records the
// visit. When only the catalog default could be resolved and detection is
// enabled, the city is detected instead. A failed detection keeps the
// default city without recording it.
func (c *Coordinator) Init(ctx context.Context) (err error) {
	ctx, span := otel.Tracer("LocalityCoordinator").Start(ctx, "Init", trace.WithAttributes(
		attribute.String("session.id", c.sessionID),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "Init"))

	detect, epoch, err := c.initResolve(ctx, l)
	if err != nil || !detect {
		c.observe("init", err)
		return err
	}

	city, detectErr := c.safeDetect(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recoverInto(ctx, "init", &err)

	c.inflight--
	c.state.Loading = c.inflight > 0

	if epoch != c.cityEpoch {
		l.InfoContext(ctx, "Discarding detection superseded by a newer selection")
		c.observe("init", ErrStale)
		return nil
	}
	if detectErr != nil {
		c.state.Error = detectErr.Error()
		c.state.IsDetected = false
		span.RecordError(detectErr)
		l.WarnContext(ctx, "Detection failed, keeping default city", slog.Any("error", detectErr))
		c.observe("init", detectErr)
		return nil
	}

	c.cityEpoch++
	c.state.IsDetected = true
	c.state.Error = ""
	c.applyCity(ctx, city, types.SourceDetected)
	span.SetAttributes(attribute.String("city.id", city.ID))
	span.SetStatus(codes.Ok, "Initialized from detection")
	c.observe("init", nil)
	return nil
}

// initResolve runs the locked part of Init. It reports whether detection
// should follow and the epoch the detection result must match.
func (c *Coordinator) initResolve(ctx context.Context, l *slog.Logger) (detect bool, epoch uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.recoverInto(ctx, "init", &err)

	if c.initialized {
		return false, 0, nil
	}
	c.initialized = true

	prefs := types.DefaultPreferences()
	if cached, ok := cachestore.Get[types.LocationPreferences](ctx, c.store, cachestore.KeyPreferences); ok {
		if verr := cached.Validate(); verr != nil {
			l.WarnContext(ctx, "Ignoring invalid cached preferences", slog.Any("error", verr))
		} else {
			prefs = cached
		}
	}
	if prefs.DefaultCity != nil {
		if city, ok := c.catalog.CityByID(prefs.DefaultCity.ID); ok {
			prefs.DefaultCity = &city
		} else {
			prefs.DefaultCity = nil
		}
	}
	c.state.Preferences = prefs
	c.state.SearchRadius = prefs.SearchRadius

	entries, _ := cachestore.Get[[]types.CityHistoryEntry](ctx, c.store, cachestore.KeyHistory)
	favorites, _ := cachestore.Get[[]types.City](ctx, c.store, cachestore.KeyFavorites)
	if c.history.Restore(entries, favorites) {
		l.InfoContext(ctx, "Repaired persisted history")
		c.persistCollections(ctx)
	}
	c.syncCollections()

	res := c.resolver.DetermineCurrentCity(ctx)
	city := res.City
	c.state.CurrentCity = &city

	if res.Source == types.SourceDefault && c.detector != nil && (c.autoDetect || prefs.UseCurrentLocation) {
		c.inflight++
		c.state.Loading = true
		return true, c.cityEpoch, nil
	}

	c.state.Loading = c.inflight > 0
	if res.Source == types.SourceDefault {
		c.emit(ctx, city, types.SourceDefault)
		return false, 0, nil
	}
	c.applyCity(ctx, city, res.Source)
	return false, 0, nil
}

// SetCity makes city the current one: state first, then last-city and
// history, then the manual-mode default, then the account record.
func (c *Coordinator) SetCity(ctx context.Context, city types.City) (err error) {
	ctx, span := otel.Tracer("LocalityCoordinator").Start(ctx, "SetCity", trace.WithAttributes(
		attribute.String("city.id", city.ID),
	))
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("set_city", err) }()
	defer c.recoverInto(ctx, "set_city", &err)

	known, ok := c.catalog.CityByID(city.ID)
	if !ok {
		err = fmt.Errorf("%w: %w: %q", types.ErrInvariantViolation, types.ErrUnknownCity, city.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown city")
		return err
	}

	c.cityEpoch++
	c.state.IsDetected = false
	c.state.Error = ""
	c.applyCity(ctx, known, types.SourceManual)

	if c.state.Preferences.Mode == types.ModeManual {
		c.state.Preferences.DefaultCity = &known
		c.prefsEpoch++
		c.persist(ctx, cachestore.KeyPreferences, c.state.Preferences)
	}
	c.writeThrough(ctx)

	span.SetStatus(codes.Ok, "City set")
	return nil
}

// SetSearchRadius accepts only AllowedRadii. The radius is stored in the
// preference record in every mode, since that record is its only home.
func (c *Coordinator) SetSearchRadius(ctx context.Context, km int) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("set_search_radius", err) }()
	defer c.recoverInto(ctx, "set_search_radius", &err)

	if !types.IsAllowedRadius(km) {
		return fmt.Errorf("%w: %d km", types.ErrInvalidRadius, km)
	}

	c.state.SearchRadius = km
	c.state.Preferences.SearchRadius = km
	c.prefsEpoch++
	c.persist(ctx, cachestore.KeyPreferences, c.state.Preferences)
	c.writeThrough(ctx)
	if c.state.CurrentCity != nil {
		c.emit(ctx, *c.state.CurrentCity, types.SourcePreference)
	}
	return nil
}

// SetPreferences replaces the preference record. In manual mode with a
// default city, that city becomes current.
func (c *Coordinator) SetPreferences(ctx context.Context, prefs types.LocationPreferences) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("set_preferences", err) }()
	defer c.recoverInto(ctx, "set_preferences", &err)

	if err := prefs.Validate(); err != nil {
		return err
	}
	prefs = prefs.Clone()
	if prefs.DefaultCity != nil {
		city, ok := c.catalog.CityByID(prefs.DefaultCity.ID)
		if !ok {
			return fmt.Errorf("%w: %w: %q", types.ErrInvariantViolation, types.ErrUnknownCity, prefs.DefaultCity.ID)
		}
		prefs.DefaultCity = &city
	}

	c.state.Preferences = prefs
	c.state.SearchRadius = prefs.SearchRadius
	c.prefsEpoch++
	c.persist(ctx, cachestore.KeyPreferences, prefs)

	if prefs.Mode == types.ModeManual && prefs.DefaultCity != nil &&
		(c.state.CurrentCity == nil || !c.state.CurrentCity.Equal(*prefs.DefaultCity)) {
		c.cityEpoch++
		c.state.IsDetected = false
		c.applyCity(ctx, *prefs.DefaultCity, types.SourcePreference)
	} else if c.state.CurrentCity != nil {
		c.emit(ctx, *c.state.CurrentCity, types.SourcePreference)
	}

	c.writeThrough(ctx)
	return nil
}

func (c *Coordinator) AddToFavorites(ctx context.Context, city types.City) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("add_favorite", err) }()
	defer c.recoverInto(ctx, "add_favorite", &err)

	if err := c.history.AddFavorite(city); err != nil {
		return err
	}
	c.syncCollections()
	c.persist(ctx, cachestore.KeyFavorites, c.state.Favorites)
	return nil
}

func (c *Coordinator) RemoveFromFavorites(ctx context.Context, cityID string) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("remove_favorite", err) }()
	defer c.recoverInto(ctx, "remove_favorite", &err)

	if c.history.RemoveFavorite(cityID) {
		c.syncCollections()
		c.persist(ctx, cachestore.KeyFavorites, c.state.Favorites)
	}
	return nil
}

// ToggleFavorite reports whether the city is a favorite afterwards.
func (c *Coordinator) ToggleFavorite(ctx context.Context, city types.City) (added bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("toggle_favorite", err) }()
	defer c.recoverInto(ctx, "toggle_favorite", &err)

	added, err = c.history.ToggleFavorite(city)
	if err != nil {
		return false, err
	}
	c.syncCollections()
	c.persist(ctx, cachestore.KeyFavorites, c.state.Favorites)
	return added, nil
}

// DetectLocation detects the city and makes it current. On failure the
// current city is kept and the error is captured in State().Error. A result
// arriving after a newer SetCity is discarded with ErrStale.
func (c *Coordinator) DetectLocation(ctx context.Context) (err error) {
	ctx, span := otel.Tracer("LocalityCoordinator").Start(ctx, "DetectLocation")
	defer span.End()

	l := c.logger.With(slog.String("method", "DetectLocation"))

	c.mu.Lock()
	if c.detector == nil {
		err = &types.DetectionError{}
		c.state.Error = err.Error()
		c.mu.Unlock()
		c.observe("detect", err)
		return err
	}
	epoch := c.cityEpoch
	c.inflight++
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	city, detectErr := c.safeDetect(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("detect", err) }()
	defer c.recoverInto(ctx, "detect", &err)

	c.inflight--
	c.state.Loading = c.inflight > 0

	if detectErr != nil {
		c.state.Error = detectErr.Error()
		span.RecordError(detectErr)
		span.SetStatus(codes.Error, "Detection failed")
		l.WarnContext(ctx, "Detection failed", slog.Any("error", detectErr))
		return detectErr
	}
	if epoch != c.cityEpoch {
		l.InfoContext(ctx, "Discarding detection superseded by a newer selection",
			slog.String("detected", city.ID))
		span.SetStatus(codes.Ok, "Stale detection discarded")
		return ErrStale
	}

	c.cityEpoch++
	c.state.IsDetected = true
	c.state.Error = ""
	c.applyCity(ctx, city, types.SourceDetected)
	span.SetAttributes(attribute.String("city.id", city.ID))
	span.SetStatus(codes.Ok, "City detected")
	return nil
}

// ResetToDefault drops preferences and last-city, returning to the catalog
// default city and radius. History and favorites are kept.
func (c *Coordinator) ResetToDefault(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("reset", err) }()
	defer c.recoverInto(ctx, "reset", &err)

	if rerr := c.store.ClearAll(ctx, cachestore.KeyPreferences, cachestore.KeyLastCity); rerr != nil {
		c.logger.WarnContext(ctx, "Failed to remove cached selection", slog.Any("error", rerr))
	}

	c.resetSelection(ctx)
	c.writeThrough(ctx)
	return nil
}

// ClearAll removes every persisted locality key and resets the state.
func (c *Coordinator) ClearAll(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("clear_all", err) }()
	defer c.recoverInto(ctx, "clear_all", &err)

	c.history.Clear()
	c.syncCollections()
	c.resetSelection(ctx)

	if cerr := c.store.ClearAll(ctx, cachestore.LocalityKeys...); cerr != nil {
		return cerr
	}
	return nil
}

func (c *Coordinator) resetSelection(ctx context.Context) {
	def := c.catalog.Default()
	c.cityEpoch++
	c.prefsEpoch++
	c.state.Preferences = types.DefaultPreferences()
	c.state.SearchRadius = types.DefaultSearchRadiusKm
	c.state.CurrentCity = &def
	c.state.IsDetected = false
	c.state.Error = ""
	c.emit(ctx, def, types.SourceReset)
}

// SyncWithAPI reconciles preferences with the account record. The remote
// record wins when present; in manual mode its default city becomes current
// unless a newer selection was made while the sync was in flight.
func (c *Coordinator) SyncWithAPI(ctx context.Context) (err error) {
	ctx, span := otel.Tracer("LocalityCoordinator").Start(ctx, "SyncWithAPI")
	defer span.End()

	l := c.logger.With(slog.String("method", "SyncWithAPI"))

	c.mu.Lock()
	if c.userID == "" || c.sync == nil {
		c.mu.Unlock()
		c.observe("sync", types.ErrUnauthenticated)
		return types.ErrUnauthenticated
	}
	userID := c.userID
	local := c.state.Preferences.Clone()
	cityEpoch, prefsEpoch := c.cityEpoch, c.prefsEpoch
	c.inflight++
	c.state.Loading = true
	c.mu.Unlock()

	res, syncErr := c.safeSync(ctx, userID, local)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.observe("sync", err) }()
	defer c.recoverInto(ctx, "sync", &err)

	c.inflight--
	c.state.Loading = c.inflight > 0

	if syncErr != nil {
		c.state.Error = syncErr.Error()
		span.RecordError(syncErr)
		span.SetStatus(codes.Error, "Sync failed")
		return syncErr
	}
	if c.userID != userID || prefsEpoch != c.prefsEpoch {
		l.InfoContext(ctx, "Discarding sync superseded by a local change")
		return ErrStale
	}

	prefs := res.Preferences.Clone()
	if prefs.DefaultCity != nil {
		if city, ok := c.catalog.CityByID(prefs.DefaultCity.ID); ok {
			prefs.DefaultCity = &city
		} else {
			l.WarnContext(ctx, "Remote default city not in catalog", slog.String("city", prefs.DefaultCity.ID))
			prefs.DefaultCity = nil
		}
	}
	c.state.Preferences = prefs
	c.state.SearchRadius = prefs.SearchRadius
	c.state.Error = ""
	c.persist(ctx, cachestore.KeyPreferences, prefs)

	if res.Source == prefsync.SourceRemote && prefs.Mode == types.ModeManual && prefs.DefaultCity != nil &&
		cityEpoch == c.cityEpoch &&
		(c.state.CurrentCity == nil || !c.state.CurrentCity.Equal(*prefs.DefaultCity)) {
		c.cityEpoch++
		c.state.IsDetected = false
		c.applyCity(ctx, *prefs.DefaultCity, types.SourceRemote)
	}

	span.SetAttributes(attribute.String("sync.source", string(res.Source)))
	span.SetStatus(codes.Ok, "Synced")
	return nil
}

// IsPromptShown reports whether the location prompt was already shown.
func (c *Coordinator) IsPromptShown(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	shown, ok := cachestore.Get[bool](ctx, c.store, cachestore.KeyPromptShown)
	return ok && shown
}

func (c *Coordinator) MarkPromptShown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Save(ctx, cachestore.KeyPromptShown, true)
}

// Subscribe returns a channel of location changes and a function that
// cancels the subscription. Slow subscribers miss events.
func (c *Coordinator) Subscribe() (<-chan types.LocationChangedEvent, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan types.LocationChangedEvent, subscriberBuffer)
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
}

// applyCity sets the current city, persists it as last-city and records the
// visit. Callers hold the lock and bump the epoch.
func (c *Coordinator) applyCity(ctx context.Context, city types.City, source types.ChangeSource) {
	c.state.CurrentCity = &city
	c.persist(ctx, cachestore.KeyLastCity, city)

	if err := c.history.RecordVisit(city); err != nil {
		c.logger.ErrorContext(ctx, "Failed to record visit",
			slog.String("city", city.ID), slog.Any("error", err))
	} else {
		c.syncCollections()
		c.persist(ctx, cachestore.KeyHistory, c.state.History)
	}
	c.emit(ctx, city, source)
}

func (c *Coordinator) syncCollections() {
	c.state.History = c.history.Entries()
	c.state.Favorites = c.history.Favorites()
}

func (c *Coordinator) persistCollections(ctx context.Context) {
	c.persist(ctx, cachestore.KeyHistory, c.history.Entries())
	c.persist(ctx, cachestore.KeyFavorites, c.history.Favorites())
}

// persist ignores write failures; the store already logged them and the
// in-memory state stays authoritative for this session.
func (c *Coordinator) persist(ctx context.Context, key string, value any) {
	_ = c.store.Save(ctx, key, value)
}

func (c *Coordinator) writeThrough(ctx context.Context) {
	if c.userID == "" || c.sync == nil {
		return
	}
	if err := c.sync.Push(ctx, c.userID, c.state.Preferences.Clone()); err != nil {
		c.logger.WarnContext(ctx, "Write-through failed, keeping local preferences",
			slog.String("user_id", c.userID), slog.Any("error", err))
	}
}

func (c *Coordinator) emit(ctx context.Context, city types.City, source types.ChangeSource) {
	ev := types.LocationChangedEvent{
		SessionID:    c.sessionID,
		UserID:       c.userID,
		City:         city,
		SearchRadius: c.state.SearchRadius,
		Source:       source,
		OccurredAt:   c.clock.Now(),
	}
	for _, ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
	if c.notifier != nil {
		if err := c.notifier.Publish(ctx, ev); err != nil {
			c.logger.WarnContext(ctx, "Failed to publish location change", slog.Any("error", err))
		}
	}
}

func (c *Coordinator) safeDetect(ctx context.Context) (city types.City, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "Detector panicked", slog.Any("panic", r))
			err = &types.DetectionError{Causes: []error{fmt.Errorf("detector panic: %v", r)}}
		}
	}()
	return c.detector.Detect(ctx)
}

func (c *Coordinator) safeSync(ctx context.Context, userID string, local types.LocationPreferences) (res prefsync.SyncResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "Synchronizer panicked", slog.Any("panic", r))
			err = &types.SyncError{Op: "sync", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return c.sync.SyncWithRemote(ctx, userID, local)
}

// recoverInto turns a panic inside a locked section into an error and
// degrades the state to the catalog default city. It must be deferred while
// the lock is held.
func (c *Coordinator) recoverInto(ctx context.Context, op string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	c.logger.ErrorContext(ctx, "Recovered from panic, falling back to default city",
		slog.String("op", op), slog.Any("panic", r))

	def := c.catalog.Default()
	c.cityEpoch++
	c.state.CurrentCity = &def
	c.state.IsDetected = false
	c.state.Loading = c.inflight > 0
	c.state.Error = fmt.Sprintf("internal error during %s", op)
	*err = fmt.Errorf("%w: panic during %s: %v", types.ErrInvariantViolation, op, r)
}

func (c *Coordinator) observe(op string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrStale):
		outcome = "stale"
	case err != nil:
		outcome = "error"
	}
	c.metrics.Operations.WithLabelValues(op, outcome).Inc()
}
