package locality

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-locality/internal/domain/cachestore"
	"github.com/FACorreiaa/loci-locality/internal/domain/catalog"
	"github.com/FACorreiaa/loci-locality/internal/domain/prefsync"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

const testUserID = "0b7a1f5c-2f0e-4a4f-9f3e-5d8c6b9a1e2f"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type detectorFunc func(ctx context.Context) (types.City, error)

func (f detectorFunc) Detect(ctx context.Context) (types.City, error) {
	return f(ctx)
}

func detectCity(c types.City) detectorFunc {
	return func(context.Context) (types.City, error) { return c, nil }
}

func detectFail() detectorFunc {
	return func(context.Context) (types.City, error) {
		return types.City{}, &types.DetectionError{Causes: []error{assert.AnError}}
	}
}

// memoryRemote is an in-process account preference store.
type memoryRemote struct {
	mu      sync.Mutex
	records map[string]types.LocationPreferences
	puts    []types.LocationPreferences
	getErr  error
	putErr  error
}

func newMemoryRemote() *memoryRemote {
	return &memoryRemote{records: make(map[string]types.LocationPreferences)}
}

func (m *memoryRemote) Get(_ context.Context, userID string) (types.LocationPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return types.LocationPreferences{}, m.getErr
	}
	p, ok := m.records[userID]
	if !ok {
		return types.LocationPreferences{}, types.ErrNotFound
	}
	return p, nil
}

func (m *memoryRemote) Put(_ context.Context, userID string, prefs types.LocationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.records[userID] = prefs
	m.puts = append(m.puts, prefs)
	return nil
}

func (m *memoryRemote) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.puts)
}

type harness struct {
	backend *cachestore.MemoryBackend
	catalog *catalog.Catalog
	clock   *clockwork.FakeClock
	remote  *memoryRemote
}

func newHarness(opts ...cachestore.MemoryOption) *harness {
	return &harness{
		backend: cachestore.NewMemoryBackend(opts...),
		catalog: catalog.Builtin(),
		clock:   clockwork.NewFakeClockAt(time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)),
		remote:  newMemoryRemote(),
	}
}

func (h *harness) store(session string) *cachestore.Store {
	return cachestore.New(h.backend, session, newTestLogger(), cachestore.WithClock(h.clock))
}

func (h *harness) coordinator(session string, opts ...Option) *Coordinator {
	opts = append([]Option{
		WithClock(h.clock),
		WithSynchronizer(prefsync.New(h.remote, newTestLogger())),
	}, opts...)
	return NewCoordinator(session, h.store(session), h.catalog, newTestLogger(), opts...)
}

func (h *harness) city(t *testing.T, id string) types.City {
	t.Helper()
	c, ok := h.catalog.CityByID(id)
	require.True(t, ok)
	return c
}

func entryIDs(entries []types.CityHistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.City.ID
	}
	return out
}

func TestCoordinator_EndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1", WithDetector(detectCity(h.city(t, "lyon"))), WithAutoDetect(true))

	require.NoError(t, c.Init(ctx))

	st := c.State()
	require.NotNil(t, st.CurrentCity)
	assert.Equal(t, "lyon", st.CurrentCity.ID)
	assert.True(t, st.IsDetected)
	assert.False(t, st.Loading)
	recent := c.Suggestions().Recent
	require.Len(t, recent, 1)
	assert.Equal(t, "lyon", recent[0].City.ID)
	assert.Equal(t, 1, recent[0].VisitCount)

	h.clock.Advance(time.Minute)
	require.NoError(t, c.SetCity(ctx, types.City{ID: "paris"}))
	require.NoError(t, c.SetSearchRadius(ctx, 50))

	st = c.State()
	assert.Equal(t, "paris", st.CurrentCity.ID)
	assert.Equal(t, 50, st.SearchRadius)
	assert.False(t, st.IsDetected)
	require.NotNil(t, st.Preferences.DefaultCity)
	assert.Equal(t, "paris", st.Preferences.DefaultCity.ID)
	assert.Equal(t, 50, st.Preferences.SearchRadius)
	assert.Equal(t, []string{"paris", "lyon"}, entryIDs(st.History))

	// A new session over the same storage resolves the manual preference.
	again := h.coordinator("s1")
	require.NoError(t, again.Init(ctx))
	st = again.State()
	assert.Equal(t, "paris", st.CurrentCity.ID)
	assert.Equal(t, 50, st.SearchRadius)
}

func TestCoordinator_InitPrecedence(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	detections := 0
	det := detectorFunc(func(context.Context) (types.City, error) {
		detections++
		return h.city(t, "rome"), nil
	})

	store := h.store("s1")
	require.NoError(t, store.Save(ctx, cachestore.KeyLastCity, h.city(t, "porto")))

	c := h.coordinator("s1", WithDetector(det), WithAutoDetect(true))
	require.NoError(t, c.Init(ctx))

	st := c.State()
	assert.Equal(t, "porto", st.CurrentCity.ID)
	assert.False(t, st.IsDetected)
	assert.Zero(t, detections, "detection only runs when nothing was recorded")
	assert.Equal(t, []string{"porto"}, entryIDs(st.History))
}

func TestCoordinator_InitDetectionFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1", WithDetector(detectFail()), WithAutoDetect(true))

	require.NoError(t, c.Init(ctx))

	st := c.State()
	assert.Equal(t, "lisbon", st.CurrentCity.ID)
	assert.NotEmpty(t, st.Error)
	assert.False(t, st.Loading)
	assert.False(t, st.IsDetected)
	assert.Empty(t, st.History, "the fallback default is not a visit")

	_, ok := cachestore.Get[types.City](ctx, h.store("s1"), cachestore.KeyLastCity)
	assert.False(t, ok)
}

func TestCoordinator_InitWithoutAutoDetect(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1", WithDetector(detectCity(h.city(t, "rome"))))

	require.NoError(t, c.Init(ctx))
	st := c.State()
	assert.Equal(t, "lisbon", st.CurrentCity.ID)
	assert.Empty(t, st.Error)
	assert.Empty(t, st.History)
}

func TestCoordinator_InitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	require.NoError(t, h.store("s1").Save(ctx, cachestore.KeyLastCity, h.city(t, "faro")))

	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.Init(ctx))

	assert.Equal(t, 1, c.State().History[0].VisitCount)
}

func TestCoordinator_InitRepairsCorruptStorage(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	store := h.store("s1")
	require.NoError(t, h.backend.Set(ctx, store.BackendKey(cachestore.KeyPreferences), []byte("{oops")))
	require.NoError(t, h.backend.Set(ctx, store.BackendKey(cachestore.KeyHistory), []byte(`"not a list"`)))
	require.NoError(t, store.Save(ctx, cachestore.KeyFavorites, []types.City{{ID: "atlantis"}, h.city(t, "rome")}))

	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	st := c.State()
	assert.Equal(t, "lisbon", st.CurrentCity.ID)
	assert.Equal(t, types.DefaultPreferences(), st.Preferences)
	require.Len(t, st.Favorites, 1)
	assert.Equal(t, "rome", st.Favorites[0].ID)

	favs, ok := cachestore.Get[[]types.City](ctx, store, cachestore.KeyFavorites)
	require.True(t, ok)
	assert.Len(t, favs, 1, "repaired favorites are written back")
}

func TestCoordinator_SetCityRejectsUnknownCity(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.SetCity(ctx, h.city(t, "berlin")))

	err := c.SetCity(ctx, types.City{ID: "atlantis"})
	assert.ErrorIs(t, err, types.ErrInvariantViolation)
	assert.ErrorIs(t, err, types.ErrUnknownCity)
	assert.Equal(t, "berlin", c.State().CurrentCity.ID)
}

func TestCoordinator_SetCityAskModeLeavesPreferences(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	prefs := types.DefaultPreferences()
	prefs.Mode = types.ModeAsk
	require.NoError(t, c.SetPreferences(ctx, prefs))
	require.NoError(t, c.SetCity(ctx, h.city(t, "madrid")))

	st := c.State()
	assert.Equal(t, "madrid", st.CurrentCity.ID)
	assert.Nil(t, st.Preferences.DefaultCity)
}

func TestCoordinator_SetSearchRadius(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	assert.ErrorIs(t, c.SetSearchRadius(ctx, 30), types.ErrInvalidRadius)
	assert.Equal(t, types.DefaultSearchRadiusKm, c.State().SearchRadius)

	require.NoError(t, c.SetSearchRadius(ctx, 100))
	prefs, ok := cachestore.Get[types.LocationPreferences](ctx, h.store("s1"), cachestore.KeyPreferences)
	require.True(t, ok)
	assert.Equal(t, 100, prefs.SearchRadius)
}

func TestCoordinator_SetSearchRadiusAskModeSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	prefs := types.DefaultPreferences()
	prefs.Mode = types.ModeAsk
	require.NoError(t, c.SetPreferences(ctx, prefs))
	require.NoError(t, c.SetCity(ctx, h.city(t, "madrid")))
	require.NoError(t, c.SetSearchRadius(ctx, 50))

	stored, ok := cachestore.Get[types.LocationPreferences](ctx, h.store("s1"), cachestore.KeyPreferences)
	require.True(t, ok)
	assert.Equal(t, 50, stored.SearchRadius)
	assert.Equal(t, types.ModeAsk, stored.Mode)
	assert.Nil(t, stored.DefaultCity)

	restarted := h.coordinator("s1")
	require.NoError(t, restarted.Init(ctx))
	st := restarted.State()
	assert.Equal(t, 50, st.SearchRadius)
	assert.Equal(t, "madrid", st.CurrentCity.ID)
}

func TestCoordinator_SetPreferencesSwitchesManualCity(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	vienna := h.city(t, "vienna")
	prefs := types.LocationPreferences{DefaultCity: &vienna, SearchRadius: 10, Mode: types.ModeManual}
	require.NoError(t, c.SetPreferences(ctx, prefs))

	st := c.State()
	assert.Equal(t, "vienna", st.CurrentCity.ID)
	assert.Equal(t, 10, st.SearchRadius)

	bad := prefs
	bad.SearchRadius = 11
	assert.ErrorIs(t, c.SetPreferences(ctx, bad), types.ErrInvalidRadius)

	atlantis := types.City{ID: "atlantis"}
	bad = prefs
	bad.DefaultCity = &atlantis
	assert.ErrorIs(t, c.SetPreferences(ctx, bad), types.ErrUnknownCity)
	assert.Equal(t, "vienna", c.State().Preferences.DefaultCity.ID)
}

func TestCoordinator_QuotaExceededDoesNotBreakSetCity(t *testing.T) {
	ctx := context.Background()
	h := newHarness(cachestore.WithMaxBytes(1))
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	require.NoError(t, c.SetCity(ctx, h.city(t, "prague")))
	st := c.State()
	assert.Equal(t, "prague", st.CurrentCity.ID)
	assert.Equal(t, "prague", st.Preferences.DefaultCity.ID)
	assert.Zero(t, h.backend.Len())
}

func TestCoordinator_StaleDetectionDiscarded(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	started := make(chan struct{})
	release := make(chan struct{})
	det := detectorFunc(func(context.Context) (types.City, error) {
		close(started)
		<-release
		return h.city(t, "lyon"), nil
	})

	c := h.coordinator("s1", WithDetector(det))
	require.NoError(t, c.Init(ctx))

	done := make(chan error, 1)
	go func() { done <- c.DetectLocation(ctx) }()

	<-started
	assert.True(t, c.State().Loading)
	require.NoError(t, c.SetCity(ctx, h.city(t, "paris")))
	close(release)

	err := <-done
	assert.ErrorIs(t, err, ErrStale)

	st := c.State()
	assert.Equal(t, "paris", st.CurrentCity.ID)
	assert.False(t, st.Loading)
	assert.False(t, st.IsDetected)
	assert.Equal(t, []string{"paris"}, entryIDs(st.History))
}

func TestCoordinator_DetectLocation(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	t.Run("success", func(t *testing.T) {
		c := h.coordinator("detect-ok", WithDetector(detectCity(h.city(t, "milan"))))
		require.NoError(t, c.Init(ctx))
		require.NoError(t, c.DetectLocation(ctx))

		st := c.State()
		assert.Equal(t, "milan", st.CurrentCity.ID)
		assert.True(t, st.IsDetected)
		assert.Nil(t, st.Preferences.DefaultCity, "detection is not an explicit choice")
	})

	t.Run("failure keeps city", func(t *testing.T) {
		c := h.coordinator("detect-fail", WithDetector(detectFail()))
		require.NoError(t, c.Init(ctx))
		require.NoError(t, c.SetCity(ctx, h.city(t, "seville")))

		err := c.DetectLocation(ctx)
		assert.ErrorIs(t, err, types.ErrDetectionFailed)

		st := c.State()
		assert.Equal(t, "seville", st.CurrentCity.ID)
		assert.NotEmpty(t, st.Error)
		assert.False(t, st.Loading)
	})

	t.Run("panic is contained", func(t *testing.T) {
		det := detectorFunc(func(context.Context) (types.City, error) { panic("boom") })
		c := h.coordinator("detect-panic", WithDetector(det))
		require.NoError(t, c.Init(ctx))

		err := c.DetectLocation(ctx)
		assert.ErrorIs(t, err, types.ErrDetectionFailed)
		assert.Equal(t, "lisbon", c.State().CurrentCity.ID)
	})

	t.Run("no detector", func(t *testing.T) {
		c := h.coordinator("detect-none")
		require.NoError(t, c.Init(ctx))
		assert.ErrorIs(t, c.DetectLocation(ctx), types.ErrDetectionFailed)
	})
}

func TestCoordinator_WriteThroughWhenAuthenticated(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	require.NoError(t, c.SetCity(ctx, h.city(t, "amsterdam")))
	assert.Zero(t, h.remote.putCount(), "anonymous sessions never write through")

	c.Authenticate(testUserID)
	require.NoError(t, c.SetCity(ctx, h.city(t, "london")))
	require.NoError(t, c.SetSearchRadius(ctx, 5))

	assert.Equal(t, 2, h.remote.putCount())
	stored, err := h.remote.Get(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "london", stored.DefaultCity.ID)
	assert.Equal(t, 5, stored.SearchRadius)
}

func TestCoordinator_WriteThroughFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.remote.putErr = assert.AnError
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	c.Authenticate(testUserID)

	require.NoError(t, c.SetCity(ctx, h.city(t, "london")))
	assert.Equal(t, "london", c.State().CurrentCity.ID)
}

func TestCoordinator_SyncPrecedence(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	paris := h.city(t, "paris")
	h.remote.records[testUserID] = types.LocationPreferences{DefaultCity: &paris, SearchRadius: 50, Mode: types.ModeManual}

	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.SetCity(ctx, h.city(t, "lyon")))
	require.NoError(t, c.SetSearchRadius(ctx, 10))

	assert.ErrorIs(t, c.SyncWithAPI(ctx), types.ErrUnauthenticated)

	c.Authenticate(testUserID)
	require.NoError(t, c.SyncWithAPI(ctx))

	st := c.State()
	assert.Equal(t, 50, st.SearchRadius)
	assert.Equal(t, "paris", st.Preferences.DefaultCity.ID)
	assert.Equal(t, "paris", st.CurrentCity.ID)
	assert.Empty(t, st.Error)

	prefs, ok := cachestore.Get[types.LocationPreferences](ctx, h.store("s1"), cachestore.KeyPreferences)
	require.True(t, ok)
	assert.Equal(t, 50, prefs.SearchRadius)
}

func TestCoordinator_SyncSeedsEmptyRemote(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.SetCity(ctx, h.city(t, "tokyo")))

	c.Authenticate(testUserID)
	require.NoError(t, c.SyncWithAPI(ctx))

	stored, err := h.remote.Get(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "tokyo", stored.DefaultCity.ID)
	assert.Equal(t, "tokyo", c.State().CurrentCity.ID)
}

func TestCoordinator_SyncFailureCaptured(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.remote.getErr = assert.AnError
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.SetSearchRadius(ctx, 10))
	c.Authenticate(testUserID)

	err := c.SyncWithAPI(ctx)
	assert.ErrorIs(t, err, types.ErrRemoteSync)

	st := c.State()
	assert.NotEmpty(t, st.Error)
	assert.Equal(t, 10, st.SearchRadius)
	assert.False(t, st.Loading)
}

func TestCoordinator_ResetToDefault(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.SetCity(ctx, h.city(t, "coimbra")))
	require.NoError(t, c.SetSearchRadius(ctx, 100))
	require.NoError(t, c.AddToFavorites(ctx, h.city(t, "faro")))

	require.NoError(t, c.ResetToDefault(ctx))

	st := c.State()
	assert.Equal(t, "lisbon", st.CurrentCity.ID)
	assert.Equal(t, types.DefaultSearchRadiusKm, st.SearchRadius)
	assert.Equal(t, types.DefaultPreferences(), st.Preferences)
	assert.Len(t, st.History, 1)
	assert.Len(t, st.Favorites, 1)

	store := h.store("s1")
	_, ok := cachestore.Get[types.LocationPreferences](ctx, store, cachestore.KeyPreferences)
	assert.False(t, ok)
	_, ok = cachestore.Get[types.City](ctx, store, cachestore.KeyLastCity)
	assert.False(t, ok)
}

func TestCoordinator_Favorites(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	require.NoError(t, c.AddToFavorites(ctx, h.city(t, "rome")))
	require.NoError(t, c.AddToFavorites(ctx, h.city(t, "rome")))
	added, err := c.ToggleFavorite(ctx, h.city(t, "milan"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.ErrorIs(t, c.AddToFavorites(ctx, types.City{ID: "atlantis"}), types.ErrInvariantViolation)

	assert.Len(t, c.State().Favorites, 2)

	again := h.coordinator("s1")
	require.NoError(t, again.Init(ctx))
	assert.Len(t, again.State().Favorites, 2)

	require.NoError(t, again.RemoveFromFavorites(ctx, "rome"))
	require.NoError(t, again.RemoveFromFavorites(ctx, "rome"))
	favs := again.State().Favorites
	require.Len(t, favs, 1)
	assert.Equal(t, "milan", favs[0].ID)

	suggested := again.Suggestions().Suggested
	assert.Equal(t, "milan", suggested[0].ID)
}

func TestCoordinator_PromptShown(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	assert.False(t, c.IsPromptShown(ctx))
	require.NoError(t, c.MarkPromptShown(ctx))
	h.clock.Advance(365 * 24 * time.Hour)
	assert.True(t, c.IsPromptShown(ctx))
}

func TestCoordinator_ClearAll(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.SetCity(ctx, h.city(t, "barcelona")))
	require.NoError(t, c.AddToFavorites(ctx, h.city(t, "paris")))
	require.NoError(t, c.MarkPromptShown(ctx))
	require.NotZero(t, h.backend.Len())

	require.NoError(t, c.ClearAll(ctx))

	assert.Zero(t, h.backend.Len())
	st := c.State()
	assert.Equal(t, "lisbon", st.CurrentCity.ID)
	assert.Empty(t, st.History)
	assert.Empty(t, st.Favorites)
	assert.False(t, c.IsPromptShown(ctx))
}

type panickyNotifier struct {
	armed bool
}

func (p *panickyNotifier) Publish(context.Context, types.LocationChangedEvent) error {
	if p.armed {
		panic("notifier exploded")
	}
	return nil
}

func TestCoordinator_PanicDegradesToDefault(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	n := &panickyNotifier{}
	c := h.coordinator("s1", WithNotifier(n))
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.SetCity(ctx, h.city(t, "berlin")))

	n.armed = true
	err := c.SetCity(ctx, h.city(t, "rome"))
	assert.ErrorIs(t, err, types.ErrInvariantViolation)

	st := c.State()
	assert.Equal(t, "lisbon", st.CurrentCity.ID)
	assert.NotEmpty(t, st.Error)

	n.armed = false
	require.NoError(t, c.SetCity(ctx, h.city(t, "rome")), "the coordinator stays usable")
}

func TestCoordinator_Subscribe(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	c := h.coordinator("s1")
	require.NoError(t, c.Init(ctx))

	events, cancel := c.Subscribe()
	require.NoError(t, c.SetCity(ctx, h.city(t, "porto")))

	select {
	case ev := <-events:
		assert.Equal(t, "porto", ev.City.ID)
		assert.Equal(t, types.SourceManual, ev.Source)
		assert.Equal(t, "s1", ev.SessionID)
		assert.Equal(t, h.clock.Now(), ev.OccurredAt)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
	require.NoError(t, c.SetCity(ctx, h.city(t, "faro")))
}
