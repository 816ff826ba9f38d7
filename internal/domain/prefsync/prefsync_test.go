package prefsync

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) Get(ctx context.Context, userID string) (types.LocationPreferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.LocationPreferences), args.Error(1)
}

func (m *MockRemoteStore) Put(ctx context.Context, userID string, prefs types.LocationPreferences) error {
	args := m.Called(ctx, userID, prefs)
	return args.Error(0)
}

const userID = "8f1c3d6e-58c4-4b7a-9a8e-3c2f1e0d9b7a"

var (
	paris = types.City{ID: "paris", Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}
	lyon  = types.City{ID: "lyon", Name: "Lyon", Latitude: 45.7640, Longitude: 4.8357}
)

func TestSyncWithRemote_RemoteWins(t *testing.T) {
	remote := new(MockRemoteStore)
	metrics := observability.NewMetricsForTesting()
	s := New(remote, newTestLogger(), WithMetrics(metrics))

	local := types.DefaultPreferences()
	local.DefaultCity = &lyon
	local.SearchRadius = 10

	stored := types.DefaultPreferences()
	stored.DefaultCity = &paris
	stored.SearchRadius = 50

	remote.On("Get", mock.Anything, userID).Return(stored, nil).Once()

	res, err := s.SyncWithRemote(context.Background(), userID, local)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, 50, res.Preferences.SearchRadius)
	require.NotNil(t, res.Preferences.DefaultCity)
	assert.Equal(t, "paris", res.Preferences.DefaultCity.ID)

	remote.AssertExpectations(t)
	remote.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Syncs.WithLabelValues("pull", "success")))
}

func TestSyncWithRemote_SeedsEmptyRemote(t *testing.T) {
	remote := new(MockRemoteStore)
	s := New(remote, newTestLogger())

	local := types.DefaultPreferences()
	local.DefaultCity = &lyon

	remote.On("Get", mock.Anything, userID).Return(types.LocationPreferences{}, types.ErrNotFound).Once()
	remote.On("Put", mock.Anything, userID, local).Return(nil).Once()

	res, err := s.SyncWithRemote(context.Background(), userID, local)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, local, res.Preferences)
	remote.AssertExpectations(t)
}

func TestSyncWithRemote_Failures(t *testing.T) {
	t.Run("get fails", func(t *testing.T) {
		remote := new(MockRemoteStore)
		s := New(remote, newTestLogger())
		remote.On("Get", mock.Anything, userID).Return(types.LocationPreferences{}, assert.AnError).Once()

		_, err := s.SyncWithRemote(context.Background(), userID, types.DefaultPreferences())
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrRemoteSync)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("seed fails", func(t *testing.T) {
		remote := new(MockRemoteStore)
		s := New(remote, newTestLogger())
		remote.On("Get", mock.Anything, userID).Return(types.LocationPreferences{}, types.ErrNotFound).Once()
		remote.On("Put", mock.Anything, userID, mock.Anything).Return(assert.AnError).Once()

		_, err := s.SyncWithRemote(context.Background(), userID, types.DefaultPreferences())
		assert.ErrorIs(t, err, types.ErrRemoteSync)
	})

	t.Run("invalid remote record", func(t *testing.T) {
		remote := new(MockRemoteStore)
		s := New(remote, newTestLogger())
		bad := types.DefaultPreferences()
		bad.SearchRadius = 7
		remote.On("Get", mock.Anything, userID).Return(bad, nil).Once()

		_, err := s.SyncWithRemote(context.Background(), userID, types.DefaultPreferences())
		assert.ErrorIs(t, err, types.ErrRemoteSync)
		assert.ErrorIs(t, err, types.ErrInvalidRadius)
	})

	t.Run("anonymous", func(t *testing.T) {
		remote := new(MockRemoteStore)
		s := New(remote, newTestLogger())

		_, err := s.SyncWithRemote(context.Background(), "", types.DefaultPreferences())
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		remote.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestPush(t *testing.T) {
	remote := new(MockRemoteStore)
	metrics := observability.NewMetricsForTesting()
	s := New(remote, newTestLogger(), WithMetrics(metrics))

	prefs := types.DefaultPreferences()
	prefs.DefaultCity = &paris

	remote.On("Put", mock.Anything, userID, prefs).Return(nil).Once()
	require.NoError(t, s.Push(context.Background(), userID, prefs))

	remote.On("Put", mock.Anything, userID, prefs).Return(assert.AnError).Once()
	err := s.Push(context.Background(), userID, prefs)
	assert.ErrorIs(t, err, types.ErrRemoteSync)

	assert.ErrorIs(t, s.Push(context.Background(), "", prefs), types.ErrUnauthenticated)

	remote.AssertExpectations(t)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Syncs.WithLabelValues("write_through", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Syncs.WithLabelValues("write_through", "error")))
}
