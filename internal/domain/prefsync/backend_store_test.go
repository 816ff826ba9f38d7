package prefsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-locality/internal/domain/cachestore"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

func TestBackendRemoteStore_RoundTrip(t *testing.T) {
	backend := cachestore.NewMemoryBackend()
	store := NewBackendRemoteStore(backend)
	ctx := context.Background()

	_, err := store.Get(ctx, "u1")
	require.ErrorIs(t, err, types.ErrNotFound)

	madrid := types.City{ID: "madrid", Name: "Madrid", Latitude: 40.4168, Longitude: -3.7038}
	want := types.LocationPreferences{DefaultCity: &madrid, SearchRadius: 50, Mode: types.ModeManual}
	require.NoError(t, store.Put(ctx, "u1", want))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = store.Get(ctx, "u2")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestBackendRemoteStore_RejectsInvalid(t *testing.T) {
	store := NewBackendRemoteStore(cachestore.NewMemoryBackend())

	err := store.Put(context.Background(), "u1", types.LocationPreferences{SearchRadius: 3, Mode: types.ModeManual})
	assert.ErrorIs(t, err, types.ErrInvalidRadius)

	err = store.Put(context.Background(), "", types.DefaultPreferences())
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
}

func TestBackendRemoteStore_CorruptRecord(t *testing.T) {
	backend := cachestore.NewMemoryBackend()
	require.NoError(t, backend.Set(context.Background(), "account:u1", []byte("{not json")))

	_, err := NewBackendRemoteStore(backend).Get(context.Background(), "u1")
	assert.ErrorIs(t, err, types.ErrCacheCorrupted)
}
