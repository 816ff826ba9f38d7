package prefsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FACorreiaa/loci-locality/internal/domain/cachestore"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

const accountKeyPrefix = "account:"

// BackendRemoteStore keeps account preferences in a cache backend. It backs
// the preference service when no database is configured.
type BackendRemoteStore struct {
	backend cachestore.Backend
}

var _ RemoteStore = (*BackendRemoteStore)(nil)

func NewBackendRemoteStore(backend cachestore.Backend) *BackendRemoteStore {
	return &BackendRemoteStore{backend: backend}
}

func (s *BackendRemoteStore) Get(ctx context.Context, userID string) (types.LocationPreferences, error) {
	if userID == "" {
		return types.LocationPreferences{}, types.ErrUnauthenticated
	}
	raw, ok, err := s.backend.Get(ctx, accountKeyPrefix+userID)
	if err != nil {
		return types.LocationPreferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	if !ok {
		return types.LocationPreferences{}, types.ErrNotFound
	}

	var prefs types.LocationPreferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return types.LocationPreferences{}, fmt.Errorf("%w: %w", types.ErrCacheCorrupted, err)
	}
	return prefs, nil
}

func (s *BackendRemoteStore) Put(ctx context.Context, userID string, prefs types.LocationPreferences) error {
	if userID == "" {
		return types.ErrUnauthenticated
	}
	if err := prefs.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.backend.Set(ctx, accountKeyPrefix+userID, raw); err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}
