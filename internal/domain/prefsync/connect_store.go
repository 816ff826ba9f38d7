package prefsync

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-locality/internal/api/localityv1"
	"github.com/FACorreiaa/loci-locality/internal/api/localityv1/localityv1connect"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

var _ RemoteStore = (*ConnectRemoteStore)(nil)

// TokenSource returns a bearer token acting as userID.
type TokenSource func(ctx context.Context, userID string) (string, error)

// ConnectRemoteStore talks to a PreferenceService over Connect.
type ConnectRemoteStore struct {
	client *localityv1connect.PreferenceServiceClient
	tokens TokenSource
}

func NewConnectRemoteStore(httpClient connect.HTTPClient, baseURL string, tokens TokenSource, opts ...connect.ClientOption) *ConnectRemoteStore {
	return &ConnectRemoteStore{
		client: localityv1connect.NewPreferenceServiceClient(httpClient, baseURL, opts...),
		tokens: tokens,
	}
}

func (c *ConnectRemoteStore) authorize(ctx context.Context, userID string, h interface{ Set(string, string) }) error {
	token, err := c.tokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to obtain token: %w", err)
	}
	h.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *ConnectRemoteStore) Get(ctx context.Context, userID string) (types.LocationPreferences, error) {
	req := connect.NewRequest(&localityv1.Empty{})
	if err := c.authorize(ctx, userID, req.Header()); err != nil {
		return types.LocationPreferences{}, err
	}

	resp, err := c.client.GetPreferences.CallUnary(ctx, req)
	if err != nil {
		if connect.CodeOf(err) == connect.CodeNotFound {
			return types.LocationPreferences{}, types.ErrNotFound
		}
		return types.LocationPreferences{}, fmt.Errorf("failed to fetch preferences: %w", err)
	}
	return resp.Msg.Preferences, nil
}

func (c *ConnectRemoteStore) Put(ctx context.Context, userID string, prefs types.LocationPreferences) error {
	req := connect.NewRequest(&localityv1.PutPreferencesRequest{Preferences: prefs})
	if err := c.authorize(ctx, userID, req.Header()); err != nil {
		return err
	}

	if _, err := c.client.PutPreferences.CallUnary(ctx, req); err != nil {
		var connectErr *connect.Error
		if errors.As(err, &connectErr) && connectErr.Code() == connect.CodeInvalidArgument {
			return fmt.Errorf("%w: %s", types.ErrBadRequest, connectErr.Message())
		}
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}
