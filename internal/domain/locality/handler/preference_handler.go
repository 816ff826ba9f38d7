package handler

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-locality/internal/api/localityv1"
	"github.com/FACorreiaa/loci-locality/internal/api/localityv1/localityv1connect"
	"github.com/FACorreiaa/loci-locality/internal/domain/prefsync"
	"github.com/FACorreiaa/loci-locality/internal/types"
	"github.com/FACorreiaa/loci-locality/pkg/interceptors"
)

// PreferenceHandler serves the account preference record that sessions sync
// against.
type PreferenceHandler struct {
	store  prefsync.RemoteStore
	logger *slog.Logger
}

var _ localityv1connect.PreferenceServiceHandler = (*PreferenceHandler)(nil)

func NewPreferenceHandler(store prefsync.RemoteStore, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{store: store, logger: logger}
}

func (h *PreferenceHandler) GetPreferences(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.PreferencesResponse], error) {
	userID, ok := interceptors.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, types.ErrUnauthenticated)
	}

	prefs, err := h.store.Get(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&localityv1.PreferencesResponse{Preferences: prefs}), nil
}

func (h *PreferenceHandler) PutPreferences(ctx context.Context, req *connect.Request[localityv1.PutPreferencesRequest]) (*connect.Response[localityv1.PreferencesResponse], error) {
	l := h.logger.With(slog.String("method", "PutPreferences"))

	userID, ok := interceptors.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, types.ErrUnauthenticated)
	}
	if err := req.Msg.Preferences.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := h.store.Put(ctx, userID, req.Msg.Preferences); err != nil {
		l.ErrorContext(ctx, "failed to store preferences", slog.String("user_id", userID), slog.Any("error", err))
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&localityv1.PreferencesResponse{Preferences: req.Msg.Preferences}), nil
}
