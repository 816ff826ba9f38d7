package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-locality/internal/api/localityv1"
	"github.com/FACorreiaa/loci-locality/internal/api/localityv1/localityv1connect"
	"github.com/FACorreiaa/loci-locality/internal/domain/geolocation"
	"github.com/FACorreiaa/loci-locality/internal/domain/locality"
	"github.com/FACorreiaa/loci-locality/internal/types"
	"github.com/FACorreiaa/loci-locality/pkg/interceptors"
	"github.com/FACorreiaa/loci-locality/pkg/session"
)

// SessionSource hands out the initialized Coordinator of a browser session.
type SessionSource interface {
	Get(ctx context.Context, sessionID, userID string) (*locality.Coordinator, error)
}

// Catalog is the read side of the city catalog the handler needs.
type Catalog interface {
	All() []types.City
	Default() types.City
	CityByID(id string) (types.City, bool)
}

var errNoSession = errors.New("missing session")

// LocalityHandler implements the Connect LocalityService.
type LocalityHandler struct {
	sessions SessionSource
	catalog  Catalog
	logger   *slog.Logger
}

var _ localityv1connect.LocalityServiceHandler = (*LocalityHandler)(nil)

func NewLocalityHandler(sessions SessionSource, catalog Catalog, logger *slog.Logger) *LocalityHandler {
	return &LocalityHandler{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

func (h *LocalityHandler) coordinator(ctx context.Context) (*locality.Coordinator, error) {
	sessionID, ok := session.IDFromContext(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errNoSession)
	}
	userID, _ := interceptors.GetUserIDFromContext(ctx)

	c, err := h.sessions.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return c, nil
}

func (h *LocalityHandler) lookupCity(id string) (types.City, error) {
	if id == "" {
		return types.City{}, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: city_id is required", types.ErrBadRequest))
	}
	city, ok := h.catalog.CityByID(id)
	if !ok {
		return types.City{}, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %q", types.ErrUnknownCity, id))
	}
	return city, nil
}

func stateResponse(c *locality.Coordinator) *connect.Response[localityv1.StateResponse] {
	return connect.NewResponse(&localityv1.StateResponse{State: c.State()})
}

func (h *LocalityHandler) GetState(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) ListCities(_ context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.ListCitiesResponse], error) {
	return connect.NewResponse(&localityv1.ListCitiesResponse{
		Cities:        h.catalog.All(),
		DefaultCityID: h.catalog.Default().ID,
	}), nil
}

func (h *LocalityHandler) SetCity(ctx context.Context, req *connect.Request[localityv1.SetCityRequest]) (*connect.Response[localityv1.StateResponse], error) {
	city, err := h.lookupCity(req.Msg.CityID)
	if err != nil {
		return nil, err
	}
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.SetCity(ctx, city); err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) SetSearchRadius(ctx context.Context, req *connect.Request[localityv1.SetSearchRadiusRequest]) (*connect.Response[localityv1.StateResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.SetSearchRadius(ctx, req.Msg.RadiusKm); err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) SetPreferences(ctx context.Context, req *connect.Request[localityv1.SetPreferencesRequest]) (*connect.Response[localityv1.StateResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.SetPreferences(ctx, req.Msg.Preferences); err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) AddFavorite(ctx context.Context, req *connect.Request[localityv1.FavoriteRequest]) (*connect.Response[localityv1.StateResponse], error) {
	city, err := h.lookupCity(req.Msg.CityID)
	if err != nil {
		return nil, err
	}
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.AddToFavorites(ctx, city); err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) RemoveFavorite(ctx context.Context, req *connect.Request[localityv1.FavoriteRequest]) (*connect.Response[localityv1.StateResponse], error) {
	if req.Msg.CityID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: city_id is required", types.ErrBadRequest))
	}
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveFromFavorites(ctx, req.Msg.CityID); err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) ToggleFavorite(ctx context.Context, req *connect.Request[localityv1.FavoriteRequest]) (*connect.Response[localityv1.ToggleFavoriteResponse], error) {
	city, err := h.lookupCity(req.Msg.CityID)
	if err != nil {
		return nil, err
	}
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	added, err := c.ToggleFavorite(ctx, city)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&localityv1.ToggleFavoriteResponse{
		IsFavorite: added,
		State:      c.State(),
	}), nil
}

// DetectLocation runs detection and returns the resulting state. A failed or
// superseded detection is reported through State.Error rather than as an
// RPC error.
func (h *LocalityHandler) DetectLocation(ctx context.Context, req *connect.Request[localityv1.DetectLocationRequest]) (*connect.Response[localityv1.StateResponse], error) {
	l := h.logger.With(slog.String("method", "DetectLocation"))

	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Coordinates != nil {
		ctx = geolocation.WithCoordinates(ctx, *req.Msg.Coordinates)
	}

	if err := c.DetectLocation(ctx); err != nil {
		if errors.Is(err, types.ErrDetectionFailed) || errors.Is(err, locality.ErrStale) {
			l.InfoContext(ctx, "detection did not change the city", slog.Any("error", err))
			return stateResponse(c), nil
		}
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) ResetToDefault(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.ResetToDefault(ctx); err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

// SyncWithAPI needs an authenticated caller. Remote failures leave the local
// state authoritative and are reported through State.Error.
func (h *LocalityHandler) SyncWithAPI(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error) {
	l := h.logger.With(slog.String("method", "SyncWithAPI"))

	if _, ok := interceptors.GetUserIDFromContext(ctx); !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, types.ErrUnauthenticated)
	}
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.SyncWithAPI(ctx); err != nil {
		if errors.Is(err, types.ErrRemoteSync) || errors.Is(err, locality.ErrStale) {
			l.WarnContext(ctx, "sync kept local preferences", slog.Any("error", err))
			return stateResponse(c), nil
		}
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}

func (h *LocalityHandler) GetSuggestions(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.SuggestionsResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&localityv1.SuggestionsResponse{Suggestions: c.Suggestions()}), nil
}

func (h *LocalityHandler) GetPromptShown(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.PromptShownResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&localityv1.PromptShownResponse{Shown: c.IsPromptShown(ctx)}), nil
}

func (h *LocalityHandler) MarkPromptShown(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.PromptShownResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.MarkPromptShown(ctx); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&localityv1.PromptShownResponse{Shown: true}), nil
}

func (h *LocalityHandler) ClearAll(ctx context.Context, _ *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error) {
	c, err := h.coordinator(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.ClearAll(ctx); err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(c), nil
}
