// Package localityv1connect wires the loci.locality.v1 services onto Connect
// handlers and clients using the JSON codec.
package localityv1connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/FACorreiaa/loci-locality/internal/api/localityv1"
)

// LocalityServiceHandler serves a browser session's locality.
type LocalityServiceHandler interface {
	GetState(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error)
	ListCities(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.ListCitiesResponse], error)
	SetCity(context.Context, *connect.Request[localityv1.SetCityRequest]) (*connect.Response[localityv1.StateResponse], error)
	SetSearchRadius(context.Context, *connect.Request[localityv1.SetSearchRadiusRequest]) (*connect.Response[localityv1.StateResponse], error)
	SetPreferences(context.Context, *connect.Request[localityv1.SetPreferencesRequest]) (*connect.Response[localityv1.StateResponse], error)
	AddFavorite(context.Context, *connect.Request[localityv1.FavoriteRequest]) (*connect.Response[localityv1.StateResponse], error)
	RemoveFavorite(context.Context, *connect.Request[localityv1.FavoriteRequest]) (*connect.Response[localityv1.StateResponse], error)
	ToggleFavorite(context.Context, *connect.Request[localityv1.FavoriteRequest]) (*connect.Response[localityv1.ToggleFavoriteResponse], error)
	DetectLocation(context.Context, *connect.Request[localityv1.DetectLocationRequest]) (*connect.Response[localityv1.StateResponse], error)
	ResetToDefault(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error)
	SyncWithAPI(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error)
	GetSuggestions(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.SuggestionsResponse], error)
	GetPromptShown(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.PromptShownResponse], error)
	MarkPromptShown(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.PromptShownResponse], error)
	ClearAll(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.StateResponse], error)
}

// PreferenceServiceHandler serves the per-account preference record.
type PreferenceServiceHandler interface {
	GetPreferences(context.Context, *connect.Request[localityv1.Empty]) (*connect.Response[localityv1.PreferencesResponse], error)
	PutPreferences(context.Context, *connect.Request[localityv1.PutPreferencesRequest]) (*connect.Response[localityv1.PreferencesResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{localityv1.WithJSON()}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{localityv1.WithJSON()}, opts...)
}

// NewLocalityServiceHandler returns the service path prefix and its handler.
func NewLocalityServiceHandler(svc LocalityServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(localityv1.LocalityServiceGetStateProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceGetStateProcedure, svc.GetState, opts...))
	mux.Handle(localityv1.LocalityServiceListCitiesProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceListCitiesProcedure, svc.ListCities, opts...))
	mux.Handle(localityv1.LocalityServiceSetCityProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceSetCityProcedure, svc.SetCity, opts...))
	mux.Handle(localityv1.LocalityServiceSetSearchRadiusProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceSetSearchRadiusProcedure, svc.SetSearchRadius, opts...))
	mux.Handle(localityv1.LocalityServiceSetPreferencesProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceSetPreferencesProcedure, svc.SetPreferences, opts...))
	mux.Handle(localityv1.LocalityServiceAddFavoriteProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceAddFavoriteProcedure, svc.AddFavorite, opts...))
	mux.Handle(localityv1.LocalityServiceRemoveFavoriteProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceRemoveFavoriteProcedure, svc.RemoveFavorite, opts...))
	mux.Handle(localityv1.LocalityServiceToggleFavoriteProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceToggleFavoriteProcedure, svc.ToggleFavorite, opts...))
	mux.Handle(localityv1.LocalityServiceDetectLocationProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceDetectLocationProcedure, svc.DetectLocation, opts...))
	mux.Handle(localityv1.LocalityServiceResetToDefaultProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceResetToDefaultProcedure, svc.ResetToDefault, opts...))
	mux.Handle(localityv1.LocalityServiceSyncWithAPIProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceSyncWithAPIProcedure, svc.SyncWithAPI, opts...))
	mux.Handle(localityv1.LocalityServiceGetSuggestionsProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceGetSuggestionsProcedure, svc.GetSuggestions, opts...))
	mux.Handle(localityv1.LocalityServiceGetPromptShownProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceGetPromptShownProcedure, svc.GetPromptShown, opts...))
	mux.Handle(localityv1.LocalityServiceMarkPromptShownProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceMarkPromptShownProcedure, svc.MarkPromptShown, opts...))
	mux.Handle(localityv1.LocalityServiceClearAllProcedure,
		connect.NewUnaryHandler(localityv1.LocalityServiceClearAllProcedure, svc.ClearAll, opts...))
	return "/" + localityv1.LocalityServiceName + "/", mux
}

// NewPreferenceServiceHandler returns the service path prefix and its handler.
func NewPreferenceServiceHandler(svc PreferenceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(localityv1.PreferenceServiceGetPreferencesProcedure,
		connect.NewUnaryHandler(localityv1.PreferenceServiceGetPreferencesProcedure, svc.GetPreferences, opts...))
	mux.Handle(localityv1.PreferenceServicePutPreferencesProcedure,
		connect.NewUnaryHandler(localityv1.PreferenceServicePutPreferencesProcedure, svc.PutPreferences, opts...))
	return "/" + localityv1.PreferenceServiceName + "/", mux
}

// LocalityServiceClient is a typed client for LocalityService.
type LocalityServiceClient struct {
	GetState        *connect.Client[localityv1.Empty, localityv1.StateResponse]
	ListCities      *connect.Client[localityv1.Empty, localityv1.ListCitiesResponse]
	SetCity         *connect.Client[localityv1.SetCityRequest, localityv1.StateResponse]
	SetSearchRadius *connect.Client[localityv1.SetSearchRadiusRequest, localityv1.StateResponse]
	SetPreferences  *connect.Client[localityv1.SetPreferencesRequest, localityv1.StateResponse]
	AddFavorite     *connect.Client[localityv1.FavoriteRequest, localityv1.StateResponse]
	RemoveFavorite  *connect.Client[localityv1.FavoriteRequest, localityv1.StateResponse]
	ToggleFavorite  *connect.Client[localityv1.FavoriteRequest, localityv1.ToggleFavoriteResponse]
	DetectLocation  *connect.Client[localityv1.DetectLocationRequest, localityv1.StateResponse]
	ResetToDefault  *connect.Client[localityv1.Empty, localityv1.StateResponse]
	SyncWithAPI     *connect.Client[localityv1.Empty, localityv1.StateResponse]
	GetSuggestions  *connect.Client[localityv1.Empty, localityv1.SuggestionsResponse]
	GetPromptShown  *connect.Client[localityv1.Empty, localityv1.PromptShownResponse]
	MarkPromptShown *connect.Client[localityv1.Empty, localityv1.PromptShownResponse]
	ClearAll        *connect.Client[localityv1.Empty, localityv1.StateResponse]
}

func NewLocalityServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LocalityServiceClient {
	opts = clientOptions(opts)
	return &LocalityServiceClient{
		GetState: connect.NewClient[localityv1.Empty, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceGetStateProcedure, opts...),
		ListCities: connect.NewClient[localityv1.Empty, localityv1.ListCitiesResponse](
			httpClient, baseURL+localityv1.LocalityServiceListCitiesProcedure, opts...),
		SetCity: connect.NewClient[localityv1.SetCityRequest, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceSetCityProcedure, opts...),
		SetSearchRadius: connect.NewClient[localityv1.SetSearchRadiusRequest, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceSetSearchRadiusProcedure, opts...),
		SetPreferences: connect.NewClient[localityv1.SetPreferencesRequest, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceSetPreferencesProcedure, opts...),
		AddFavorite: connect.NewClient[localityv1.FavoriteRequest, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceAddFavoriteProcedure, opts...),
		RemoveFavorite: connect.NewClient[localityv1.FavoriteRequest, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceRemoveFavoriteProcedure, opts...),
		ToggleFavorite: connect.NewClient[localityv1.FavoriteRequest, localityv1.ToggleFavoriteResponse](
			httpClient, baseURL+localityv1.LocalityServiceToggleFavoriteProcedure, opts...),
		DetectLocation: connect.NewClient[localityv1.DetectLocationRequest, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceDetectLocationProcedure, opts...),
		ResetToDefault: connect.NewClient[localityv1.Empty, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceResetToDefaultProcedure, opts...),
		SyncWithAPI: connect.NewClient[localityv1.Empty, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceSyncWithAPIProcedure, opts...),
		GetSuggestions: connect.NewClient[localityv1.Empty, localityv1.SuggestionsResponse](
			httpClient, baseURL+localityv1.LocalityServiceGetSuggestionsProcedure, opts...),
		GetPromptShown: connect.NewClient[localityv1.Empty, localityv1.PromptShownResponse](
			httpClient, baseURL+localityv1.LocalityServiceGetPromptShownProcedure, opts...),
		MarkPromptShown: connect.NewClient[localityv1.Empty, localityv1.PromptShownResponse](
			httpClient, baseURL+localityv1.LocalityServiceMarkPromptShownProcedure, opts...),
		ClearAll: connect.NewClient[localityv1.Empty, localityv1.StateResponse](
			httpClient, baseURL+localityv1.LocalityServiceClearAllProcedure, opts...),
	}
}

// PreferenceServiceClient is a typed client for PreferenceService.
type PreferenceServiceClient struct {
	GetPreferences *connect.Client[localityv1.Empty, localityv1.PreferencesResponse]
	PutPreferences *connect.Client[localityv1.PutPreferencesRequest, localityv1.PreferencesResponse]
}

func NewPreferenceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PreferenceServiceClient {
	opts = clientOptions(opts)
	return &PreferenceServiceClient{
		GetPreferences: connect.NewClient[localityv1.Empty, localityv1.PreferencesResponse](
			httpClient, baseURL+localityv1.PreferenceServiceGetPreferencesProcedure, opts...),
		PutPreferences: connect.NewClient[localityv1.PutPreferencesRequest, localityv1.PreferencesResponse](
			httpClient, baseURL+localityv1.PreferenceServicePutPreferencesProcedure, opts...),
	}
}
