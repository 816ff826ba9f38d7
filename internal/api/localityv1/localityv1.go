// Package localityv1 holds the wire messages and procedure names of the
// loci.locality.v1 Connect services.
package localityv1

import (
	"github.com/FACorreiaa/loci-locality/internal/types"
)

const (
	LocalityServiceName   = "loci.locality.v1.LocalityService"
	PreferenceServiceName = "loci.locality.v1.PreferenceService"
)

const (
	LocalityServiceGetStateProcedure        = "/" + LocalityServiceName + "/GetState"
	LocalityServiceListCitiesProcedure      = "/" + LocalityServiceName + "/ListCities"
	LocalityServiceSetCityProcedure         = "/" + LocalityServiceName + "/SetCity"
	LocalityServiceSetSearchRadiusProcedure = "/" + LocalityServiceName + "/SetSearchRadius"
	LocalityServiceSetPreferencesProcedure  = "/" + LocalityServiceName + "/SetPreferences"
	LocalityServiceAddFavoriteProcedure     = "/" + LocalityServiceName + "/AddFavorite"
	LocalityServiceRemoveFavoriteProcedure  = "/" + LocalityServiceName + "/RemoveFavorite"
	LocalityServiceToggleFavoriteProcedure  = "/" + LocalityServiceName + "/ToggleFavorite"
	LocalityServiceDetectLocationProcedure  = "/" + LocalityServiceName + "/DetectLocation"
	LocalityServiceResetToDefaultProcedure  = "/" + LocalityServiceName + "/ResetToDefault"
	LocalityServiceSyncWithAPIProcedure     = "/" + LocalityServiceName + "/SyncWithAPI"
	LocalityServiceGetSuggestionsProcedure  = "/" + LocalityServiceName + "/GetSuggestions"
	LocalityServiceGetPromptShownProcedure  = "/" + LocalityServiceName + "/GetPromptShown"
	LocalityServiceMarkPromptShownProcedure = "/" + LocalityServiceName + "/MarkPromptShown"
	LocalityServiceClearAllProcedure        = "/" + LocalityServiceName + "/ClearAll"

	PreferenceServiceGetPreferencesProcedure = "/" + PreferenceServiceName + "/GetPreferences"
	PreferenceServicePutPreferencesProcedure = "/" + PreferenceServiceName + "/PutPreferences"
)

// LocalityServiceProcedures lists every LocalityService procedure. They all
// accept anonymous callers.
var LocalityServiceProcedures = []string{
	LocalityServiceGetStateProcedure,
	LocalityServiceListCitiesProcedure,
	LocalityServiceSetCityProcedure,
	LocalityServiceSetSearchRadiusProcedure,
	LocalityServiceSetPreferencesProcedure,
	LocalityServiceAddFavoriteProcedure,
	LocalityServiceRemoveFavoriteProcedure,
	LocalityServiceToggleFavoriteProcedure,
	LocalityServiceDetectLocationProcedure,
	LocalityServiceResetToDefaultProcedure,
	LocalityServiceSyncWithAPIProcedure,
	LocalityServiceGetSuggestionsProcedure,
	LocalityServiceGetPromptShownProcedure,
	LocalityServiceMarkPromptShownProcedure,
	LocalityServiceClearAllProcedure,
}

// Empty is the request of procedures that take no arguments.
type Empty struct{}

type StateResponse struct {
	State types.LocationState `json:"state"`
}

type ListCitiesResponse struct {
	Cities        []types.City `json:"cities"`
	DefaultCityID string       `json:"default_city_id"`
}

type SetCityRequest struct {
	CityID string `json:"city_id"`
}

type SetSearchRadiusRequest struct {
	RadiusKm int `json:"radius_km"`
}

type SetPreferencesRequest struct {
	Preferences types.LocationPreferences `json:"preferences"`
}

type FavoriteRequest struct {
	CityID string `json:"city_id"`
}

type ToggleFavoriteResponse struct {
	IsFavorite bool                `json:"is_favorite"`
	State      types.LocationState `json:"state"`
}

// DetectLocationRequest optionally carries the device position.
type DetectLocationRequest struct {
	Coordinates *types.Coordinates `json:"coordinates,omitempty"`
}

type SuggestionsResponse struct {
	Suggestions types.Suggestions `json:"suggestions"`
}

type PromptShownResponse struct {
	Shown bool `json:"shown"`
}

type PreferencesResponse struct {
	Preferences types.LocationPreferences `json:"preferences"`
}

type PutPreferencesRequest struct {
	Preferences types.LocationPreferences `json:"preferences"`
}
