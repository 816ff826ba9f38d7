package geolocation

import (
	"context"
	"strconv"
	"strings"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

var _ NetworkLocator = (*HeaderLocator)(nil)

// HeaderLocator reads the location a CDN attached to the request
// (CF-Latitude, CF-Longitude, CF-City, CF-Region).
type HeaderLocator struct {
	catalog CityMatcher
}

func NewHeaderLocator(catalog CityMatcher) *HeaderLocator {
	return &HeaderLocator{catalog: catalog}
}

func (h *HeaderLocator) CityFromNetworkOrigin(ctx context.Context) (types.City, error) {
	headers, ok := HeadersFromContext(ctx)
	if !ok {
		return types.City{}, ErrNoCityMatch
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(headers.Get("CF-Latitude")), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(headers.Get("CF-Longitude")), 64)
	if latErr == nil && lonErr == nil && validCoordinates(lat, lon) {
		if city, ok := h.catalog.NearestCity(lat, lon); ok {
			return city, nil
		}
	}

	place := strings.TrimSpace(headers.Get("CF-City"))
	if region := strings.TrimSpace(headers.Get("CF-Region")); region != "" {
		place += ", " + region
	}
	if place != "" {
		if city, ok := h.catalog.MatchName(place); ok {
			return city, nil
		}
	}
	return types.City{}, ErrNoCityMatch
}
