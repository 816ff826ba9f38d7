package types

import (
	"fmt"
	"slices"
)

// SearchMode controls how the active city is chosen at session start.
type SearchMode string

const (
	// ModeManual always uses LocationPreferences.DefaultCity.
	ModeManual SearchMode = "manual"
	// ModeAsk prompts or detects on every session.
	ModeAsk SearchMode = "ask"
)

// DefaultSearchRadiusKm is used when no preference has been recorded.
const DefaultSearchRadiusKm = 25

// AllowedRadii lists the search radii, in kilometers, a user may pick.
var AllowedRadii = []int{5, 10, 25, 50, 100}

// IsAllowedRadius reports whether km is one of AllowedRadii.
func IsAllowedRadius(km int) bool {
	return slices.Contains(AllowedRadii, km)
}

// LocationPreferences is the per-user locality preference record. It is the
// unit of local caching and of remote synchronization.
type LocationPreferences struct {
	// DefaultCity is nil until the user completes a selection flow.
	DefaultCity        *City      `json:"default_city"`
	SearchRadius       int        `json:"search_radius"`
	Mode               SearchMode `json:"mode"`
	UseCurrentLocation bool       `json:"use_current_location"`
}

// DefaultPreferences returns the documented defaults for a user that never
// recorded a choice.
func DefaultPreferences() LocationPreferences {
	return LocationPreferences{
		DefaultCity:        nil,
		SearchRadius:       DefaultSearchRadiusKm,
		Mode:               ModeManual,
		UseCurrentLocation: false,
	}
}

// Validate checks the record against the allowed radii and modes.
func (p LocationPreferences) Validate() error {
	if !IsAllowedRadius(p.SearchRadius) {
		return fmt.Errorf("%w: %d km", ErrInvalidRadius, p.SearchRadius)
	}
	switch p.Mode {
	case ModeManual, ModeAsk:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrBadRequest, p.Mode)
	}
	return nil
}

// Clone returns a copy that shares no pointers with p.
func (p LocationPreferences) Clone() LocationPreferences {
	out := p
	if p.DefaultCity != nil {
		c := *p.DefaultCity
		out.DefaultCity = &c
	}
	return out
}
