package cachestore

import "time"

// Persisted keys for a session's locality data.
const (
	KeyPreferences = "loci_location_preferences"
	KeyLastCity    = "loci_last_city"
	KeyHistory     = "loci_city_history"
	KeyFavorites   = "loci_favorite_cities"
	KeyPromptShown = "loci_location_popup_shown"
)

// RecordTTL is how long preferences and the last city stay valid.
const RecordTTL = 30 * 24 * time.Hour

// LocalityKeys lists every key removed by a full locality reset.
var LocalityKeys = []string{
	KeyPreferences,
	KeyLastCity,
	KeyHistory,
	KeyFavorites,
	KeyPromptShown,
}

// Policy decides how a key is written and when it expires. A zero TTL never
// expires. Un-timestamped keys are stored as the bare JSON value.
type Policy struct {
	Timestamped bool
	TTL         time.Duration
}

// DefaultPolicies returns the policy table for LocalityKeys.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		KeyPreferences: {Timestamped: true, TTL: RecordTTL},
		KeyLastCity:    {Timestamped: true, TTL: RecordTTL},
		KeyHistory:     {Timestamped: false},
		KeyFavorites:   {Timestamped: false},
		KeyPromptShown: {Timestamped: false},
	}
}
