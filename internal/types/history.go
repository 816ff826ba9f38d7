package types

import "time"

// MaxHistoryEntries bounds the visit history and the suggestion list.
const MaxHistoryEntries = 5

// CityHistoryEntry records how often and how recently a city was visited.
type CityHistoryEntry struct {
	City        City      `json:"city"`
	VisitCount  int       `json:"visit_count"`
	LastVisited time.Time `json:"last_visited"`
}

// CachedRecord wraps a persisted value with its write time in epoch millis.
type CachedRecord[T any] struct {
	Value     T     `json:"value"`
	Timestamp int64 `json:"timestamp"`
}

// Suggestions groups the derived city lists shown by the locality picker.
type Suggestions struct {
	Recent      []CityHistoryEntry `json:"recent"`
	MostVisited []CityHistoryEntry `json:"most_visited"`
	Suggested   []City             `json:"suggested"`
}
