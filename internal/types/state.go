package types

import (
	"slices"
	"time"
)

// LocationState is the single in-memory view of a session's locality.
type LocationState struct {
	CurrentCity  *City               `json:"current_city"`
	SearchRadius int                 `json:"search_radius"`
	Loading      bool                `json:"loading"`
	Error        string              `json:"error,omitempty"`
	IsDetected   bool                `json:"is_detected"`
	Preferences  LocationPreferences `json:"preferences"`
	History      []CityHistoryEntry  `json:"history"`
	Favorites    []City              `json:"favorites"`
}

// Clone returns a deep copy safe to hand to readers.
func (s LocationState) Clone() LocationState {
	out := s
	if s.CurrentCity != nil {
		c := *s.CurrentCity
		out.CurrentCity = &c
	}
	out.Preferences = s.Preferences.Clone()
	out.History = slices.Clone(s.History)
	out.Favorites = slices.Clone(s.Favorites)
	return out
}

// ChangeSource says why the current city or radius changed.
type ChangeSource string

const (
	SourcePreference ChangeSource = "preference"
	SourceLastCity   ChangeSource = "last_city"
	SourceDefault    ChangeSource = "default"
	SourceDetected   ChangeSource = "detected"
	SourceManual     ChangeSource = "manual"
	SourceRemote     ChangeSource = "remote"
	SourceReset      ChangeSource = "reset"
)

// LocationChangedEvent is published whenever a session's city or radius changes.
type LocationChangedEvent struct {
	SessionID    string       `json:"session_id"`
	UserID       string       `json:"user_id,omitempty"`
	City         City         `json:"city"`
	SearchRadius int          `json:"search_radius"`
	Source       ChangeSource `json:"source"`
	OccurredAt   time.Time    `json:"occurred_at"`
}
