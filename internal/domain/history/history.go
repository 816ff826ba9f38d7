// Package history keeps a session's bounded visit history and its favorite
// cities, and derives suggestions from both.
package history

import (
	"fmt"
	"slices"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

// CityLookup resolves catalog cities by id.
type CityLookup interface {
	CityByID(id string) (types.City, bool)
}

// Engine is not safe for concurrent use; the owning coordinator serializes
// access.
type Engine struct {
	cities    CityLookup
	clock     clockwork.Clock
	entries   []types.CityHistoryEntry // most recent first
	favorites []types.City             // insertion order
}

func NewEngine(cities CityLookup, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		cities: cities,
		clock:  clock,
	}
}

func (e *Engine) resolve(city types.City) (types.City, error) {
	c, ok := e.cities.CityByID(city.ID)
	if !ok {
		return types.City{}, fmt.Errorf("%w: %w: %q", types.ErrInvariantViolation, types.ErrUnknownCity, city.ID)
	}
	return c, nil
}

// RecordVisit bumps the visit count of city, or inserts it with a count of
// one, and keeps only the MaxHistoryEntries most recent entries.
func (e *Engine) RecordVisit(city types.City) error {
	c, err := e.resolve(city)
	if err != nil {
		return err
	}

	entry := types.CityHistoryEntry{City: c, VisitCount: 1, LastVisited: e.clock.Now()}
	if i := e.indexOf(c.ID); i >= 0 {
		entry.VisitCount = e.entries[i].VisitCount + 1
		e.entries = slices.Delete(e.entries, i, i+1)
	}

	e.entries = slices.Insert(e.entries, 0, entry)
	if len(e.entries) > types.MaxHistoryEntries {
		e.entries = e.entries[:types.MaxHistoryEntries]
	}
	return nil
}

func (e *Engine) indexOf(id string) int {
	return slices.IndexFunc(e.entries, func(h types.CityHistoryEntry) bool {
		return h.City.ID == id
	})
}

// AddFavorite is idempotent.
func (e *Engine) AddFavorite(city types.City) error {
	c, err := e.resolve(city)
	if err != nil {
		return err
	}
	if e.IsFavorite(c.ID) {
		return nil
	}
	e.favorites = append(e.favorites, c)
	return nil
}

// RemoveFavorite reports whether id was a favorite.
func (e *Engine) RemoveFavorite(id string) bool {
	n := len(e.favorites)
	e.favorites = slices.DeleteFunc(e.favorites, func(c types.City) bool {
		return c.ID == id
	})
	return len(e.favorites) != n
}

func (e *Engine) IsFavorite(id string) bool {
	return slices.ContainsFunc(e.favorites, func(c types.City) bool {
		return c.ID == id
	})
}

// ToggleFavorite adds city when absent and removes it otherwise. It reports
// whether the city is a favorite afterwards.
func (e *Engine) ToggleFavorite(city types.City) (bool, error) {
	if e.RemoveFavorite(city.ID) {
		return false, nil
	}
	if err := e.AddFavorite(city); err != nil {
		return false, err
	}
	return true, nil
}

// RecentCities returns history ordered by last visit, newest first.
func (e *Engine) RecentCities() []types.CityHistoryEntry {
	return slices.Clone(e.entries)
}

// MostVisited orders history by visit count, ties broken by recency.
func (e *Engine) MostVisited() []types.CityHistoryEntry {
	out := slices.Clone(e.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VisitCount != out[j].VisitCount {
			return out[i].VisitCount > out[j].VisitCount
		}
		return out[i].LastVisited.After(out[j].LastVisited)
	})
	return out
}

// SuggestedCities lists favorites first, then recently visited cities that
// are not favorites, capped at MaxHistoryEntries.
func (e *Engine) SuggestedCities() []types.City {
	out := make([]types.City, 0, types.MaxHistoryEntries)
	seen := make(map[string]struct{}, types.MaxHistoryEntries)

	add := func(c types.City) {
		if len(out) == types.MaxHistoryEntries {
			return
		}
		if _, dup := seen[c.ID]; dup {
			return
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}

	for _, c := range e.favorites {
		add(c)
	}
	for _, h := range e.entries {
		add(h.City)
	}
	return out
}

// Suggestions bundles the derived lists.
func (e *Engine) Suggestions() types.Suggestions {
	return types.Suggestions{
		Recent:      e.RecentCities(),
		MostVisited: e.MostVisited(),
		Suggested:   e.SuggestedCities(),
	}
}

// Entries returns the history in storage order.
func (e *Engine) Entries() []types.CityHistoryEntry {
	return slices.Clone(e.entries)
}

func (e *Engine) Favorites() []types.City {
	return slices.Clone(e.favorites)
}

// Restore loads persisted collections, dropping unknown cities and
// re-establishing ordering, uniqueness and the size bound. It reports
// whether the input had to be repaired.
func (e *Engine) Restore(entries []types.CityHistoryEntry, favorites []types.City) bool {
	repaired := false

	byID := make(map[string]types.CityHistoryEntry, len(entries))
	for _, h := range entries {
		c, ok := e.cities.CityByID(h.City.ID)
		if !ok {
			repaired = true
			continue
		}
		h.City = c
		if h.VisitCount < 1 {
			h.VisitCount = 1
			repaired = true
		}
		if prev, dup := byID[c.ID]; dup {
			repaired = true
			if prev.LastVisited.After(h.LastVisited) {
				h.LastVisited = prev.LastVisited
			}
			h.VisitCount = max(h.VisitCount, prev.VisitCount)
		}
		byID[c.ID] = h
	}

	restored := make([]types.CityHistoryEntry, 0, len(byID))
	for _, h := range byID {
		restored = append(restored, h)
	}
	sort.SliceStable(restored, func(i, j int) bool {
		if !restored[i].LastVisited.Equal(restored[j].LastVisited) {
			return restored[i].LastVisited.After(restored[j].LastVisited)
		}
		return restored[i].City.ID < restored[j].City.ID
	})
	if len(restored) > types.MaxHistoryEntries {
		restored = restored[:types.MaxHistoryEntries]
		repaired = true
	}
	if !repaired && !sameOrder(entries, restored) {
		repaired = true
	}
	e.entries = restored

	e.favorites = e.favorites[:0]
	for _, f := range favorites {
		c, ok := e.cities.CityByID(f.ID)
		if !ok || e.IsFavorite(c.ID) {
			repaired = true
			continue
		}
		e.favorites = append(e.favorites, c)
	}

	return repaired
}

func sameOrder(a, b []types.CityHistoryEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].City.ID != b[i].City.ID {
			return false
		}
	}
	return true
}

// ClearHistory drops visit history but keeps favorites.
func (e *Engine) ClearHistory() {
	e.entries = nil
}

// Clear drops history and favorites.
func (e *Engine) Clear() {
	e.entries = nil
	e.favorites = nil
}
