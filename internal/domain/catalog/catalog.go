// Package catalog holds the static list of localities the application knows
// about and answers nearest-city and lookup queries against it.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/golang/geo/s2"
	a "github.com/petar-dambovaliev/aho-corasick"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

const earthRadiusKm = 6371.0088

// Catalog is a read-only, in-memory city catalog. It is safe for concurrent use.
type Catalog struct {
	cities        []types.City
	points        []s2.LatLng
	byID          map[string]int
	byName        map[string]int
	matcher       a.AhoCorasick
	defaultID     string
	maxDistanceKm float64
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithMaxDistance makes NearestCity report no match for coordinates farther
// than km from every catalog city. Zero disables the cutoff.
func WithMaxDistance(km float64) Option {
	return func(c *Catalog) {
		c.maxDistanceKm = km
	}
}

// New builds a catalog. IDs must be unique and defaultID must be present.
func New(cities []types.City, defaultID string, opts ...Option) (*Catalog, error) {
	if len(cities) == 0 {
		return nil, fmt.Errorf("catalog requires at least one city")
	}

	c := &Catalog{
		cities:    make([]types.City, len(cities)),
		points:    make([]s2.LatLng, len(cities)),
		byID:      make(map[string]int, len(cities)),
		byName:    make(map[string]int, len(cities)),
		defaultID: defaultID,
	}
	copy(c.cities, cities)

	names := make([]string, 0, len(cities))
	for i, city := range c.cities {
		if city.ID == "" {
			return nil, fmt.Errorf("city at index %d has no id", i)
		}
		if _, dup := c.byID[city.ID]; dup {
			return nil, fmt.Errorf("duplicate city id %q", city.ID)
		}
		c.byID[city.ID] = i
		c.points[i] = s2.LatLngFromDegrees(city.Latitude, city.Longitude)

		name := strings.ToLower(city.Name)
		if _, seen := c.byName[name]; !seen && name != "" {
			c.byName[name] = i
			names = append(names, name)
		}
	}

	if _, ok := c.byID[defaultID]; !ok {
		return nil, fmt.Errorf("default city %q is not in the catalog", defaultID)
	}

	builder := a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
	})
	c.matcher = builder.Build(names)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Builtin returns the catalog compiled into the binary.
func Builtin(opts ...Option) *Catalog {
	c, err := New(builtinCities, builtinDefaultID, opts...)
	if err != nil {
		panic(fmt.Sprintf("builtin catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a JSON array of cities from path.
func LoadFile(path, defaultID string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cities []types.City
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return New(cities, defaultID, opts...)
}

// All returns every city in catalog order.
func (c *Catalog) All() []types.City {
	out := make([]types.City, len(c.cities))
	copy(out, c.cities)
	return out
}

// Default returns the city used when nothing was ever recorded.
func (c *Catalog) Default() types.City {
	return c.cities[c.byID[c.defaultID]]
}

// CityByID looks a city up by its stable identifier.
func (c *Catalog) CityByID(id string) (types.City, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.City{}, false
	}
	return c.cities[i], true
}

// Contains reports whether city is a catalog entry.
func (c *Catalog) Contains(city types.City) bool {
	_, ok := c.byID[city.ID]
	return ok
}

// NearestCity returns the catalog city closest to the given point by
// great-circle distance. Ties go to the lexically smaller id.
func (c *Catalog) NearestCity(lat, lon float64) (types.City, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return types.City{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return types.City{}, false
	}

	query := s2.LatLngFromDegrees(lat, lon)
	best := -1
	bestDist := math.MaxFloat64
	for i, p := range c.points {
		dist := float64(query.Distance(p))
		if dist < bestDist || (dist == bestDist && c.cities[i].ID < c.cities[best].ID) {
			best = i
			bestDist = dist
		}
	}

	if c.maxDistanceKm > 0 && bestDist*earthRadiusKm > c.maxDistanceKm {
		return types.City{}, false
	}
	return c.cities[best], true
}

// DistanceKm returns the great-circle distance between two cities.
func DistanceKm(from, to types.City) float64 {
	p := s2.LatLngFromDegrees(from.Latitude, from.Longitude)
	q := s2.LatLngFromDegrees(to.Latitude, to.Longitude)
	return float64(p.Distance(q)) * earthRadiusKm
}

// MatchName finds a catalog city named inside free-form text such as
// "Lyon, Auvergne-Rhône-Alpes, France". The longest name wins; equal lengths
// go to the earliest occurrence.
func (c *Catalog) MatchName(text string) (types.City, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return types.City{}, false
	}

	matches := c.matcher.FindAll(text)
	if len(matches) == 0 {
		return types.City{}, false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		li := matches[i].End() - matches[i].Start()
		lj := matches[j].End() - matches[j].Start()
		if li != lj {
			return li > lj
		}
		return matches[i].Start() < matches[j].Start()
	})

	for _, m := range matches {
		if i, ok := c.byName[text[m.Start():m.End()]]; ok {
			return c.cities[i], true
		}
	}
	return types.City{}, false
}
