package geolocation

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

var _ NetworkLocator = (*GeoIPLocator)(nil)

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// GeoIPLocator resolves the client IP against a MaxMind City database.
type GeoIPLocator struct {
	db      cityReader
	closer  func() error
	catalog CityMatcher
	logger  *slog.Logger
}

// NewGeoIPLocator opens a GeoLite2-City or GeoIP2-City database.
func NewGeoIPLocator(dbPath string, catalog CityMatcher, logger *slog.Logger) (*GeoIPLocator, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &GeoIPLocator{
		db:      db,
		closer:  db.Close,
		catalog: catalog,
		logger:  logger,
	}, nil
}

func (g *GeoIPLocator) Close() error {
	if g.closer != nil {
		return g.closer()
	}
	return nil
}

// CityFromNetworkOrigin prefers the nearest catalog city to the database
// coordinates and falls back to matching the reported place names.
func (g *GeoIPLocator) CityFromNetworkOrigin(ctx context.Context) (types.City, error) {
	raw, ok := ClientIPFromContext(ctx)
	if !ok {
		return types.City{}, ErrNoClientIP
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return types.City{}, fmt.Errorf("%w: unparsable address %q", ErrNoClientIP, raw)
	}

	record, err := g.db.City(ip)
	if err != nil {
		return types.City{}, fmt.Errorf("geoip lookup failed: %w", err)
	}

	lat, lon := record.Location.Latitude, record.Location.Longitude
	if lat != 0 || lon != 0 {
		if city, ok := g.catalog.NearestCity(lat, lon); ok {
			return city, nil
		}
	}

	names := make([]string, 0, 2)
	if name, ok := record.City.Names["en"]; ok {
		names = append(names, name)
	}
	if len(record.Subdivisions) > 0 {
		if name, ok := record.Subdivisions[0].Names["en"]; ok {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		if city, ok := g.catalog.MatchName(strings.Join(names, ", ")); ok {
			return city, nil
		}
	}

	g.logger.DebugContext(ctx, "GeoIP record matched no catalog city",
		slog.String("ip", raw), slog.Any("names", names))
	return types.City{}, ErrNoCityMatch
}
