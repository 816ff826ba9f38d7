package geolocation

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-locality/internal/domain/catalog"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

type fakeCityReader struct {
	records map[string]*geoip2.City
}

func (f fakeCityReader) City(ip net.IP) (*geoip2.City, error) {
	if rec, ok := f.records[ip.String()]; ok {
		return rec, nil
	}
	return &geoip2.City{}, nil
}

func TestGeoIPLocator(t *testing.T) {
	byCoords := &geoip2.City{}
	byCoords.Location.Latitude = 41.15
	byCoords.Location.Longitude = -8.61

	byName := &geoip2.City{}
	byName.City.Names = map[string]string{"en": "Milan"}

	g := &GeoIPLocator{
		db: fakeCityReader{records: map[string]*geoip2.City{
			"203.0.113.7":  byCoords,
			"198.51.100.9": byName,
		}},
		catalog: catalog.Builtin(),
		logger:  newTestLogger(),
	}

	t.Run("coordinates", func(t *testing.T) {
		city, err := g.CityFromNetworkOrigin(WithClientIP(context.Background(), "203.0.113.7"))
		require.NoError(t, err)
		assert.Equal(t, "porto", city.ID)
	})

	t.Run("name fallback", func(t *testing.T) {
		city, err := g.CityFromNetworkOrigin(WithClientIP(context.Background(), "198.51.100.9"))
		require.NoError(t, err)
		assert.Equal(t, "milan", city.ID)
	})

	t.Run("empty record", func(t *testing.T) {
		_, err := g.CityFromNetworkOrigin(WithClientIP(context.Background(), "192.0.2.1"))
		assert.ErrorIs(t, err, ErrNoCityMatch)
	})

	t.Run("no ip", func(t *testing.T) {
		_, err := g.CityFromNetworkOrigin(context.Background())
		assert.ErrorIs(t, err, ErrNoClientIP)
	})

	t.Run("bad ip", func(t *testing.T) {
		_, err := g.CityFromNetworkOrigin(WithClientIP(context.Background(), "not-an-ip"))
		assert.ErrorIs(t, err, ErrNoClientIP)
	})
}

func TestHeaderLocator(t *testing.T) {
	h := NewHeaderLocator(catalog.Builtin())

	headers := http.Header{}
	headers.Set("CF-Latitude", "48.85")
	headers.Set("CF-Longitude", "2.35")
	city, err := h.CityFromNetworkOrigin(WithHeaders(context.Background(), headers))
	require.NoError(t, err)
	assert.Equal(t, "paris", city.ID)

	headers = http.Header{}
	headers.Set("CF-City", "Barcelona")
	headers.Set("CF-Region", "Catalonia")
	city, err = h.CityFromNetworkOrigin(WithHeaders(context.Background(), headers))
	require.NoError(t, err)
	assert.Equal(t, "barcelona", city.ID)

	_, err = h.CityFromNetworkOrigin(context.Background())
	assert.ErrorIs(t, err, ErrNoCityMatch)
}

func TestLocators_FirstMatchWins(t *testing.T) {
	first := &stubNetwork{err: ErrNoCityMatch}
	second := &stubNetwork{city: types.City{ID: "vienna"}}
	third := &stubNetwork{city: types.City{ID: "prague"}}

	city, err := Locators{first, second, third}.CityFromNetworkOrigin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vienna", city.ID)
	assert.Zero(t, third.calls)

	_, err = Locators{first}.CityFromNetworkOrigin(context.Background())
	assert.ErrorIs(t, err, ErrNoCityMatch)

	_, err = Locators{}.CityFromNetworkOrigin(context.Background())
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestCachedLocator(t *testing.T) {
	next := &stubNetwork{city: types.City{ID: "berlin"}}
	c := NewCachedLocator(next, time.Hour)

	ctx := WithClientIP(context.Background(), "203.0.113.10")
	for range 3 {
		city, err := c.CityFromNetworkOrigin(ctx)
		require.NoError(t, err)
		assert.Equal(t, "berlin", city.ID)
	}
	assert.Equal(t, 1, next.calls)

	_, err := c.CityFromNetworkOrigin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls, "lookups without an ip are not memoized")

	failing := &stubNetwork{err: ErrNoCityMatch}
	c = NewCachedLocator(failing, time.Hour)
	_, _ = c.CityFromNetworkOrigin(ctx)
	_, _ = c.CityFromNetworkOrigin(ctx)
	assert.Equal(t, 2, failing.calls)
}

func TestClientIPFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "192.0.2.50:41234"
	r.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")

	assert.Equal(t, "192.0.2.50", ClientIPFromRequest(r, false))
	assert.Equal(t, "203.0.113.1", ClientIPFromRequest(r, true))

	r.Header.Del("X-Forwarded-For")
	r.Header.Set("CF-Connecting-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIPFromRequest(r, true))
}
