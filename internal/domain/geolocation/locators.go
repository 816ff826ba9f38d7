package geolocation

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

// Locators tries each locator in order and returns the first match.
type Locators []NetworkLocator

func (ls Locators) CityFromNetworkOrigin(ctx context.Context) (types.City, error) {
	var errs []error
	for _, l := range ls {
		city, err := l.CityFromNetworkOrigin(ctx)
		if err == nil {
			return city, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return types.City{}, ErrNoStrategy
	}
	return types.City{}, errors.Join(errs...)
}

var _ NetworkLocator = (*CachedLocator)(nil)

// CachedLocator memoizes successful lookups per client IP.
type CachedLocator struct {
	next  NetworkLocator
	cache *cache.Cache
}

// NewCachedLocator wraps next with a cache whose entries live for ttl.
func NewCachedLocator(next NetworkLocator, ttl time.Duration) *CachedLocator {
	return &CachedLocator{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedLocator) CityFromNetworkOrigin(ctx context.Context) (types.City, error) {
	ip, ok := ClientIPFromContext(ctx)
	if !ok {
		return c.next.CityFromNetworkOrigin(ctx)
	}
	if v, found := c.cache.Get(ip); found {
		return v.(types.City), nil
	}

	city, err := c.next.CityFromNetworkOrigin(ctx)
	if err != nil {
		return types.City{}, err
	}
	c.cache.Set(ip, city, cache.DefaultExpiration)
	return city, nil
}
