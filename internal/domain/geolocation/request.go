package geolocation

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

type ctxKey int

const (
	coordinatesKey ctxKey = iota
	clientIPKey
	headersKey
)

// WithCoordinates attaches device coordinates reported by the client.
func WithCoordinates(ctx context.Context, c types.Coordinates) context.Context {
	return context.WithValue(ctx, coordinatesKey, c)
}

func CoordinatesFromContext(ctx context.Context) (types.Coordinates, bool) {
	c, ok := ctx.Value(coordinatesKey).(types.Coordinates)
	return c, ok
}

// WithClientIP attaches the caller's IP address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey).(string)
	return ip, ok && ip != ""
}

// WithHeaders attaches the inbound request headers for CDN lookups.
func WithHeaders(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, headersKey, h)
}

func HeadersFromContext(ctx context.Context) (http.Header, bool) {
	h, ok := ctx.Value(headersKey).(http.Header)
	return h, ok && h != nil
}

// ClientIPFromRequest extracts the client IP. Proxy headers are only
// honoured when trustProxy is set.
func ClientIPFromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if cip := r.Header.Get("CF-Connecting-IP"); cip != "" {
			return cip
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ContextCoordinateProvider reads coordinates attached with WithCoordinates.
type ContextCoordinateProvider struct{}

func (ContextCoordinateProvider) CurrentPosition(ctx context.Context) (types.Coordinates, error) {
	c, ok := CoordinatesFromContext(ctx)
	if !ok {
		return types.Coordinates{}, ErrPositionUnavailable
	}
	if !validCoordinates(c.Latitude, c.Longitude) {
		return types.Coordinates{}, fmt.Errorf("%w: invalid coordinates %v,%v", ErrPositionUnavailable, c.Latitude, c.Longitude)
	}
	return c, nil
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// RequestOrigin is HTTP middleware that attaches the client IP and request
// headers so network locators can run from inside RPC handlers.
func RequestOrigin(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithClientIP(r.Context(), ClientIPFromRequest(r, trustProxy))
			ctx = WithHeaders(ctx, r.Header.Clone())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
