// Package geolocation detects a session's city from device coordinates,
// falling back to the network origin of the request.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

var (
	ErrPositionUnavailable = errors.New("device position unavailable")
	ErrNoClientIP          = errors.New("client ip unavailable")
	ErrNoCityMatch         = errors.New("no catalog city matches the location")
	ErrNoStrategy          = errors.New("no detection strategy configured")
)

// CoordinateProvider supplies the device's position.
type CoordinateProvider interface {
	CurrentPosition(ctx context.Context) (types.Coordinates, error)
}

// NetworkLocator maps the request's network origin to a catalog city.
type NetworkLocator interface {
	CityFromNetworkOrigin(ctx context.Context) (types.City, error)
}

// Catalog is the part of the city catalog detection relies on.
type Catalog interface {
	NearestCity(lat, lon float64) (types.City, bool)
	CityByID(id string) (types.City, bool)
}

// CityMatcher additionally matches free-text place names.
type CityMatcher interface {
	Catalog
	MatchName(text string) (types.City, bool)
}

// Detector runs the device strategy, then the network strategy.
type Detector struct {
	catalog Catalog
	coords  CoordinateProvider
	network NetworkLocator
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

type DetectorOption func(*Detector)

// WithTimeout bounds a whole Detect call.
func WithTimeout(d time.Duration) DetectorOption {
	return func(det *Detector) {
		det.timeout = d
	}
}

func WithMetrics(m *observability.Metrics) DetectorOption {
	return func(det *Detector) {
		det.metrics = m
	}
}

// NewDetector builds a Detector. Either strategy may be nil.
func NewDetector(catalog Catalog, coords CoordinateProvider, network NetworkLocator, logger *slog.Logger, opts ...DetectorOption) *Detector {
	d := &Detector{
		catalog: catalog,
		coords:  coords,
		network: network,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns a catalog city or a *types.DetectionError listing why each
// strategy failed. It never falls back to a default city.
func (d *Detector) Detect(ctx context.Context) (types.City, error) {
	ctx, span := otel.Tracer("GeolocationDetector").Start(ctx, "Detect", trace.WithAttributes(
		attribute.Bool("strategy.device", d.coords != nil),
		attribute.Bool("strategy.network", d.network != nil),
	))
	defer span.End()

	l := d.logger.With(slog.String("method", "Detect"))

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if d.metrics != nil {
			d.metrics.DetectionDuration.Observe(time.Since(start).Seconds())
		}
	}()

	var causes []error

	if d.coords != nil {
		city, err := d.fromDevice(ctx)
		if err == nil {
			d.record("device", "success")
			span.SetAttributes(attribute.String("city.id", city.ID), attribute.String("detection.strategy", "device"))
			span.SetStatus(codes.Ok, "Detected from device position")
			l.InfoContext(ctx, "Detected city from device position", slog.String("city", city.ID))
			return city, nil
		}
		d.record("device", "error")
		l.DebugContext(ctx, "Device detection failed", slog.Any("error", err))
		causes = append(causes, fmt.Errorf("device: %w", err))
	}

	if err := ctx.Err(); err != nil {
		causes = append(causes, err)
		return d.fail(ctx, span, l, causes)
	}

	if d.network != nil {
		city, err := d.fromNetwork(ctx)
		if err == nil {
			d.record("network", "success")
			span.SetAttributes(attribute.String("city.id", city.ID), attribute.String("detection.strategy", "network"))
			span.SetStatus(codes.Ok, "Detected from network origin")
			l.InfoContext(ctx, "Detected city from network origin", slog.String("city", city.ID))
			return city, nil
		}
		d.record("network", "error")
		l.DebugContext(ctx, "Network detection failed", slog.Any("error", err))
		causes = append(causes, fmt.Errorf("network: %w", err))
	}

	if len(causes) == 0 {
		causes = append(causes, ErrNoStrategy)
	}
	return d.fail(ctx, span, l, causes)
}

func (d *Detector) fromDevice(ctx context.Context) (types.City, error) {
	pos, err := d.coords.CurrentPosition(ctx)
	if err != nil {
		return types.City{}, err
	}
	city, ok := d.catalog.NearestCity(pos.Latitude, pos.Longitude)
	if !ok {
		return types.City{}, fmt.Errorf("%w: %.4f,%.4f", ErrNoCityMatch, pos.Latitude, pos.Longitude)
	}
	return city, nil
}

func (d *Detector) fromNetwork(ctx context.Context) (types.City, error) {
	city, err := d.network.CityFromNetworkOrigin(ctx)
	if err != nil {
		return types.City{}, err
	}
	c, ok := d.catalog.CityByID(city.ID)
	if !ok {
		return types.City{}, fmt.Errorf("%w: locator returned %q", ErrNoCityMatch, city.ID)
	}
	return c, nil
}

func (d *Detector) fail(ctx context.Context, span trace.Span, l *slog.Logger, causes []error) (types.City, error) {
	err := &types.DetectionError{Causes: causes}
	span.RecordError(err)
	span.SetStatus(codes.Error, "Detection failed")
	l.WarnContext(ctx, "Location detection failed", slog.Any("error", err))
	return types.City{}, err
}

func (d *Detector) record(strategy, outcome string) {
	if d.metrics != nil {
		d.metrics.Detections.WithLabelValues(strategy, outcome).Inc()
	}
}
