// Package resolver picks the active city for a session from what has been
// recorded before. It never detects and never fails.
package resolver

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-locality/internal/domain/cachestore"
	"github.com/FACorreiaa/loci-locality/internal/types"
)

// Catalog is the part of the city catalog the resolver needs.
type Catalog interface {
	CityByID(id string) (types.City, bool)
	Default() types.City
}

// Resolution is the chosen city and which rule produced it.
type Resolution struct {
	City   types.City
	Source types.ChangeSource
}

type Resolver struct {
	store   *cachestore.Store
	catalog Catalog
	logger  *slog.Logger
}

func New(store *cachestore.Store, catalog Catalog, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// DetermineCurrentCity applies, first match wins: a manual-mode preference
// with a default city, the last city visited, the catalog default. Cached
// cities unknown to the catalog are skipped.
func (r *Resolver) DetermineCurrentCity(ctx context.Context) Resolution {
	ctx, span := otel.Tracer("LocationResolver").Start(ctx, "DetermineCurrentCity", trace.WithAttributes(
		attribute.String("session.id", r.store.Namespace()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "DetermineCurrentCity"))

	res := r.determine(ctx, l)
	span.SetAttributes(
		attribute.String("city.id", res.City.ID),
		attribute.String("resolution.source", string(res.Source)),
	)
	l.DebugContext(ctx, "Resolved current city",
		slog.String("city", res.City.ID),
		slog.String("source", string(res.Source)))
	return res
}

func (r *Resolver) determine(ctx context.Context, l *slog.Logger) Resolution {
	prefs, ok := cachestore.Get[types.LocationPreferences](ctx, r.store, cachestore.KeyPreferences)
	if ok && prefs.Mode == types.ModeManual && prefs.DefaultCity != nil {
		if c, known := r.catalog.CityByID(prefs.DefaultCity.ID); known {
			return Resolution{City: c, Source: types.SourcePreference}
		}
		l.WarnContext(ctx, "Preferred city no longer in catalog", slog.String("city", prefs.DefaultCity.ID))
	}

	last, ok := cachestore.Get[types.City](ctx, r.store, cachestore.KeyLastCity)
	if ok {
		if c, known := r.catalog.CityByID(last.ID); known {
			return Resolution{City: c, Source: types.SourceLastCity}
		}
		l.WarnContext(ctx, "Last city no longer in catalog", slog.String("city", last.ID))
	}

	return Resolution{City: r.catalog.Default(), Source: types.SourceDefault}
}
