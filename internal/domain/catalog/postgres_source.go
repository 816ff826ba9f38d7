package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

// Querier is the subset of pgxpool.Pool used to read the catalog table.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadPostgres builds a catalog from the locality_cities table. An empty
// table yields the builtin catalog.
func LoadPostgres(ctx context.Context, db Querier, defaultID string, logger *slog.Logger, opts ...Option) (*Catalog, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "LoadPostgres")
	defer span.End()

	l := logger.With(slog.String("method", "LoadPostgres"))

	query, args, err := squirrel.Select("id", "name", "COALESCE(region, '')", "latitude", "longitude").
		From("locality_cities").
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query catalog cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query catalog cities: %w", err)
	}
	defer rows.Close()

	var cities []types.City
	for rows.Next() {
		var c types.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Region, &c.Latitude, &c.Longitude); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan city row: %w", err)
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating city rows: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(cities)))
	if len(cities) == 0 {
		l.WarnContext(ctx, "Catalog table is empty, using builtin cities")
		span.SetStatus(codes.Ok, "Builtin catalog")
		return Builtin(opts...), nil
	}

	c, err := New(cities, defaultID, opts...)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid catalog")
		return nil, err
	}
	l.InfoContext(ctx, "Catalog loaded", slog.Int("count", len(cities)))
	span.SetStatus(codes.Ok, "Catalog loaded")
	return c, nil
}
