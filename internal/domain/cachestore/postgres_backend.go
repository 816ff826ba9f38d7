package cachestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Backend = (*PostgresBackend)(nil)

// DBTX is the subset of pgxpool.Pool used by the Postgres backends.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend stores values in the locality_cache table. Values are
// kept as text so a corrupt payload round-trips unchanged.
type PostgresBackend struct {
	db     DBTX
	logger *slog.Logger
}

func NewPostgresBackend(db DBTX, logger *slog.Logger) *PostgresBackend {
	return &PostgresBackend{
		db:     db,
		logger: logger,
	}
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := otel.Tracer("CacheRepository").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "locality_cache"),
	))
	defer span.End()

	query, args, err := squirrel.Select("value").
		From("locality_cache").
		Where(squirrel.Eq{"cache_key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build select query: %w", err)
	}

	var value string
	if err := b.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "Key not found")
			return nil, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Select failed")
		return nil, false, fmt.Errorf("failed to read cache key: %w", err)
	}

	span.SetStatus(codes.Ok, "Key found")
	return []byte(value), true, nil
}

func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := otel.Tracer("CacheRepository").Start(ctx, "Set", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "locality_cache"),
	))
	defer span.End()

	query, args, err := squirrel.Insert("locality_cache").
		Columns("cache_key", "value", "updated_at").
		Values(key, string(value), time.Now().UTC()).
		Suffix("ON CONFLICT (cache_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := b.db.Exec(ctx, query, args...); err != nil {
		b.logger.WarnContext(ctx, "Failed to upsert cache key", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upsert failed")
		return fmt.Errorf("failed to write cache key: %w", err)
	}

	span.SetStatus(codes.Ok, "Key written")
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, span := otel.Tracer("CacheRepository").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "locality_cache"),
		attribute.Int("keys.count", len(keys)),
	))
	defer span.End()

	query, args, err := squirrel.Delete("locality_cache").
		Where(squirrel.Eq{"cache_key": keys}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := b.db.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}

	span.SetAttributes(attribute.Int64("rows.affected", tag.RowsAffected()))
	span.SetStatus(codes.Ok, "Keys deleted")
	return nil
}
