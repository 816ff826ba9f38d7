package prefsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/loci-locality/internal/types"
)

var _ RemoteStore = (*PostgresRemoteStore)(nil)

// DBTX is the subset of pgxpool.Pool the store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRemoteStore keeps account preferences in user_location_preferences.
type PostgresRemoteStore struct {
	db     DBTX
	logger *slog.Logger
	now    func() time.Time
}

func NewPostgresRemoteStore(db DBTX, logger *slog.Logger) *PostgresRemoteStore {
	return &PostgresRemoteStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *PostgresRemoteStore) Get(ctx context.Context, userID string) (types.LocationPreferences, error) {
	ctx, span := otel.Tracer("PreferenceRepository").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "user_location_preferences"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	id, err := uuid.Parse(userID)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid user id")
		return types.LocationPreferences{}, fmt.Errorf("%w: invalid user id %q", types.ErrBadRequest, userID)
	}

	query, args, err := squirrel.Select("default_city", "search_radius_km", "mode", "use_current_location").
		From("user_location_preferences").
		Where(squirrel.Eq{"user_id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return types.LocationPreferences{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var (
		defaultCity []byte
		prefs       types.LocationPreferences
		mode        string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(&defaultCity, &prefs.SearchRadius, &mode, &prefs.UseCurrentLocation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "No record")
			return types.LocationPreferences{}, types.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Select failed")
		return types.LocationPreferences{}, fmt.Errorf("failed to fetch preferences: %w", err)
	}
	prefs.Mode = types.SearchMode(mode)

	if len(defaultCity) > 0 && string(defaultCity) != "null" {
		var c types.City
		if err := json.Unmarshal(defaultCity, &c); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid default_city")
			return types.LocationPreferences{}, fmt.Errorf("failed to decode default city: %w", err)
		}
		prefs.DefaultCity = &c
	}

	span.SetStatus(codes.Ok, "Preferences fetched")
	return prefs, nil
}

func (r *PostgresRemoteStore) Put(ctx context.Context, userID string, prefs types.LocationPreferences) error {
	ctx, span := otel.Tracer("PreferenceRepository").Start(ctx, "Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "user_location_preferences"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	id, err := uuid.Parse(userID)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid user id")
		return fmt.Errorf("%w: invalid user id %q", types.ErrBadRequest, userID)
	}
	if err := prefs.Validate(); err != nil {
		span.SetStatus(codes.Error, "Invalid preferences")
		return err
	}

	var defaultCity []byte
	if prefs.DefaultCity != nil {
		defaultCity, err = json.Marshal(prefs.DefaultCity)
		if err != nil {
			return fmt.Errorf("failed to encode default city: %w", err)
		}
	}

	query, args, err := squirrel.Insert("user_location_preferences").
		Columns("user_id", "default_city", "search_radius_km", "mode", "use_current_location", "updated_at").
		Values(id, defaultCity, prefs.SearchRadius, string(prefs.Mode), prefs.UseCurrentLocation, r.now().UTC()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			default_city = EXCLUDED.default_city,
			search_radius_km = EXCLUDED.search_radius_km,
			mode = EXCLUDED.mode,
			use_current_location = EXCLUDED.use_current_location,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert preferences",
			slog.String("user_id", userID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upsert failed")
		return fmt.Errorf("failed to store preferences: %w", err)
	}

	span.SetStatus(codes.Ok, "Preferences stored")
	return nil
}
