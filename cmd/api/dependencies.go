package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"

	"github.com/FACorreiaa/loci-locality/internal/domain/cachestore"
	"github.com/FACorreiaa/loci-locality/internal/domain/catalog"
	"github.com/FACorreiaa/loci-locality/internal/domain/geolocation"
	"github.com/FACorreiaa/loci-locality/internal/domain/locality"
	"github.com/FACorreiaa/loci-locality/internal/domain/locality/handler"
	"github.com/FACorreiaa/loci-locality/internal/domain/prefsync"
	"github.com/FACorreiaa/loci-locality/internal/events"
	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/pkg/config"
	"github.com/FACorreiaa/loci-locality/pkg/db"
	"github.com/FACorreiaa/loci-locality/pkg/interceptors"
	"github.com/FACorreiaa/loci-locality/pkg/session"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *observability.Metrics

	Catalog      *catalog.Catalog
	Backend      cachestore.Backend
	Detector     *geolocation.Detector
	Publisher    events.Publisher
	AccountStore prefsync.RemoteStore
	SyncStore    prefsync.RemoteStore
	Sessions     *locality.Registry
	SessionStore sessions.Store

	geoip *geolocation.GeoIPLocator

	// Handlers
	LocalityHandler   *handler.LocalityHandler
	PreferenceHandler *handler.PreferenceHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	if cfg.Locality.Backend == "postgres" {
		if err := deps.initDatabase(); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	if err := deps.initStorage(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initStorage picks the cache backend and the account preference stores.
func (d *Dependencies) initStorage() error {
	if d.DB != nil {
		d.Backend = cachestore.NewPostgresBackend(d.DB.Pool, d.Logger)
		d.AccountStore = prefsync.NewPostgresRemoteStore(d.DB.Pool, d.Logger)
	} else {
		memory := cachestore.NewMemoryBackend()
		d.Backend = memory
		d.AccountStore = prefsync.NewBackendRemoteStore(memory)
	}

	d.SyncStore = d.AccountStore
	if url := d.Config.Locality.RemoteURL; url != "" {
		secret := []byte(d.Config.Auth.JWTSecret)
		if len(secret) == 0 {
			return fmt.Errorf("jwt secret is required to call the remote preference service")
		}
		ttl := d.Config.Auth.ServiceTokenTTL
		tokens := func(_ context.Context, userID string) (string, error) {
			return interceptors.IssueToken(secret, userID, ttl)
		}
		d.SyncStore = prefsync.NewConnectRemoteStore(&http.Client{Timeout: 10 * time.Second}, url, tokens)
		d.Logger.Info("syncing preferences with remote service", slog.String("url", url))
	}

	d.Logger.Info("storage initialized", slog.String("backend", d.Config.Locality.Backend))
	return nil
}

// initServices builds the catalog, detection, events and the session registry.
func (d *Dependencies) initServices() error {
	cfg := d.Config.Locality

	var catOpts []catalog.Option
	if cfg.MaxMatchKm > 0 {
		catOpts = append(catOpts, catalog.WithMaxDistance(cfg.MaxMatchKm))
	}
	switch {
	case cfg.CatalogFromDB && d.DB != nil:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		cat, err := catalog.LoadPostgres(ctx, d.DB.Pool, cfg.DefaultCityID, d.Logger, catOpts...)
		cancel()
		if err != nil {
			return err
		}
		d.Catalog = cat
	case cfg.CatalogFile != "":
		cat, err := catalog.LoadFile(cfg.CatalogFile, cfg.DefaultCityID, catOpts...)
		if err != nil {
			return err
		}
		d.Catalog = cat
	default:
		d.Catalog = catalog.Builtin(catOpts...)
	}

	var locators geolocation.Locators
	if path := d.Config.GeoIP.DatabasePath; path != "" {
		geoip, err := geolocation.NewGeoIPLocator(path, d.Catalog, d.Logger)
		if err != nil {
			return err
		}
		d.geoip = geoip
		locators = append(locators, geoip)
	}
	if d.Config.GeoIP.UseHeaders {
		locators = append(locators, geolocation.NewHeaderLocator(d.Catalog))
	}

	var network geolocation.NetworkLocator
	if len(locators) > 0 {
		network = geolocation.NewCachedLocator(locators, d.Config.GeoIP.CacheTTL)
	}
	d.Detector = geolocation.NewDetector(d.Catalog, geolocation.ContextCoordinateProvider{}, network, d.Logger,
		geolocation.WithTimeout(cfg.DetectionTimeout),
		geolocation.WithMetrics(d.Metrics),
	)

	publisher, err := d.initPublisher()
	if err != nil {
		return err
	}
	d.Publisher = publisher

	d.Sessions = locality.NewRegistry(locality.Builder{
		Backend:      d.Backend,
		Catalog:      d.Catalog,
		Detector:     d.Detector,
		Synchronizer: prefsync.New(d.SyncStore, d.Logger, prefsync.WithMetrics(d.Metrics)),
		Notifier:     d.Publisher,
		Clock:        clockwork.NewRealClock(),
		Metrics:      d.Metrics,
		Logger:       d.Logger,
		AutoDetect:   cfg.AutoDetect,
	}, cfg.SessionIdleTTL, d.Logger)

	key := []byte(d.Config.Auth.SessionKey)
	if len(key) == 0 {
		d.Logger.Warn("SESSION_KEY is empty; generating an ephemeral key, sessions will not survive a restart")
		key = securecookie.GenerateRandomKey(32)
	}
	d.SessionStore = session.NewCookieStore(key, d.Config.Auth.SessionMaxAge, d.Config.Auth.SecureCookies)

	d.Logger.Info("services initialized",
		slog.Int("cities", len(d.Catalog.All())),
		slog.Int("network_locators", len(locators)))
	return nil
}

func (d *Dependencies) initPublisher() (events.Publisher, error) {
	cfg := d.Config.Events
	switch cfg.Driver {
	case "nats":
		p, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSSubject, d.Logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, d.Logger), nil
	default:
		return events.Noop{}, nil
	}
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.LocalityHandler = handler.NewLocalityHandler(d.Sessions, d.Catalog, d.Logger)
	d.PreferenceHandler = handler.NewPreferenceHandler(d.AccountStore, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Warn("failed to close event publisher", slog.Any("error", err))
		}
	}
	if d.geoip != nil {
		if err := d.geoip.Close(); err != nil {
			d.Logger.Warn("failed to close geoip database", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
