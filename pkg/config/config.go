// Package config loads service settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Locality      LocalityConfig
	GeoIP         GeoIPConfig
	Events        EventsConfig
}

type ServerConfig struct {
	Addr               string
	ShutdownTimeout    time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
	TrustProxy         bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// URL, when set, overrides the individual fields.
	URL string
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type AuthConfig struct {
	JWTSecret       string
	SessionKey      string
	SessionMaxAge   int
	SecureCookies   bool
	ServiceTokenTTL time.Duration
}

type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

type LocalityConfig struct {
	// Backend is "postgres" or "memory".
	Backend          string
	CatalogFile      string
	CatalogFromDB    bool
	DefaultCityID    string
	MaxMatchKm       float64
	DetectionTimeout time.Duration
	AutoDetect       bool
	SessionIdleTTL   time.Duration
	// RemoteURL points sessions at a remote preference service. Empty means
	// the local database holds account preferences.
	RemoteURL string
}

type GeoIPConfig struct {
	DatabasePath string
	CacheTTL     time.Duration
	UseHeaders   bool
}

type EventsConfig struct {
	// Driver is "none", "nats" or "kafka".
	Driver       string
	NATSURL      string
	NATSSubject  string
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := &Config{
		Server: ServerConfig{
			Addr:               envOrDefault("SERVER_ADDR", ":8000"),
			ShutdownTimeout:    parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
			RateLimitPerSecond: parseInt("RATE_LIMIT_PER_SECOND", 0, &errs),
			RateLimitBurst:     parseInt("RATE_LIMIT_BURST", 0, &errs),
			AllowedOrigins:     splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
			TrustProxy:         parseBool("TRUST_PROXY", false, &errs),
		},
		Database: DatabaseConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     envOrDefault("DB_NAME", "loci"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
			URL:      os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			SessionKey:      os.Getenv("SESSION_KEY"),
			SessionMaxAge:   parseInt("SESSION_MAX_AGE", 30*24*60*60, &errs),
			SecureCookies:   parseBool("SECURE_COOKIES", false, &errs),
			ServiceTokenTTL: parseDuration("SERVICE_TOKEN_TTL", 5*time.Minute, &errs),
		},
		Observability: ObservabilityConfig{
			LogLevel:       envOrDefault("LOG_LEVEL", "info"),
			LogFormat:      envOrDefault("LOG_FORMAT", "json"),
			MetricsEnabled: parseBool("METRICS_ENABLED", true, &errs),
		},
		Locality: LocalityConfig{
			Backend:          strings.ToLower(envOrDefault("LOCALITY_BACKEND", "postgres")),
			CatalogFile:      os.Getenv("LOCALITY_CATALOG_FILE"),
			CatalogFromDB:    parseBool("LOCALITY_CATALOG_DB", false, &errs),
			DefaultCityID:    os.Getenv("LOCALITY_DEFAULT_CITY"),
			MaxMatchKm:       parseFloat("LOCALITY_MAX_MATCH_KM", 0, &errs),
			DetectionTimeout: parseDuration("LOCALITY_DETECTION_TIMEOUT", 5*time.Second, &errs),
			AutoDetect:       parseBool("LOCALITY_AUTO_DETECT", true, &errs),
			SessionIdleTTL:   parseDuration("LOCALITY_SESSION_IDLE_TTL", 30*time.Minute, &errs),
			RemoteURL:        os.Getenv("LOCALITY_REMOTE_URL"),
		},
		GeoIP: GeoIPConfig{
			DatabasePath: os.Getenv("GEOIP_DB_PATH"),
			CacheTTL:     parseDuration("GEOIP_CACHE_TTL", time.Hour, &errs),
			UseHeaders:   parseBool("GEOIP_USE_HEADERS", false, &errs),
		},
		Events: EventsConfig{
			Driver:       strings.ToLower(envOrDefault("EVENTS_DRIVER", "none")),
			NATSURL:      envOrDefault("NATS_URL", "nats://localhost:4222"),
			NATSSubject:  envOrDefault("NATS_SUBJECT", "loci.locality.changed"),
			KafkaBrokers: splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
			KafkaTopic:   envOrDefault("KAFKA_TOPIC", "loci-locality-changed"),
		},
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	switch c.Locality.Backend {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("invalid LOCALITY_BACKEND %q", c.Locality.Backend))
	}
	switch c.Events.Driver {
	case "none":
	case "nats":
		if c.Events.NATSURL == "" {
			errs = append(errs, errors.New("NATS_URL is required when EVENTS_DRIVER is nats"))
		}
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required when EVENTS_DRIVER is kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid EVENTS_DRIVER %q", c.Events.Driver))
	}
	if c.Server.RateLimitPerSecond < 0 || c.Server.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.Locality.SessionIdleTTL <= 0 {
		errs = append(errs, errors.New("LOCALITY_SESSION_IDLE_TTL must be positive"))
	}
	if (c.Locality.CatalogFile != "" || c.Locality.CatalogFromDB) && c.Locality.DefaultCityID == "" {
		errs = append(errs, errors.New("LOCALITY_DEFAULT_CITY is required with a custom catalog"))
	}
	if c.Locality.CatalogFromDB && c.Locality.Backend != "postgres" {
		errs = append(errs, errors.New("LOCALITY_CATALOG_DB needs LOCALITY_BACKEND=postgres"))
	}
	if n := len(c.Auth.SessionKey); n != 0 && n != 32 && n != 64 {
		errs = append(errs, errors.New("SESSION_KEY must be 32 or 64 bytes"))
	}
	return errs
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func parseFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return f
}

func parseBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}

func parseDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}
