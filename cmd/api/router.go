package api

import (
	"net/http"

	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/loci-locality/internal/api/localityv1"
	"github.com/FACorreiaa/loci-locality/internal/api/localityv1/localityv1connect"
	"github.com/FACorreiaa/loci-locality/internal/domain/geolocation"
	"github.com/FACorreiaa/loci-locality/internal/observability"
	"github.com/FACorreiaa/loci-locality/pkg/interceptors"
	"github.com/FACorreiaa/loci-locality/pkg/session"
)

// SetupRouter configures all routes and returns the HTTP service
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	jwtSecret := []byte(deps.Config.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		deps.Logger.Warn("JWT secret is empty; every authenticated request will be rejected")
	}

	tracer := otel.GetTracerProvider().Tracer("loci/locality")

	chain := []connect.Interceptor{
		interceptors.NewRecoveryInterceptor(deps.Logger),
		interceptors.NewRequestIDInterceptor("X-Request-ID"),
		interceptors.NewTracingInterceptor(tracer),
	}
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		chain = append(chain, interceptors.NewRateLimitInterceptor(limiter))
	}
	chain = append(chain,
		interceptors.NewLoggingInterceptor(deps.Logger),
		interceptors.NewAuthInterceptor(jwtSecret, localityv1.LocalityServiceProcedures...),
		observability.NewMetricsInterceptor(deps.Metrics),
	)

	registerConnectRoutes(mux, deps, connect.WithInterceptors(chain...))
	registerUtilityRoutes(mux, deps)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   connectcors.AllowedMethods(),
		AllowedHeaders:   append(connectcors.AllowedHeaders(), "Authorization", "X-Request-ID"),
		ExposedHeaders:   append(connectcors.ExposedHeaders(), "X-Request-ID"),
		AllowCredentials: true,
	})

	return corsHandler.Handler(mux)
}

// registerConnectRoutes mounts the Connect services behind the session and
// request-origin middleware.
func registerConnectRoutes(mux *http.ServeMux, deps *Dependencies, opts connect.HandlerOption) {
	withSession := session.Middleware(deps.SessionStore, deps.Logger)
	withOrigin := geolocation.RequestOrigin(deps.Config.Server.TrustProxy)

	localityPath, localityHandler := localityv1connect.NewLocalityServiceHandler(deps.LocalityHandler, opts)
	mux.Handle(localityPath, withSession(withOrigin(localityHandler)))
	deps.Logger.Info("registered Connect RPC service", "path", localityPath)

	prefsPath, prefsHandler := localityv1connect.NewPreferenceServiceHandler(deps.PreferenceHandler, opts)
	mux.Handle(prefsPath, prefsHandler)
	deps.Logger.Info("registered Connect RPC service", "path", prefsPath)

	deps.Logger.Info("Connect RPC routes configured")
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.Health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("database unhealthy"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	deps.Logger.Info("registered health check", "path", "/health")

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	deps.Logger.Info("registered readiness check", "path", "/ready")

	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
