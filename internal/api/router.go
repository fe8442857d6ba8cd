package api

import (
	"net"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/haripriya/clinic-backend/internal/api/handler"
	"github.com/haripriya/clinic-backend/internal/api/middleware"
	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

const bodyLimit = "1M"

// Deps are the collaborators the HTTP layer needs. Everything is an interface
// so the router can be exercised with in-memory stores.
type Deps struct {
	AuthService    ports.AuthService
	PatientService ports.PatientService
	Tokens         middleware.TokenValidator
	Users          middleware.UserLookup
	LoginLimiter   *middleware.IPRateLimiter
	Logger         zerolog.Logger
	EnableDocs     bool

	// TrustedProxies are the only peers whose X-Forwarded-For is believed
	// when resolving the client IP. Empty means the socket peer address.
	TrustedProxies []*net.IPNet

	// Probes are checked by GET /ready, keyed by dependency name.
	Probes map[string]handler.Pinger

	// Metrics registers the HTTP metrics and serves /metrics. Nil means the
	// prometheus default registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.Validator = handler.NewValidator()
	e.IPExtractor = clientIPExtractor(d.TrustedProxies)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "clinic",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	patientHandler := handler.NewPatientHandler(d.PatientService)
	dashboardHandler := handler.NewDashboardHandler()
	healthHandler := handler.NewHealthHandler(d.Probes, d.Logger)

	// --- Public routes ---
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/healthz", healthHandler.Liveness)
	e.GET("/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	if d.EnableDocs {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	if d.LoginLimiter != nil {
		e.POST("/auth/login", authHandler.Login, middleware.RateLimit(d.LoginLimiter))
	} else {
		e.POST("/auth/login", authHandler.Login)
	}

	// --- Guarded routes ---
	guard := middleware.Auth(d.Tokens, d.Users, d.Logger)

	authGroup := e.Group("/auth", guard)
	authGroup.GET("/me", authHandler.Me)
	authGroup.POST("/register", authHandler.Register, middleware.RBAC(domain.RoleAdmin))

	api := e.Group("/api", guard)
	api.GET("/admin/dashboard", dashboardHandler.Admin, middleware.RBAC(domain.RoleAdmin))
	api.GET("/doctor/dashboard", dashboardHandler.Doctor, middleware.RBAC(domain.RoleAdmin, domain.RoleDoctor))
	api.GET("/receptionist/dashboard", dashboardHandler.Receptionist, middleware.RBAC(domain.RoleAdmin, domain.RoleReceptionist))

	staff := middleware.RBAC(domain.RoleAdmin, domain.RoleDoctor, domain.RoleReceptionist)
	frontDesk := middleware.RBAC(domain.RoleAdmin, domain.RoleReceptionist)

	patients := api.Group("/patients")
	patients.GET("", patientHandler.List, staff)
	patients.GET("/search", patientHandler.Search, staff)
	patients.GET("/code/:code", patientHandler.GetByCode, staff)
	patients.GET("/:id", patientHandler.Get, staff)
	patients.POST("", patientHandler.Create, frontDesk)
	patients.PUT("/:id", patientHandler.Update, frontDesk)
	patients.DELETE("/:id", patientHandler.Deactivate, middleware.RBAC(domain.RoleAdmin))

	return e
}

// clientIPExtractor resolves c.RealIP(). Forwarding headers are client
// controlled, so they are only read when the peer is a listed proxy.
func clientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil || v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
