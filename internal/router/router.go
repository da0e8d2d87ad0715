package router // package router defines how HTTP routes are registered for the API

import (
	"context"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/MKabaja/SHIFTFlow/internal/handler"
	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/model"
	"github.com/MKabaja/SHIFTFlow/internal/observability"
)

// apiPrefixes lists the mount points of every API route.  The bare paths
// and the /api copies serve the same handlers.
var apiPrefixes = []string{"", "/api"}

// Deps carries everything the routes need.  Nil optional middleware is
// replaced with a pass-through.
type Deps struct {
	Auth           *handler.AuthHandler
	Positions      *handler.PositionHandler
	Schedules      *handler.ScheduleHandler
	Availabilities *handler.AvailabilityHandler
	UserAdmin      *handler.UserAdminHandler

	Resolver middleware.Resolver
	Gate     middleware.GateDeps
	Log      logrus.FieldLogger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	DB       handler.Pinger

	LoginLimit     echo.MiddlewareFunc // rate limiter on the login routes
	PositionsCache echo.MiddlewareFunc // response cache on GET /positions
}

// New builds the echo instance with the error handler, the global
// middleware and all routes.
func New(d Deps) *echo.Echo {
	if d.LoginLimit == nil {
		d.LoginLimit = passThrough
	}
	if d.PositionsCache == nil {
		d.PositionsCache = passThrough
	}
	if d.Gate.Log == nil {
		d.Gate.Log = d.Log
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLog(d.Log, d.Metrics))

	RegisterRoutes(e, d)
	RegisterAuth(e, d)
	RegisterStaff(e, d)
	return e
}

// RegisterRoutes registers operational routes that do not require
// authentication: the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterAuth registers the /auth routes.  Logins are public but rate
// limited; /me goes through Authenticate and a role gate admitting every
// role; logout reads the token itself.
func RegisterAuth(e *echo.Echo, d Deps) {
	for _, prefix := range apiPrefixes {
		g := e.Group(prefix + "/auth")
		g.POST("/login", d.Auth.Login, d.LoginLimit)
		g.POST("/login-pin", d.Auth.LoginPin, d.LoginLimit)
		g.GET("/me", d.Auth.Me,
			middleware.Authenticate(d.Resolver, d.Log),
			middleware.RoleGate(d.Gate, model.AllRoles...))
		g.POST("/logout", d.Auth.Logout)
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// PositionsPurger drops the cached GET /positions responses under every
// mount point.  A nil client makes it a no-op.
func PositionsPurger(rdb *redis.Client, cachePrefix string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, p := range apiPrefixes {
			if err := middleware.PurgeRoute(ctx, rdb, cachePrefix, p+"/positions"); err != nil {
				return err
			}
		}
		return nil
	}
}
