// Package server assembles the HTTP surface: middleware, module routes,
// health, metrics and the live slot feed.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"fitnessbooking/internal/config"
	"fitnessbooking/internal/events"
	"fitnessbooking/internal/metrics"
	"fitnessbooking/internal/middleware"
	"fitnessbooking/internal/modules/booking"
	"fitnessbooking/internal/modules/catalog"
	"fitnessbooking/internal/modules/live"
	"fitnessbooking/internal/pkg/jwt"
	"fitnessbooking/internal/pkg/response"
	"fitnessbooking/internal/pkg/tz"
	"fitnessbooking/internal/repository"
)

const healthPingTimeout = 2 * time.Second

type Deps struct {
	Config *config.AppConfig
	DB     *gorm.DB
	// Clock defaults to the wall clock in the configured timezone.
	Clock *tz.Normalizer
	// Registry defaults to a fresh registry.
	Registry *prometheus.Registry
	// Publisher receives booking events in addition to the live hub.
	Publisher events.Publisher
}

type App struct {
	Engine *gin.Engine
	Hub    *live.Hub

	limiter *middleware.RateLimiter
}

func New(deps Deps) (*App, error) {
	cfg := deps.Config

	clock := deps.Clock
	if clock == nil {
		var err error
		clock, err = tz.NewNormalizer(cfg.DefaultTimezone, nil)
		if err != nil {
			return nil, err
		}
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	collector := metrics.NewCollector(reg)

	hub := live.NewHub()
	publisher := events.Publisher(hub)
	if deps.Publisher != nil {
		publisher = events.Multi{hub, deps.Publisher}
	}

	classRepo := repository.NewClassRepository(deps.DB)
	bookingRepo := repository.NewBookingRepository(deps.DB)
	store := repository.NewStore(deps.DB)

	catalogService := catalog.NewService(classRepo, clock, collector)
	catalogHandler := catalog.NewHandler(catalogService, cfg.DefaultTimezone)

	bookingService := booking.NewService(store, bookingRepo, classRepo, clock, publisher, collector)
	bookingHandler := booking.NewHandler(bookingService, cfg.DefaultTimezone)

	liveHandler := live.NewHandler(hub, cfg.CORSAllowedOrigins)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.BookingRatePerMin,
		Burst:     cfg.BookingRateBurst,
	})

	var createGuards []gin.HandlerFunc
	if cfg.StaffAuthEnabled() {
		createGuards = middleware.StaffOnly(jwt.New(cfg.StaffJWTSecret, cfg.StaffTokenTTL))
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(collector.Middleware())

	r.GET("/health", healthHandler(deps.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	liveHandler.RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	{
		catalogHandler.RegisterRoutes(v1, createGuards...)
		bookingHandler.RegisterRoutes(v1, limiter.Middleware())
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Route not found")
	})

	return &App{Engine: r, Hub: hub, limiter: limiter}, nil
}

// Close stops background work and disconnects live subscribers.
func (a *App) Close() {
	a.limiter.Stop()
	a.Hub.Close()
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"message":   "Fitness Booking API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  "ok",
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := ping(ctx, db); err != nil {
			_ = c.Error(err)
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unavailable"
		}

		c.JSON(status, body)
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
