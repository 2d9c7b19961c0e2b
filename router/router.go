package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/dino-reserve/config"
	"github.com/yeremiapane/dino-reserve/controllers"
	"github.com/yeremiapane/dino-reserve/feed"
	"github.com/yeremiapane/dino-reserve/middlewares"
	"github.com/yeremiapane/dino-reserve/services"
	"gorm.io/gorm"
)

// Options carries the collaborators the router wires into its handlers.
// Zero values fall back to defaults usable in tests.
type Options struct {
	Config config.Config
	Clock  services.Clock
	Hub    *feed.Hub
	Redis  *redis.Client
	// Registry receives the request metrics; a fresh one is created when nil.
	Registry *prometheus.Registry
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	cfg := opts.Config
	if opts.Clock.Now == nil {
		opts.Clock = services.SystemClock(cfg.Location())
	}
	if opts.Hub == nil {
		opts.Hub = feed.NewHub()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
		opts.Registry.MustRegister(collectors.NewGoCollector())
	}

	r := gin.New()
	metrics := middlewares.NewMetrics(opts.Registry)

	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.Recovery())
	r.Use(metrics.Middleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	if cfg.RateLimitEnabled {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimitPerMinute).RateLimit())
	}

	publisher := services.Publishers{opts.Hub, metrics}

	healthCtrl := controllers.NewHealthController(db, cfg.AppName, cfg.AppVersion)
	restaurantCtrl := controllers.NewRestaurantController(db, opts.Clock)
	reservationCtrl := controllers.NewReservationController(db, opts.Clock, publisher)
	adminCtrl := controllers.NewAdminController(db, opts.Clock, publisher)
	feedCtrl := controllers.NewFeedController(opts.Hub)

	restaurantCtrl.Debug = cfg.Debug
	reservationCtrl.Debug = cfg.Debug
	adminCtrl.Debug = cfg.Debug

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/", healthCtrl.Root)
	r.GET("/health", healthCtrl.Health)
	r.GET("/health/db", healthCtrl.DatabaseHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	r.GET("/feed/ws", feedCtrl.FeedHandler)

	// restaurants and their numbering never change after seeding
	cache := middlewares.ResponseCache(opts.Redis, cfg.CacheTTL)
	r.GET("/restaurants", cache, restaurantCtrl.GetAllRestaurants)
	r.GET("/restaurants/:id", cache, restaurantCtrl.GetRestaurant)
	r.GET("/restaurants/:id/tables", restaurantCtrl.GetRestaurantTables)

	r.POST("/reservations", reservationCtrl.CreateReservation)
	r.GET("/reservations", reservationCtrl.GetReservations)
	r.GET("/reservations/upcoming", reservationCtrl.GetUpcomingReservations)
	r.GET("/reservations/:id", reservationCtrl.GetReservation)
	r.POST("/reservations/:id/rebook", reservationCtrl.RebookReservation)
	r.DELETE("/reservations/:id", reservationCtrl.CancelReservation)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AdminAuthMiddleware(cfg.AdminJWTSecret))
	{
		admin.GET("/stats", adminCtrl.GetStats)
		admin.GET("/occupancy", adminCtrl.GetOccupancy)
		admin.POST("/reservations/cleanup", adminCtrl.CleanupReservations)
		admin.PUT("/reservations/:id", reservationCtrl.UpdateReservation)
	}

	if cfg.AllowPublicCorrections {
		r.PUT("/reservations/:id", reservationCtrl.UpdateReservation)
	}

	return r
}
