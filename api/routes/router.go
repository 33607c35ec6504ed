// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"buslane/internal/auth"
	"buslane/internal/holds"
	"buslane/internal/notifications"
	"buslane/internal/payments"
	"buslane/internal/reservations"
	"buslane/internal/seats"
	"buslane/internal/shared/config"
	"buslane/internal/shared/database"
	"buslane/internal/trips"
	"buslane/pkg/cache"
	"buslane/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.Producer
	logger   *logger.Logger

	// wired during SetupRoutes, reused across route groups
	cacheService cache.Service
	seatRepo     seats.Repository
	seatService  seats.Service
	holdService  holds.Service
	sweeper      *holds.Sweeper
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
		logger:   log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	r.cacheService = cache.NewService(r.db.Redis)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupSeatInventory(api)
		r.setupTripRoutes(api)
		r.setupReservationRoutes(api)
	}
}

// Sweeper returns the hold expiration sweeper. Available after SetupRoutes.
func (r *Router) Sweeper() *holds.Sweeper {
	return r.sweeper
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "buslane-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "buslane-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.PostgreSQL)
	authService := auth.NewService(authRepo, r.config, r.logger)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupSeatInventory wires the seat read side and the Redis lock mirror
func (r *Router) setupSeatInventory(_ *gin.RouterGroup) {
	r.seatRepo = seats.NewRepository(r.db.PostgreSQL)
	locks := seats.NewAtomicLocks(r.db.Redis)
	r.seatService = seats.NewService(r.seatRepo, locks, r.cacheService)

	holdRepo := holds.NewRepository(r.db.PostgreSQL)
	r.holdService = holds.NewService(holdRepo, locks, r.seatService, r.producer, &r.config.Reservation, r.logger)
	r.sweeper = holds.NewSweeper(r.holdService, r.config.Reservation.SweepInterval, r.logger)
}

// setupTripRoutes configures trip catalogue routes
func (r *Router) setupTripRoutes(rg *gin.RouterGroup) {
	tripRepo := trips.NewRepository(r.db.PostgreSQL)
	tripService := trips.NewService(tripRepo, r.seatRepo, r.cacheService, r.logger)
	tripController := trips.NewController(tripService, r.seatService)

	trips.SetupTripRoutes(rg, tripController)
}

// setupReservationRoutes configures the reservation and payment workflow
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	gateway := payments.NewGateway(&r.config.Gateway)
	paymentRepo := payments.NewRepository(r.db.PostgreSQL)
	paymentService := payments.NewService(paymentRepo, gateway, r.holdService, r.producer, &r.config.Reservation, r.logger)
	paymentController := payments.NewController(paymentService)
	payments.SetupCompensationRoutes(rg, paymentController)

	tripRepo := trips.NewRepository(r.db.PostgreSQL)
	reservationService := reservations.NewService(tripRepo, r.holdService, paymentService, r.logger)
	reservationController := reservations.NewController(reservationService)
	reservations.SetupReservationRoutes(rg, reservationController)
}
