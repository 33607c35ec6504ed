package trips

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTripRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse trips and seat maps
	publicTrips := router.Group("/trips")
	{
		publicTrips.GET("", controller.ListTrips)
		publicTrips.GET("/:tripId", controller.GetTrip)
		publicTrips.GET("/:tripId/seats", controller.GetSeatMap)
	}

	// Admin routes - trip management
	adminTrips := router.Group("/admin/trips")
	adminTrips.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminTrips.POST("", controller.CreateTrip)
		adminTrips.POST("/:tripId/cancel", controller.CancelTrip)
		adminTrips.DELETE("/:tripId", controller.DeleteTrip)
	}
}
