package reservations

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(router *gin.RouterGroup, controller Controller) {
	// All reservation operations need an authenticated customer
	reservations := router.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.ReserveSeats)
		reservations.GET("", controller.ListReservations)
		reservations.GET("/:holdId", controller.GetHoldStatus)
		reservations.DELETE("/:holdId", controller.CancelReservation)
		reservations.POST("/:holdId/payment", controller.BeginPayment)
	}

	payments := router.Group("/payments")
	payments.Use(middleware.JWTAuth())
	{
		payments.POST("/:paymentId/confirm", controller.ConfirmPayment)
	}
}
