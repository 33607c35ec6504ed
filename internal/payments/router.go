package payments

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCompensationRoutes(router *gin.RouterGroup, controller Controller) {
	// Operator routes - refund queue for payments captured after their
	// hold closed
	comps := router.Group("/operator/compensations")
	comps.Use(middleware.JWTAuth(), middleware.RequireOperator())
	{
		comps.GET("", controller.ListPendingCompensations)
		comps.POST("/:compensationId/resolve", controller.ResolveCompensation)
	}
}
