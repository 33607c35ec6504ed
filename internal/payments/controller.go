package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buslane/internal/shared/utils/response"
)

type Controller interface {
	ListPendingCompensations(c *gin.Context)
	ResolveCompensation(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) ListPendingCompensations(c *gin.Context) {
	comps, err := ctrl.service.ListPendingCompensations(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Pending compensations retrieved successfully", comps, nil)
}

func (ctrl *controller) ResolveCompensation(c *gin.Context) {
	compID, err := uuid.Parse(c.Param("compensationId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid compensation ID", nil, err.Error())
		return
	}

	operatorID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Operator not authenticated", nil, nil)
		return
	}
	operatorValue, ok := operatorID.(string)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Invalid authentication claims", nil, nil)
		return
	}
	operatorUUID, err := uuid.Parse(operatorValue)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Invalid authentication claims", nil, nil)
		return
	}

	if err := ctrl.service.ResolveCompensation(c.Request.Context(), compID, operatorUUID); err != nil {
		response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Compensation resolved successfully", nil, nil)
}
