package reservations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buslane/internal/customers"
	"buslane/internal/payments"
	"buslane/internal/shared/utils/response"
)

type Controller interface {
	ReserveSeats(c *gin.Context)
	BeginPayment(c *gin.Context)
	ConfirmPayment(c *gin.Context)
	CancelReservation(c *gin.Context)
	GetHoldStatus(c *gin.Context)
	ListReservations(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) ReserveSeats(c *gin.Context) {
	var req ReserveSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body", err.Error())
		return
	}

	customerID, ok := currentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.ReserveSeats(c.Request.Context(), customerID.ID, req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Seats reserved, awaiting payment", reservation, nil)
}

func (ctrl *controller) BeginPayment(c *gin.Context) {
	holdID, err := uuid.Parse(c.Param("holdId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeValidation, "Invalid hold ID", err.Error())
		return
	}

	var req BeginPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body", err.Error())
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	payment, err := ctrl.service.BeginPayment(c.Request.Context(), actor.ID, holdID, payments.Method(req.Method))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Payment created", payment, nil)
}

func (ctrl *controller) ConfirmPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeValidation, "Invalid payment ID", err.Error())
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.RespondError(c, http.StatusBadRequest, CodeValidation, "Invalid request body", err.Error())
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	payment, err := ctrl.service.ConfirmPayment(c.Request.Context(), actor, paymentID, req.ExternalReference)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment settled, reservation confirmed", payment, nil)
}

func (ctrl *controller) CancelReservation(c *gin.Context) {
	holdID, err := uuid.Parse(c.Param("holdId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeValidation, "Invalid hold ID", err.Error())
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.CancelReservation(c.Request.Context(), actor.ID, holdID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation cancelled", reservation, nil)
}

func (ctrl *controller) GetHoldStatus(c *gin.Context) {
	holdID, err := uuid.Parse(c.Param("holdId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeValidation, "Invalid hold ID", err.Error())
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	reservation, err := ctrl.service.GetHoldStatus(c.Request.Context(), actor, holdID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

func (ctrl *controller) ListReservations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Not authenticated", nil, nil)
		return
	}

	reservations, err := ctrl.service.ListActiveReservations(c.Request.Context(), actor.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Active reservations retrieved successfully", reservations, nil)
}

// currentActor reads the authenticated identity set by the JWT middleware
func currentActor(c *gin.Context) (Actor, bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		return Actor{}, false
	}
	idValue, ok := rawID.(string)
	if !ok {
		return Actor{}, false
	}
	id, err := uuid.Parse(idValue)
	if err != nil {
		return Actor{}, false
	}

	actor := Actor{ID: id}
	if role, exists := c.Get("user_role"); exists {
		actor.IsOperator = role == string(customers.RoleOperator) || role == string(customers.RoleAdmin)
	}
	return actor, true
}

func respondDomainError(c *gin.Context, err error) {
	code, status := MapError(err)
	response.RespondError(c, status, code, err.Error(), nil)
}
