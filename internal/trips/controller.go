package trips

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buslane/internal/seats"
	"buslane/internal/shared/utils/response"
)

type Controller interface {
	CreateTrip(c *gin.Context)
	GetTrip(c *gin.Context)
	GetSeatMap(c *gin.Context)
	ListTrips(c *gin.Context)
	CancelTrip(c *gin.Context)
	DeleteTrip(c *gin.Context)
}

type controller struct {
	service     Service
	seatService seats.Service
}

func NewController(service Service, seatService seats.Service) Controller {
	return &controller{service: service, seatService: seatService}
}

func (ctrl *controller) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	adminID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Admin not authenticated", nil, nil)
		return
	}
	adminValue, ok := adminID.(string)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Invalid authentication claims", nil, nil)
		return
	}
	adminUUID, err := uuid.Parse(adminValue)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Invalid authentication claims", nil, nil)
		return
	}

	trip, err := ctrl.service.CreateTrip(c.Request.Context(), adminUUID, req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Trip created successfully", trip, nil)
}

func (ctrl *controller) GetTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	trip, err := ctrl.service.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			response.RespondError(c, http.StatusNotFound, "TRIP_NOT_FOUND", "Trip not found", nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip retrieved successfully", trip, nil)
}

func (ctrl *controller) GetSeatMap(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	// Trip existence check first so a bogus id is a 404, not an empty map.
	if _, err := ctrl.service.GetTrip(c.Request.Context(), tripID); err != nil {
		if errors.Is(err, ErrTripNotFound) {
			response.RespondError(c, http.StatusNotFound, "TRIP_NOT_FOUND", "Trip not found", nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	seatMap, err := ctrl.seatService.GetSeatMap(c.Request.Context(), tripID.String())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}

func (ctrl *controller) ListTrips(c *gin.Context) {
	var query TripListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	trips, err := ctrl.service.ListTrips(c.Request.Context(), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trips retrieved successfully", trips, nil)
}

func (ctrl *controller) CancelTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	if err := ctrl.service.CancelTrip(c.Request.Context(), tripID); err != nil {
		if errors.Is(err, ErrTripNotFound) {
			response.RespondError(c, http.StatusNotFound, "TRIP_NOT_FOUND", "Trip not found", nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip cancelled successfully", nil, nil)
}

func (ctrl *controller) DeleteTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteTrip(c.Request.Context(), tripID); err != nil {
		if errors.Is(err, ErrTripNotFound) {
			response.RespondError(c, http.StatusNotFound, "TRIP_NOT_FOUND", "Trip not found", nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip deleted successfully", nil, nil)
}
