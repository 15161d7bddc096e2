package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"funeral-backend/services"
	"funeral-backend/utils"
)

func parseBookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps service errors onto HTTP responses. Unknown errors
// are logged through c.Error and answered with a generic message.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.JSONErrorWith(c, http.StatusUnprocessableEntity, "Validation failed", gin.H{"errors": verr.Messages()})
	case errors.Is(err, services.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, "Booking not found")
	case errors.Is(err, services.ErrPackageNotFound):
		utils.JSONError(c, http.StatusNotFound, "Package not found")
	case errors.Is(err, services.ErrProviderNotFound):
		utils.JSONError(c, http.StatusNotFound, "Provider not found")
	case errors.Is(err, services.ErrPermissionDenied):
		utils.JSONError(c, http.StatusForbidden, "You do not have permission to manage this booking")
	case errors.Is(err, services.ErrAlreadyCancelled):
		utils.JSONError(c, http.StatusConflict, "Booking is already cancelled")
	case errors.Is(err, services.ErrBookingCompleted):
		utils.JSONError(c, http.StatusConflict, "Completed bookings cannot be cancelled")
	case errors.Is(err, services.ErrInsufficientStock):
		_ = c.Error(err)
		utils.JSONError(c, http.StatusConflict, "Booking could not be confirmed: not enough stock for one or more add-ons")
	case errors.Is(err, services.ErrResourceConflict):
		_ = c.Error(err)
		utils.JSONError(c, http.StatusConflict, "Booking could not be confirmed: a resource is already booked for this date")
	case errors.Is(err, services.ErrResourceBusy):
		utils.JSONError(c, http.StatusConflict, "Resource is being booked by another request, please retry")
	case errors.Is(err, services.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error")
	}
}
