package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"funeral-backend/middleware"
	"funeral-backend/services"
	"funeral-backend/utils"
)

type BookingController struct {
	BookingSvc *services.BookingService
	Validator  *services.BookingValidator
}

func NewBookingController(bookingSvc *services.BookingService, validator *services.BookingValidator) *BookingController {
	return &BookingController{BookingSvc: bookingSvc, Validator: validator}
}

// ---------------------------
// DTOs
// ---------------------------

type CreateBookingRequest struct {
	PackageID     uint   `json:"package_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	ServiceDate  string                      `json:"service_date" binding:"omitempty,isodate"`
	StartTime    *string                     `json:"start_time" binding:"omitempty,clocktime"`
	EndTime      *string                     `json:"end_time" binding:"omitempty,clocktime"`
	EventType    string                      `json:"event_type"`
	ServiceDates []services.ServiceDateInput `json:"service_dates" binding:"omitempty,dive"`

	SelectedAddons  []services.AddonSelection      `json:"selected_addons"`
	Resources       []services.ResourceRequirement `json:"resources" binding:"omitempty,dive"`
	TotalAmount     float64                        `json:"total_amount" binding:"gte=0"`
	SpecialRequests string                         `json:"special_requests"`
}

type ValidateBookingRequest struct {
	ProviderID       uint                           `json:"provider_id" binding:"required"`
	PackageID        uint                           `json:"package_id" binding:"required"`
	SelectedAddons   []services.AddonSelection      `json:"selected_addons"`
	ServiceDates     []services.ServiceDateInput    `json:"service_dates" binding:"omitempty,dive"`
	Resources        []services.ResourceRequirement `json:"resources" binding:"omitempty,dive"`
	ExcludeBookingID *uint                          `json:"exclude_booking_id"`
}

type ConfirmBookingRequest struct {
	Note string `json:"note"`
}

type CancelBookingRequest struct {
	CancelledBy string `json:"cancelled_by" binding:"required,oneof=customer provider"`
	Reason      string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func caller(c *gin.Context) services.Caller {
	return services.Caller{UserID: middleware.CallerID(c)}
}

// ---------------------------
// Handlers
// ---------------------------

// Create handles POST /api/bookings.
func (ctrl *BookingController) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.CreateBooking(c.Request.Context(), caller(c), services.CreateBookingInput{
		PackageID:       req.PackageID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ServiceDate:     req.ServiceDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		EventType:       req.EventType,
		ServiceDates:    req.ServiceDates,
		SelectedAddons:  req.SelectedAddons,
		Resources:       req.Resources,
		TotalAmount:     req.TotalAmount,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, gin.H{
		"message":           "Booking created successfully",
		"booking_id":        booking.ID,
		"booking_reference": booking.ReferenceCode,
		"status":            booking.Status,
		"total_amount":      booking.TotalAmount,
	})
}

// Get handles GET /api/bookings/:id.
func (ctrl *BookingController) Get(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.GetBookingDetails(c.Request.Context(), caller(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"data": booking})
}

// Validate handles POST /api/bookings/validate. A failed validation is still a
// 200; the verdict is in data.is_valid.
func (ctrl *BookingController) Validate(c *gin.Context) {
	var req ValidateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	result := ctrl.Validator.ValidateBooking(c.Request.Context(), services.BookingValidationInput{
		ProviderID:       req.ProviderID,
		PackageID:        req.PackageID,
		Addons:           req.SelectedAddons,
		Dates:            req.ServiceDates,
		Resources:        req.Resources,
		ExcludeBookingID: req.ExcludeBookingID,
	})
	utils.JSONSuccess(c, http.StatusOK, gin.H{"data": result})
}

// Confirm handles POST /api/bookings/:id/confirm.
func (ctrl *BookingController) Confirm(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	var req ConfirmBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
			return
		}
	}

	result, err := ctrl.BookingSvc.ConfirmBooking(c.Request.Context(), caller(c), id, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"message":           "Booking confirmed",
		"booking_id":        result.Booking.ID,
		"status":            result.Booking.Status,
		"items_decremented": result.Inventory.ItemsDecremented,
	})
}

// Cancel handles POST /api/bookings/:id/cancel.
func (ctrl *BookingController) Cancel(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.CancelBooking(c.Request.Context(), caller(c), id, req.CancelledBy, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var refund float64
	if booking.RefundAmount != nil {
		refund = *booking.RefundAmount
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Booking cancelled, refund of %.2f issued", refund),
		"booking_id":    booking.ID,
		"status":        booking.Status,
		"refund_amount": refund,
	})
}

// UpdateStatus handles PATCH /api/bookings/:id/status.
func (ctrl *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.UpdateStatus(c.Request.Context(), caller(c), id, req.Status, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"message":    "Booking status updated",
		"booking_id": booking.ID,
		"status":     booking.Status,
	})
}
