package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"funeral-backend/services"
	"funeral-backend/utils"
)

type CheckAvailabilityRequest struct {
	Type             string  `json:"type" binding:"required,oneof=resource inventory"`
	ProviderID       uint    `json:"provider_id"`
	ResourceType     string  `json:"resource_type"`
	ResourceName     string  `json:"resource_name"`
	StartDate        string  `json:"start_date" binding:"omitempty,isodate"`
	EndDate          string  `json:"end_date" binding:"omitempty,isodate"`
	StartTime        *string `json:"start_time" binding:"omitempty,clocktime"`
	EndTime          *string `json:"end_time" binding:"omitempty,clocktime"`
	AddonID          uint    `json:"addon_id"`
	Quantity         int     `json:"quantity"`
	ExcludeBookingID *uint   `json:"exclude_booking_id"`
}

type AvailabilityController struct {
	Resources *services.ResourceAvailabilityService
	Inventory *services.InventoryAvailabilityService
}

func NewAvailabilityController(resources *services.ResourceAvailabilityService, inventory *services.InventoryAvailabilityService) *AvailabilityController {
	return &AvailabilityController{Resources: resources, Inventory: inventory}
}

// CheckAvailability answers POST /checkAvailability for both resources and inventory.
func (ctrl *AvailabilityController) CheckAvailability(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	switch req.Type {
	case "resource":
		if req.ProviderID == 0 || req.ResourceType == "" || req.ResourceName == "" || req.StartDate == "" {
			utils.JSONError(c, http.StatusBadRequest, "provider_id, resource_type, resource_name and start_date are required")
			return
		}
		result := ctrl.Resources.CheckResourceAvailability(c.Request.Context(), services.ResourceQuery{
			ProviderID:       req.ProviderID,
			ResourceType:     req.ResourceType,
			ResourceName:     req.ResourceName,
			StartDate:        req.StartDate,
			EndDate:          req.EndDate,
			StartTime:        req.StartTime,
			EndTime:          req.EndTime,
			ExcludeBookingID: req.ExcludeBookingID,
		})
		utils.JSONSuccess(c, http.StatusOK, gin.H{"type": req.Type, "data": result})

	case "inventory":
		if req.AddonID == 0 {
			utils.JSONError(c, http.StatusBadRequest, "addon_id is required")
			return
		}
		result := ctrl.Inventory.CheckInventoryAvailability(c.Request.Context(), services.InventoryQuery{
			AddonID:          req.AddonID,
			Quantity:         req.Quantity,
			ExcludeBookingID: req.ExcludeBookingID,
		})
		utils.JSONSuccess(c, http.StatusOK, gin.H{"type": req.Type, "data": result})
	}
}
