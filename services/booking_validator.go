// services/booking_validator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"funeral-backend/models"
	"funeral-backend/utils"
)

// AddonSelection is an add-on chosen at checkout. A nil AddonID marks a custom,
// free-text add-on that is never stock-checked.
type AddonSelection struct {
	AddonID  *uint    `json:"addon_id"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	Quantity int      `json:"quantity"`
}

func (a AddonSelection) quantity() int {
	if a.Quantity <= 0 {
		return 1
	}
	return a.Quantity
}

type ServiceDateInput struct {
	Date      string  `json:"date" binding:"required,isodate"`
	StartTime *string `json:"start_time" binding:"omitempty,clocktime"`
	EndTime   *string `json:"end_time" binding:"omitempty,clocktime"`
	EventType string  `json:"event_type"`
}

type ResourceRequirement struct {
	ResourceType string `json:"resource_type" binding:"required"`
	ResourceName string `json:"resource_name" binding:"required"`
}

type BookingValidationInput struct {
	ProviderID       uint
	PackageID        uint
	Addons           []AddonSelection
	Dates            []ServiceDateInput
	Resources        []ResourceRequirement
	ExcludeBookingID *uint
}

type BookingValidation struct {
	IsValid       bool     `json:"is_valid"`
	Errors        []string `json:"errors"`
	ErrorMessages string   `json:"error_messages"`
	Message       string   `json:"message"`
}

type BookingValidator struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Resources *ResourceAvailabilityService
	Inventory *InventoryAvailabilityService
}

func NewBookingValidator(db *gorm.DB, log *zap.Logger, resources *ResourceAvailabilityService, inventory *InventoryAvailabilityService) *BookingValidator {
	return &BookingValidator{DB: db, Log: log, Resources: resources, Inventory: inventory}
}

// ValidateBooking runs every check and reports all failures together.
func (v *BookingValidator) ValidateBooking(ctx context.Context, in BookingValidationInput) BookingValidation {
	var problems []string

	problems = append(problems, v.checkPackage(ctx, in.ProviderID, in.PackageID)...)

	for _, sel := range in.Addons {
		if sel.AddonID == nil {
			continue
		}
		res := v.Inventory.CheckInventoryAvailability(ctx, InventoryQuery{
			AddonID:          *sel.AddonID,
			Quantity:         sel.quantity(),
			ExcludeBookingID: in.ExcludeBookingID,
		})
		if !res.IsAvailable {
			problems = append(problems, fmt.Sprintf("Add-on #%d: %s", *sel.AddonID, res.Message))
		}
	}

	if len(in.Dates) > 0 && len(in.Resources) > 0 {
		problems = append(problems, v.checkResources(ctx, in)...)
	}

	if len(problems) == 0 {
		return BookingValidation{IsValid: true, Errors: []string{}, Message: "Booking is valid"}
	}
	return BookingValidation{
		IsValid:       false,
		Errors:        problems,
		ErrorMessages: strings.Join(problems, "; "),
		Message:       "Booking validation failed",
	}
}

func (v *BookingValidator) checkPackage(ctx context.Context, providerID, packageID uint) []string {
	var pkg models.ServicePackage
	err := v.DB.WithContext(ctx).First(&pkg, packageID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return []string{"Package not found"}
	case err != nil:
		v.Log.Error("package lookup failed", zap.Uint("package_id", packageID), zap.Error(err))
		return []string{"Unable to verify package"}
	}

	var problems []string
	if pkg.ProviderID != providerID {
		problems = append(problems, "Package does not belong to this provider")
	}
	if !pkg.IsActive {
		problems = append(problems, "Package is not active")
	}
	return problems
}

// checkResources tests the whole min..max span of the booking. Only the first
// service date's time window is used for every date.
func (v *BookingValidator) checkResources(ctx context.Context, in BookingValidationInput) []string {
	var problems []string
	var minDate, maxDate string
	for i, d := range in.Dates {
		date, err := utils.NormalizeDate(d.Date)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Service date #%d: %s", i+1, err.Error()))
			continue
		}
		if minDate == "" || date < minDate {
			minDate = date
		}
		if maxDate == "" || date > maxDate {
			maxDate = date
		}
	}
	if minDate == "" {
		return problems
	}

	first := in.Dates[0]
	for _, r := range in.Resources {
		res := v.Resources.CheckResourceAvailability(ctx, ResourceQuery{
			ProviderID:       in.ProviderID,
			ResourceType:     r.ResourceType,
			ResourceName:     r.ResourceName,
			StartDate:        minDate,
			EndDate:          maxDate,
			StartTime:        first.StartTime,
			EndTime:          first.EndTime,
			ExcludeBookingID: in.ExcludeBookingID,
		})
		if !res.IsAvailable {
			problems = append(problems, fmt.Sprintf("%s %q: %s", r.ResourceType, r.ResourceName, res.Message))
		}
	}
	return problems
}
