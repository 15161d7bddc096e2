package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"funeral-backend/models"
)

// UnlimitedStock is reported for add-ons that are not stock-tracked.
const UnlimitedStock = 999999

type InventoryQuery struct {
	AddonID          uint
	Quantity         int
	ExcludeBookingID *uint
}

type InventoryAvailability struct {
	IsAvailable      bool   `json:"is_available"`
	AvailableStock   int    `json:"available_stock"`
	TotalStock       int    `json:"total_stock"`
	ReservedQuantity int    `json:"reserved_quantity"`
	Message          string `json:"message"`
}

type InventoryAvailabilityService struct {
	DB     *gorm.DB
	Log    *zap.Logger
	Policy ReservationPolicy
	Now    func() time.Time
}

func NewInventoryAvailabilityService(db *gorm.DB, log *zap.Logger, policy ReservationPolicy) *InventoryAvailabilityService {
	if policy == nil {
		policy = NewTTLReservationPolicy(DefaultReservationTTL)
	}
	return &InventoryAvailabilityService{DB: db, Log: log, Policy: policy, Now: time.Now}
}

// CheckInventoryAvailability reports how much of an add-on is left once the
// soft reservations of recent bookings are subtracted. Query failures are
// reported as unavailable.
func (s *InventoryAvailabilityService) CheckInventoryAvailability(ctx context.Context, q InventoryQuery) InventoryAvailability {
	if q.Quantity <= 0 {
		q.Quantity = 1
	}
	db := s.DB.WithContext(ctx)

	var addon models.AddonCatalogItem
	if err := db.First(&addon, q.AddonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InventoryAvailability{IsAvailable: false, Message: "Add-on not found"}
		}
		s.Log.Error("inventory lookup failed", zap.Uint("addon_id", q.AddonID), zap.Error(err))
		return InventoryAvailability{IsAvailable: false, Message: "Unable to verify stock, please try again"}
	}

	if addon.Unlimited() {
		return InventoryAvailability{
			IsAvailable:    true,
			AvailableStock: UnlimitedStock,
			TotalStock:     UnlimitedStock,
			Message:        "Unlimited availability",
		}
	}

	reserved, err := s.reservedQuantity(db, addon.ID, q.ExcludeBookingID)
	if err != nil {
		s.Log.Error("reserved quantity query failed", zap.Uint("addon_id", addon.ID), zap.Error(err))
		return InventoryAvailability{
			IsAvailable: false,
			TotalStock:  *addon.StockQuantity,
			Message:     "Unable to verify stock, please try again",
		}
	}

	total := *addon.StockQuantity
	available := total - reserved
	out := InventoryAvailability{
		IsAvailable:      available >= q.Quantity,
		AvailableStock:   available,
		TotalStock:       total,
		ReservedQuantity: reserved,
	}
	if out.IsAvailable {
		out.Message = fmt.Sprintf("%d of %s available", available, addon.Name)
	} else {
		out.Message = fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", addon.Name, q.Quantity, available)
	}
	return out
}

func (s *InventoryAvailabilityService) reservedQuantity(db *gorm.DB, addonID uint, excludeBookingID *uint) (int, error) {
	var reserved int64
	exclude := nullableID(excludeBookingID)
	since := s.Policy.ReservedSince(s.Now())

	err := db.Model(&models.BookingAddon{}).
		Select("COALESCE(SUM(booking_addons.quantity), 0)").
		Joins("JOIN bookings b ON b.id = booking_addons.booking_id").
		Where("booking_addons.addon_id = ?", addonID).
		Where("b.status IN ?", s.Policy.Statuses()).
		Where("b.created_at >= ?", since).
		Where("(? IS NULL OR b.id <> ?)", exclude, exclude).
		Scan(&reserved).Error
	return int(reserved), err
}
