package services

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"funeral-backend/models"
)

// mysqlNoSuchTable is ER_NO_SUCH_TABLE.
const mysqlNoSuchTable = 1146

type InventoryConfirmation struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	ItemsDecremented int    `json:"items_decremented"`
}

// InventoryConfirmationService moves stock when a booking is committed. Every
// method runs on the caller's transaction so a failure rolls back the whole
// status change.
type InventoryConfirmationService struct {
	Log *zap.Logger
}

func NewInventoryConfirmationService(log *zap.Logger) *InventoryConfirmationService {
	return &InventoryConfirmationService{Log: log}
}

type stockLine struct {
	BookingAddonID uint
	AddonID        uint
	AddonName      string
	Quantity       int
}

func (s *InventoryConfirmationService) stockLines(tx *gorm.DB, bookingID uint) ([]stockLine, error) {
	var lines []stockLine
	err := tx.
		Table("booking_addons AS ba").
		Select("ba.id AS booking_addon_id, ba.addon_id, pa.name AS addon_name, ba.quantity").
		Joins("JOIN provider_addons pa ON pa.id = ba.addon_id").
		Where("ba.booking_id = ? AND pa.addon_type = ? AND pa.stock_quantity IS NOT NULL", bookingID, models.AddonTypeItem).
		Order("ba.addon_id, ba.id").
		Scan(&lines).Error
	return lines, err
}

func currentStock(tx *gorm.DB, addonID uint) (int, error) {
	var stock int
	err := tx.Model(&models.AddonCatalogItem{}).
		Select("stock_quantity").
		Where("id = ?", addonID).
		Row().
		Scan(&stock)
	return stock, err
}

// ConfirmInventory decrements stock for every stock-tracked add-on on the
// booking. The decrement is conditional on enough stock remaining, so two
// confirmations racing for the last unit cannot both succeed.
func (s *InventoryConfirmationService) ConfirmInventory(tx *gorm.DB, bookingID uint) (InventoryConfirmation, error) {
	lines, err := s.stockLines(tx, bookingID)
	if err != nil {
		return InventoryConfirmation{Message: "failed to load booking add-ons"}, fmt.Errorf("load stock lines: %w", err)
	}

	decremented := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}

		before, err := currentStock(tx, line.AddonID)
		if err != nil {
			return InventoryConfirmation{Message: "failed to read stock"}, fmt.Errorf("read stock for addon %d: %w", line.AddonID, err)
		}
		if before < line.Quantity {
			msg := fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", line.AddonName, line.Quantity, before)
			return InventoryConfirmation{Message: msg}, fmt.Errorf("%w: %s", ErrInsufficientStock, msg)
		}

		res := tx.Model(&models.AddonCatalogItem{}).
			Where("id = ? AND stock_quantity >= ?", line.AddonID, line.Quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
		if res.Error != nil {
			return InventoryConfirmation{Message: "failed to update stock"}, fmt.Errorf("decrement addon %d: %w", line.AddonID, res.Error)
		}
		if res.RowsAffected == 0 {
			msg := fmt.Sprintf("Stock for %s changed during confirmation", line.AddonName)
			return InventoryConfirmation{Message: msg}, fmt.Errorf("%w: %s", ErrInsufficientStock, msg)
		}

		s.recordHistory(tx, models.StockHistoryEntry{
			AddonID:        line.AddonID,
			BookingID:      bookingID,
			QuantityChange: -line.Quantity,
			StockBefore:    before,
			StockAfter:     before - line.Quantity,
			Note:           "Booking confirmed",
		})
		decremented++
	}

	return InventoryConfirmation{
		Success:          true,
		Message:          fmt.Sprintf("Inventory updated for %d item(s)", decremented),
		ItemsDecremented: decremented,
	}, nil
}

// RestockInventory returns the booking's stock-tracked add-ons to the shelf.
func (s *InventoryConfirmationService) RestockInventory(tx *gorm.DB, bookingID uint) (int, error) {
	lines, err := s.stockLines(tx, bookingID)
	if err != nil {
		return 0, fmt.Errorf("load stock lines: %w", err)
	}

	restocked := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		before, err := currentStock(tx, line.AddonID)
		if err != nil {
			return restocked, fmt.Errorf("read stock for addon %d: %w", line.AddonID, err)
		}
		if err := tx.Model(&models.AddonCatalogItem{}).
			Where("id = ?", line.AddonID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", line.Quantity)).Error; err != nil {
			return restocked, fmt.Errorf("restock addon %d: %w", line.AddonID, err)
		}
		s.recordHistory(tx, models.StockHistoryEntry{
			AddonID:        line.AddonID,
			BookingID:      bookingID,
			QuantityChange: line.Quantity,
			StockBefore:    before,
			StockAfter:     before + line.Quantity,
			Note:           "Booking cancelled",
		})
		restocked++
	}
	return restocked, nil
}

// recordHistory writes inside a savepoint; a missing table or a failed insert
// is logged and never fails the surrounding transaction.
func (s *InventoryConfirmationService) recordHistory(tx *gorm.DB, entry models.StockHistoryEntry) {
	err := tx.Transaction(func(htx *gorm.DB) error {
		return htx.Create(&entry).Error
	})
	if err == nil {
		return
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlNoSuchTable {
		s.Log.Warn("stock history table missing; skipping audit entry",
			zap.Uint("addon_id", entry.AddonID), zap.Uint("booking_id", entry.BookingID))
		return
	}
	s.Log.Warn("failed to write stock history",
		zap.Uint("addon_id", entry.AddonID),
		zap.Uint("booking_id", entry.BookingID),
		zap.Error(err),
	)
}
