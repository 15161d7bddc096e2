package models

import "time"

type StockHistoryEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AddonID        uint      `gorm:"column:addon_id;index" json:"addon_id"`
	BookingID      uint      `gorm:"column:booking_id;index" json:"booking_id"`
	QuantityChange int       `gorm:"column:quantity_change" json:"quantity_change"`
	StockBefore    int       `gorm:"column:stock_before" json:"stock_before"`
	StockAfter     int       `gorm:"column:stock_after" json:"stock_after"`
	Note           string    `gorm:"column:note;size:255" json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (StockHistoryEntry) TableName() string { return "addon_stock_history" }
