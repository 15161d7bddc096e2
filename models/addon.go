// models/addon.go
package models

import "time"

const (
	// AddonTypeService add-ons are never stock-limited.
	AddonTypeService = "service"
	// AddonTypeItem add-ons are physical items tracked through StockQuantity.
	AddonTypeItem = "item"
)

// AddonCatalogItem is a sellable add-on published by a provider.
// A nil StockQuantity means unlimited.
type AddonCatalogItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProviderID    uint      `gorm:"column:provider_id;index" json:"provider_id"`
	Name          string    `gorm:"column:name;size:255" json:"name"`
	AddonType     string    `gorm:"column:addon_type;size:32;default:service" json:"addon_type"`
	StockQuantity *int      `gorm:"column:stock_quantity" json:"stock_quantity"`
	Price         float64   `gorm:"column:price" json:"price"`
	IsActive      bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (AddonCatalogItem) TableName() string { return "provider_addons" }

// Unlimited reports whether the add-on bypasses stock accounting.
func (a AddonCatalogItem) Unlimited() bool {
	return a.AddonType != AddonTypeItem || a.StockQuantity == nil
}
