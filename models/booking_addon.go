// models/booking_addon.go
package models

// BookingAddon is a line item on a booking. Name and Price are copied from the
// catalog when the booking is made; AddonID is nil for free-text custom add-ons.
type BookingAddon struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BookingID uint    `gorm:"column:booking_id;index" json:"booking_id"`
	AddonID   *uint   `gorm:"column:addon_id;index" json:"addon_id,omitempty"`
	Name      string  `gorm:"column:addon_name;size:255" json:"name"`
	Price     float64 `gorm:"column:price" json:"price"`
	Quantity  int     `gorm:"column:quantity;default:1" json:"quantity"`
	IsCustom  bool    `gorm:"column:is_custom;default:false" json:"is_custom"`
}
