package models

import "time"

type ServicePackage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProviderID  uint      `gorm:"column:provider_id;index" json:"provider_id"`
	Name        string    `gorm:"column:name;size:255" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Price       float64   `gorm:"column:price" json:"price"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Provider Provider `gorm:"foreignKey:ProviderID;references:ID" json:"provider,omitempty"`
}
