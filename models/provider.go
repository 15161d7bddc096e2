// models/provider.go
package models

import "time"

// Provider is a funeral-service business. UserID is the account that owns it.
type Provider struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"column:user_id;index" json:"user_id"`
	BusinessName string    `gorm:"column:business_name;size:255" json:"business_name"`
	Phone        string    `gorm:"column:phone;size:50" json:"phone,omitempty"`
	Email        string    `gorm:"column:email;size:150" json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
