package models

import (
	"time"

	"gorm.io/datatypes"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PackageID     uint   `gorm:"column:package_id;index" json:"package_id"`
	ProviderID    uint   `gorm:"column:provider_id;index" json:"provider_id"`
	CustomerID    uint   `gorm:"column:customer_id;index" json:"customer_id"`
	CustomerName  string `gorm:"column:customer_name;size:255" json:"customer_name"`
	CustomerEmail string `gorm:"column:customer_email;size:150" json:"customer_email"`
	CustomerPhone string `gorm:"column:customer_phone;size:50" json:"customer_phone"`
	ReferenceCode string `gorm:"column:reference_code;size:64;index" json:"reference_code,omitempty"`
	Status        string `gorm:"column:status;size:32;index;default:pending" json:"status"`

	TotalAmount  float64  `gorm:"column:total_amount" json:"total_amount"`
	RefundAmount *float64 `gorm:"column:refund_amount" json:"refund_amount,omitempty"`

	CancellationReason string     `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        string     `gorm:"column:cancelled_by;size:32" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	ConfirmedAt        *time.Time `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`

	SpecialRequests string         `gorm:"column:special_requests;type:text" json:"special_requests,omitempty"`
	Notes           string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
	StatusHistory   datatypes.JSON `gorm:"column:status_history" json:"status_history,omitempty"`

	Package   ServicePackage       `gorm:"foreignKey:PackageID;references:ID" json:"package,omitempty"`
	Dates     []BookingDate        `gorm:"foreignKey:BookingID" json:"service_dates"`
	Addons    []BookingAddon       `gorm:"foreignKey:BookingID" json:"addons"`
	Resources []ResourceAssignment `gorm:"foreignKey:BookingID" json:"resources"`
}

// StatusChange is one entry of Booking.StatusHistory.
type StatusChange struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Actor string    `json:"actor"`
	Note  string    `json:"note,omitempty"`
	At    time.Time `json:"at"`
}
