package models

// ResourceAssignment ties a booking to a provider resource such as ("parlour", "Hall A").
type ResourceAssignment struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	BookingID    uint   `gorm:"column:booking_id;index" json:"booking_id"`
	ProviderID   uint   `gorm:"column:provider_id;index:idx_resource_lookup" json:"provider_id"`
	ResourceType string `gorm:"column:resource_type;size:64;index:idx_resource_lookup" json:"resource_type"`
	ResourceName string `gorm:"column:resource_name;size:128;index:idx_resource_lookup" json:"resource_name"`
}

func (ResourceAssignment) TableName() string { return "booking_resources" }
