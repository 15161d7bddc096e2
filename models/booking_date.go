package models

// BookingDate is one service day of a booking. Dates are stored as YYYY-MM-DD and
// times as HH:MM:SS so range predicates compare the same way on every driver.
type BookingDate struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	BookingID   uint    `gorm:"column:booking_id;index" json:"booking_id"`
	ServiceDate string  `gorm:"column:service_date;type:varchar(10);index" json:"service_date"`
	StartTime   *string `gorm:"column:start_time;type:varchar(8)" json:"start_time,omitempty"`
	EndTime     *string `gorm:"column:end_time;type:varchar(8)" json:"end_time,omitempty"`
	EventType   string  `gorm:"column:event_type;size:64" json:"event_type,omitempty"`
}
