// services/resource_availability.go
package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"funeral-backend/models"
	"funeral-backend/utils"
)

// ResourceQuery asks whether a provider resource is free over a date range.
type ResourceQuery struct {
	ProviderID       uint
	ResourceType     string
	ResourceName     string
	StartDate        string
	EndDate          string
	StartTime        *string
	EndTime          *string
	ExcludeBookingID *uint
}

type ResourceAvailability struct {
	IsAvailable   bool   `json:"is_available"`
	ConflictCount int    `json:"conflict_count"`
	Message       string `json:"message"`
}

type ResourceAvailabilityService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewResourceAvailabilityService(db *gorm.DB, log *zap.Logger) *ResourceAvailabilityService {
	return &ResourceAvailabilityService{DB: db, Log: log}
}

type bookedSlot struct {
	BookingID   uint
	ServiceDate string
	StartTime   *string
	EndTime     *string
}

// CheckResourceAvailability never returns an error: anything that prevents a
// definite answer is reported as unavailable.
func (s *ResourceAvailabilityService) CheckResourceAvailability(ctx context.Context, q ResourceQuery) ResourceAvailability {
	q, err := normalizeResourceQuery(q)
	if err != nil {
		return ResourceAvailability{IsAvailable: false, Message: err.Error()}
	}

	count, err := s.countConflicts(s.DB.WithContext(ctx), q, models.ActiveStatuses)
	if err != nil {
		s.Log.Error("resource availability query failed",
			zap.Uint("provider_id", q.ProviderID),
			zap.String("resource_type", q.ResourceType),
			zap.String("resource_name", q.ResourceName),
			zap.Error(err),
		)
		return ResourceAvailability{
			IsAvailable: false,
			Message:     "Unable to verify resource availability, please try again",
		}
	}

	if count > 0 {
		return ResourceAvailability{
			IsAvailable:   false,
			ConflictCount: count,
			Message: fmt.Sprintf("%s %q is already booked between %s and %s",
				q.ResourceType, q.ResourceName, q.StartDate, q.EndDate),
		}
	}
	return ResourceAvailability{IsAvailable: true, Message: "Resource is available"}
}

// countConflicts runs on db so callers can check inside their own transaction.
func (s *ResourceAvailabilityService) countConflicts(db *gorm.DB, q ResourceQuery, statuses []string) (int, error) {
	var slots []bookedSlot
	exclude := nullableID(q.ExcludeBookingID)

	err := db.
		Table("booking_dates AS bd").
		Select("bd.booking_id, bd.service_date, bd.start_time, bd.end_time").
		Joins("JOIN bookings b ON b.id = bd.booking_id").
		Joins("JOIN booking_resources br ON br.booking_id = b.id").
		Where("br.provider_id = ? AND br.resource_type = ? AND br.resource_name = ?",
			q.ProviderID, q.ResourceType, q.ResourceName).
		Where("b.status IN ?", statuses).
		Where("(? IS NULL OR b.id <> ?)", exclude, exclude).
		// each booked date is a one-day span [service_date, service_date]
		Where(`((? >= bd.service_date AND ? <= bd.service_date)
			OR (? >= bd.service_date AND ? <= bd.service_date)
			OR (? <= bd.service_date AND ? >= bd.service_date)
			OR (bd.service_date <= ? AND bd.service_date >= ?))`,
			q.StartDate, q.StartDate,
			q.EndDate, q.EndDate,
			q.StartDate, q.EndDate,
			q.StartDate, q.EndDate,
		).
		Scan(&slots).Error
	if err != nil {
		return 0, err
	}

	// time windows only narrow the result when the request carries a full window
	if q.StartTime == nil || q.EndTime == nil {
		return len(slots), nil
	}

	requested := windowOf(q.StartTime, q.EndTime)
	count := 0
	for _, slot := range slots {
		if requested.overlaps(windowOf(slot.StartTime, slot.EndTime)) {
			count++
		}
	}
	return count, nil
}

func normalizeResourceQuery(q ResourceQuery) (ResourceQuery, error) {
	q.ResourceType = strings.TrimSpace(q.ResourceType)
	q.ResourceName = strings.TrimSpace(q.ResourceName)
	if q.ProviderID == 0 || q.ResourceType == "" || q.ResourceName == "" {
		return q, fmt.Errorf("provider_id, resource_type and resource_name are required")
	}

	start, err := utils.NormalizeDate(q.StartDate)
	if err != nil {
		return q, fmt.Errorf("start_date: %w", err)
	}
	end := start
	if strings.TrimSpace(q.EndDate) != "" {
		if end, err = utils.NormalizeDate(q.EndDate); err != nil {
			return q, fmt.Errorf("end_date: %w", err)
		}
	}
	if end < start {
		return q, fmt.Errorf("end_date must not be before start_date")
	}
	q.StartDate, q.EndDate = start, end

	if q.StartTime, err = utils.NormalizeOptionalClock(q.StartTime); err != nil {
		return q, fmt.Errorf("start_time: %w", err)
	}
	if q.EndTime, err = utils.NormalizeOptionalClock(q.EndTime); err != nil {
		return q, fmt.Errorf("end_time: %w", err)
	}
	return q, nil
}
