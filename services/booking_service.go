// services/booking_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"funeral-backend/models"
	"funeral-backend/utils"
)

// Actors recorded on status changes and cancellations.
const (
	ActorCustomer = "customer"
	ActorProvider = "provider"

	// Refund policy. Not configurable at runtime.
	CustomerRefundRate = 0.95
	ProviderRefundRate = 1.0
)

// Caller is the authenticated account making the request.
type Caller struct {
	UserID uint
}

type CreateBookingInput struct {
	PackageID     uint
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	// ServiceDate/StartTime/EndTime/EventType describe a single-day booking;
	// ServiceDates is used when several days are booked.
	ServiceDate  string
	StartTime    *string
	EndTime      *string
	EventType    string
	ServiceDates []ServiceDateInput

	SelectedAddons  []AddonSelection
	Resources       []ResourceRequirement
	TotalAmount     float64
	SpecialRequests string
}

func (in CreateBookingInput) dates() []ServiceDateInput {
	if len(in.ServiceDates) > 0 {
		return in.ServiceDates
	}
	if strings.TrimSpace(in.ServiceDate) == "" {
		return nil
	}
	return []ServiceDateInput{{
		Date:      in.ServiceDate,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		EventType: in.EventType,
	}}
}

type ConfirmResult struct {
	Booking   *models.Booking
	Inventory InventoryConfirmation
}

// BookingService owns every booking status change.
type BookingService struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Validator *BookingValidator
	Inventory *InventoryConfirmationService
	Locker    ResourceLocker

	// RestockOnCancel returns decremented stock when a confirmed or in-progress
	// booking is cancelled. Off by default.
	RestockOnCancel bool
	Now             func() time.Time
}

func NewBookingService(db *gorm.DB, log *zap.Logger, validator *BookingValidator, inventory *InventoryConfirmationService, locker ResourceLocker) *BookingService {
	return &BookingService{
		DB:        db,
		Log:       log,
		Validator: validator,
		Inventory: inventory,
		Locker:    locker,
		Now:       time.Now,
	}
}

func (s *BookingService) now() time.Time {
	return s.Now().UTC()
}

// ---------------------------
// Create
// ---------------------------

func validateCreateInput(in CreateBookingInput) ([]models.BookingDate, error) {
	verr := newValidationError()

	if strings.TrimSpace(in.CustomerName) == "" {
		verr.addField("customer_name", "is required")
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		verr.addField("customer_email", "is required")
	} else if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
		verr.addField("customer_email", "must be a valid email address")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		verr.addField("customer_phone", "is required")
	}
	if in.PackageID == 0 {
		verr.addField("package_id", "is required")
	}
	if in.TotalAmount < 0 {
		verr.addField("total_amount", "must not be negative")
	}

	raw := in.dates()
	if len(raw) == 0 {
		verr.addField("service_date", "at least one service date is required")
	}
	dates := make([]models.BookingDate, 0, len(raw))
	for i, d := range raw {
		field := fmt.Sprintf("service_dates[%d]", i)
		date, err := utils.NormalizeDate(d.Date)
		if err != nil {
			verr.addField(field, err.Error())
			continue
		}
		start, err := utils.NormalizeOptionalClock(d.StartTime)
		if err != nil {
			verr.addField(field+".start_time", err.Error())
			continue
		}
		end, err := utils.NormalizeOptionalClock(d.EndTime)
		if err != nil {
			verr.addField(field+".end_time", err.Error())
			continue
		}
		if start != nil && end != nil && *end <= *start {
			verr.addField(field, "end_time must be after start_time")
			continue
		}
		dates = append(dates, models.BookingDate{
			ServiceDate: date,
			StartTime:   start,
			EndTime:     end,
			EventType:   strings.TrimSpace(d.EventType),
		})
	}

	for i, a := range in.SelectedAddons {
		field := fmt.Sprintf("selected_addons[%d]", i)
		if a.Quantity < 0 {
			verr.addField(field+".quantity", "must not be negative")
		}
		if a.AddonID == nil && strings.TrimSpace(a.Name) == "" {
			verr.addField(field+".name", "custom add-ons need a name")
		}
	}
	for i, r := range in.Resources {
		if strings.TrimSpace(r.ResourceType) == "" || strings.TrimSpace(r.ResourceName) == "" {
			verr.addField(fmt.Sprintf("resources[%d]", i), "resource_type and resource_name are required")
		}
	}

	if !verr.empty() {
		return nil, verr
	}
	return dates, nil
}

func resourceKeys(providerID uint, resources []models.ResourceAssignment, dates []models.BookingDate) []ResourceKey {
	keys := make([]ResourceKey, 0, len(resources)*len(dates))
	for _, r := range resources {
		for _, d := range dates {
			keys = append(keys, ResourceKey{
				ProviderID:   providerID,
				ResourceType: r.ResourceType,
				ResourceName: r.ResourceName,
				Date:         d.ServiceDate,
			})
		}
	}
	return keys
}

// CreateBooking validates the request, then writes the booking and all of its
// children in one transaction. New bookings start out pending.
func (s *BookingService) CreateBooking(ctx context.Context, caller Caller, in CreateBookingInput) (*models.Booking, error) {
	dates, err := validateCreateInput(in)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)

	var pkg models.ServicePackage
	if err := db.First(&pkg, in.PackageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("load package %d: %w", in.PackageID, err)
	}

	resources := make([]models.ResourceAssignment, 0, len(in.Resources))
	for _, r := range in.Resources {
		resources = append(resources, models.ResourceAssignment{
			ProviderID:   pkg.ProviderID,
			ResourceType: strings.TrimSpace(r.ResourceType),
			ResourceName: strings.TrimSpace(r.ResourceName),
		})
	}

	release, err := s.Locker.Acquire(ctx, resourceKeys(pkg.ProviderID, resources, dates))
	if err != nil {
		return nil, err
	}
	defer release()

	verdict := s.Validator.ValidateBooking(ctx, BookingValidationInput{
		ProviderID: pkg.ProviderID,
		PackageID:  pkg.ID,
		Addons:     in.SelectedAddons,
		Dates:      in.dates(),
		Resources:  in.Resources,
	})
	if !verdict.IsValid {
		verr := newValidationError()
		for _, msg := range verdict.Errors {
			verr.add(msg)
		}
		return nil, verr
	}

	addons, err := s.snapshotAddons(db, in.SelectedAddons)
	if err != nil {
		return nil, err
	}

	total := in.TotalAmount
	if total == 0 {
		total = pkg.Price
		for _, a := range addons {
			total += a.Price * float64(a.Quantity)
		}
	}

	now := s.now()
	history, err := appendHistory(nil, models.StatusChange{
		To:    models.StatusPending,
		Actor: ActorCustomer,
		Note:  "Booking created",
		At:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("encode status history: %w", err)
	}

	booking := models.Booking{
		CreatedAt:       now,
		UpdatedAt:       now,
		PackageID:       pkg.ID,
		ProviderID:      pkg.ProviderID,
		CustomerID:      caller.UserID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		Status:          models.StatusPending,
		TotalAmount:     utils.RoundMoney(total),
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		StatusHistory:   history,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		for i := range dates {
			dates[i].BookingID = booking.ID
			if err := tx.Create(&dates[i]).Error; err != nil {
				return fmt.Errorf("failed to create booking date %s: %w", dates[i].ServiceDate, err)
			}
		}
		for i := range resources {
			resources[i].BookingID = booking.ID
			if err := tx.Create(&resources[i]).Error; err != nil {
				return fmt.Errorf("failed to assign %s %q: %w", resources[i].ResourceType, resources[i].ResourceName, err)
			}
		}
		for i := range addons {
			addons[i].BookingID = booking.ID
			if err := tx.Create(&addons[i]).Error; err != nil {
				return fmt.Errorf("failed to create booking add-on %q: %w", addons[i].Name, err)
			}
		}

		booking.ReferenceCode = utils.BookingReference(booking.ID, now)
		if err := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("reference_code", booking.ReferenceCode).Error; err != nil {
			return fmt.Errorf("failed to set reference code: %w", err)
		}
		return nil
	})
	if txErr != nil {
		s.Log.Error("create booking rolled back", zap.Uint("package_id", pkg.ID), zap.Error(txErr))
		return nil, txErr
	}

	booking.Dates = dates
	booking.Resources = resources
	booking.Addons = addons
	s.Log.Info("booking created",
		zap.Uint("booking_id", booking.ID),
		zap.String("reference", booking.ReferenceCode),
		zap.Uint("provider_id", booking.ProviderID),
	)
	return &booking, nil
}

// snapshotAddons copies catalog name and price onto the booking lines so later
// catalog edits do not rewrite past bookings.
func (s *BookingService) snapshotAddons(db *gorm.DB, selected []AddonSelection) ([]models.BookingAddon, error) {
	out := make([]models.BookingAddon, 0, len(selected))
	for _, sel := range selected {
		line := models.BookingAddon{Quantity: sel.quantity()}
		if sel.AddonID == nil {
			line.IsCustom = true
			line.Name = strings.TrimSpace(sel.Name)
			if sel.Price != nil {
				line.Price = *sel.Price
			}
			out = append(out, line)
			continue
		}

		var item models.AddonCatalogItem
		if err := db.First(&item, *sel.AddonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verr := newValidationError()
				verr.add(fmt.Sprintf("Add-on #%d: Add-on not found", *sel.AddonID))
				return nil, verr
			}
			return nil, fmt.Errorf("load add-on %d: %w", *sel.AddonID, err)
		}
		id := item.ID
		line.AddonID = &id
		line.Name = item.Name
		line.Price = item.Price
		out = append(out, line)
	}
	return out, nil
}

// ---------------------------
// Reads & ownership
// ---------------------------

func (s *BookingService) loadBooking(db *gorm.DB, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := db.Preload("Dates").Preload("Resources").Preload("Addons").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

// ownsProvider checks the caller against the provider of the booking's package.
func (s *BookingService) ownsProvider(db *gorm.DB, caller Caller, booking *models.Booking) (bool, error) {
	providerID := booking.ProviderID
	var pkg models.ServicePackage
	err := db.First(&pkg, booking.PackageID).Error
	switch {
	case err == nil:
		providerID = pkg.ProviderID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("load package %d: %w", booking.PackageID, err)
	}

	var provider models.Provider
	if err := db.First(&provider, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrProviderNotFound
		}
		return false, fmt.Errorf("load provider %d: %w", providerID, err)
	}
	return caller.UserID != 0 && provider.UserID == caller.UserID, nil
}

// GetBookingDetails is visible to the booking's customer and the owning provider.
func (s *BookingService) GetBookingDetails(ctx context.Context, caller Caller, bookingID uint) (*models.Booking, error) {
	db := s.DB.WithContext(ctx)
	booking, err := s.loadBooking(db, bookingID)
	if err != nil {
		return nil, err
	}
	if caller.UserID != 0 && booking.CustomerID == caller.UserID {
		return booking, nil
	}
	owner, err := s.ownsProvider(db, caller, booking)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrPermissionDenied
	}
	return booking, nil
}

// ---------------------------
// Status changes
// ---------------------------

func appendNote(notes, line string, at time.Time) string {
	entry := fmt.Sprintf("[%s] %s", at.Format("2006-01-02 15:04"), line)
	if strings.TrimSpace(notes) == "" {
		return entry
	}
	return notes + "\n" + entry
}

func appendHistory(raw datatypes.JSON, change models.StatusChange) (datatypes.JSON, error) {
	var entries []models.StatusChange
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entries); err != nil {
			entries = nil
		}
	}
	entries = append(entries, change)
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func noteText(action, actor, note string) string {
	text := fmt.Sprintf("%s by %s", action, actor)
	if note = strings.TrimSpace(note); note != "" {
		text += ": " + note
	}
	return text
}

// transition applies a status change only if the booking is still in the
// status it was read in, so two racing requests cannot both move it.
func (s *BookingService) transition(tx *gorm.DB, booking *models.Booking, to, actor, note string, extra map[string]interface{}) error {
	now := s.now()
	history, err := appendHistory(booking.StatusHistory, models.StatusChange{
		From:  booking.Status,
		To:    to,
		Actor: actor,
		Note:  note,
		At:    now,
	})
	if err != nil {
		return fmt.Errorf("encode status history: %w", err)
	}

	updates := map[string]interface{}{
		"status":         to,
		"notes":          appendNote(booking.Notes, note, now),
		"status_history": history,
		"updated_at":     now,
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update booking status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: booking %d is no longer %s", ErrInvalidTransition, booking.ID, booking.Status)
	}
	return nil
}

// ConfirmBooking moves a pending booking to confirmed and commits its stock.
// Any failure leaves the booking pending.
func (s *BookingService) ConfirmBooking(ctx context.Context, caller Caller, bookingID uint, note string) (*ConfirmResult, error) {
	db := s.DB.WithContext(ctx)
	booking, err := s.loadBooking(db, bookingID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ownsProvider(db, caller, booking)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrPermissionDenied
	}
	if booking.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: cannot confirm a %s booking", ErrInvalidTransition, booking.Status)
	}

	release, err := s.Locker.Acquire(ctx, resourceKeys(booking.ProviderID, booking.Resources, booking.Dates))
	if err != nil {
		return nil, err
	}
	defer release()

	var inventory InventoryConfirmation
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkCommittedResources(tx, booking); err != nil {
			return err
		}

		now := s.now()
		if err := s.transition(tx, booking, models.StatusConfirmed, ActorProvider,
			noteText("Booking confirmed", ActorProvider, note),
			map[string]interface{}{"confirmed_at": now},
		); err != nil {
			return err
		}

		res, err := s.Inventory.ConfirmInventory(tx, booking.ID)
		inventory = res
		return err
	})
	if txErr != nil {
		s.Log.Warn("booking confirmation rolled back", zap.Uint("booking_id", bookingID), zap.Error(txErr))
		return nil, txErr
	}

	confirmed, err := s.loadBooking(db, bookingID)
	if err != nil {
		return nil, err
	}
	s.Log.Info("booking confirmed",
		zap.Uint("booking_id", bookingID),
		zap.Int("items_decremented", inventory.ItemsDecremented),
	)
	return &ConfirmResult{Booking: confirmed, Inventory: inventory}, nil
}

// checkCommittedResources re-checks each booked resource-day against bookings
// that are already confirmed or in progress.
func (s *BookingService) checkCommittedResources(tx *gorm.DB, booking *models.Booking) error {
	if len(booking.Resources) == 0 {
		return nil
	}
	resources := s.Validator.Resources
	exclude := booking.ID
	committed := []string{models.StatusConfirmed, models.StatusInProgress}

	for _, r := range booking.Resources {
		for _, d := range booking.Dates {
			count, err := resources.countConflicts(tx, ResourceQuery{
				ProviderID:       r.ProviderID,
				ResourceType:     r.ResourceType,
				ResourceName:     r.ResourceName,
				StartDate:        d.ServiceDate,
				EndDate:          d.ServiceDate,
				StartTime:        d.StartTime,
				EndTime:          d.EndTime,
				ExcludeBookingID: &exclude,
			}, committed)
			if err != nil {
				return fmt.Errorf("check resource %s %q: %w", r.ResourceType, r.ResourceName, err)
			}
			if count > 0 {
				return fmt.Errorf("%w: %s %q is already booked on %s", ErrResourceConflict, r.ResourceType, r.ResourceName, d.ServiceDate)
			}
		}
	}
	return nil
}

// CancelBooking cancels an active booking and records the refund. Customers
// get CustomerRefundRate of the total, provider cancellations refund in full.
func (s *BookingService) CancelBooking(ctx context.Context, caller Caller, bookingID uint, cancelledBy, reason string) (*models.Booking, error) {
	cancelledBy = strings.ToLower(strings.TrimSpace(cancelledBy))
	if cancelledBy != ActorCustomer && cancelledBy != ActorProvider {
		verr := newValidationError()
		verr.addField("cancelled_by", "must be customer or provider")
		return nil, verr
	}

	db := s.DB.WithContext(ctx)
	booking, err := s.loadBooking(db, bookingID)
	if err != nil {
		return nil, err
	}

	if cancelledBy == ActorCustomer {
		if caller.UserID == 0 || booking.CustomerID != caller.UserID {
			return nil, ErrPermissionDenied
		}
	} else {
		owner, err := s.ownsProvider(db, caller, booking)
		if err != nil {
			return nil, err
		}
		if !owner {
			return nil, ErrPermissionDenied
		}
	}

	switch booking.Status {
	case models.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case models.StatusCompleted:
		return nil, ErrBookingCompleted
	}
	if !models.CanTransition(booking.Status, models.StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, booking.Status)
	}

	rate := CustomerRefundRate
	if cancelledBy == ActorProvider {
		rate = ProviderRefundRate
	}
	refund := utils.RoundMoney(booking.TotalAmount * rate)
	previous := booking.Status

	txErr := db.Transaction(func(tx *gorm.DB) error {
		now := s.now()
		if err := s.transition(tx, booking, models.StatusCancelled, cancelledBy,
			noteText("Booking cancelled", cancelledBy, reason),
			map[string]interface{}{
				"refund_amount":       refund,
				"cancellation_reason": strings.TrimSpace(reason),
				"cancelled_by":        cancelledBy,
				"cancelled_at":        now,
			},
		); err != nil {
			return err
		}

		if s.RestockOnCancel && (previous == models.StatusConfirmed || previous == models.StatusInProgress) {
			n, err := s.Inventory.RestockInventory(tx, booking.ID)
			if err != nil {
				return err
			}
			s.Log.Info("restocked cancelled booking", zap.Uint("booking_id", booking.ID), zap.Int("items", n))
		}
		return nil
	})
	if txErr != nil {
		s.Log.Warn("booking cancellation rolled back", zap.Uint("booking_id", bookingID), zap.Error(txErr))
		return nil, txErr
	}

	s.Log.Info("booking cancelled",
		zap.Uint("booking_id", bookingID),
		zap.String("cancelled_by", cancelledBy),
		zap.Float64("refund_amount", refund),
	)
	return s.loadBooking(db, bookingID)
}

// UpdateStatus is the provider's generic status change. Confirmation and
// cancellation are routed to their dedicated flows so their side effects run.
func (s *BookingService) UpdateStatus(ctx context.Context, caller Caller, bookingID uint, status, note string) (*models.Booking, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsKnownStatus(status) {
		verr := newValidationError()
		verr.addField("status", "unknown status")
		return nil, verr
	}

	switch status {
	case models.StatusConfirmed:
		res, err := s.ConfirmBooking(ctx, caller, bookingID, note)
		if err != nil {
			return nil, err
		}
		return res.Booking, nil
	case models.StatusCancelled:
		return s.CancelBooking(ctx, caller, bookingID, ActorProvider, note)
	}

	db := s.DB.WithContext(ctx)
	booking, err := s.loadBooking(db, bookingID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ownsProvider(db, caller, booking)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrPermissionDenied
	}
	if models.IsTerminal(booking.Status) {
		return nil, fmt.Errorf("%w: %s bookings cannot change status", ErrInvalidTransition, booking.Status)
	}
	if !models.CanTransition(booking.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, status)
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, booking, status, ActorProvider,
			noteText("Status changed to "+status, ActorProvider, note), nil)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.Log.Info("booking status updated", zap.Uint("booking_id", bookingID), zap.String("status", status))
	return s.loadBooking(db, bookingID)
}
