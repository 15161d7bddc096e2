package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"funeral-backend/config"
	"funeral-backend/models"
	"funeral-backend/utils"
)

const (
	ownerUserID    uint = 100
	strangerUserID uint = 200
	customerUserID uint = 300
)

// newTestDB opens a private in-memory sqlite database with the full schema.
// One connection only, so everything inside a transaction must use tx.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	db  *gorm.DB
	now time.Time

	provider  models.Provider
	pkg       models.ServicePackage
	wreath    models.AddonCatalogItem
	streaming models.AddonCatalogItem

	resources    *ResourceAvailabilityService
	inventory    *InventoryAvailabilityService
	validator    *BookingValidator
	confirmation *InventoryConfirmationService
	bookings     *BookingService
}

// newFixture seeds one provider owned by ownerUserID with a 1000.00 package,
// a stock-tracked wreath and an unlimited streaming add-on.
func newFixture(t *testing.T, wreathStock int) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	f := &fixture{db: db, now: now}

	f.provider = models.Provider{UserID: ownerUserID, BusinessName: "Evergreen"}
	require.NoError(t, db.Create(&f.provider).Error)

	f.pkg = models.ServicePackage{ProviderID: f.provider.ID, Name: "Traditional Service", Price: 1000, IsActive: true}
	require.NoError(t, db.Create(&f.pkg).Error)

	f.wreath = models.AddonCatalogItem{
		ProviderID:    f.provider.ID,
		Name:          "Floral Wreath",
		AddonType:     models.AddonTypeItem,
		StockQuantity: utils.PtrInt(wreathStock),
		Price:         150,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&f.wreath).Error)

	f.streaming = models.AddonCatalogItem{
		ProviderID: f.provider.ID,
		Name:       "Live Streaming",
		AddonType:  models.AddonTypeService,
		Price:      300,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&f.streaming).Error)

	f.resources = NewResourceAvailabilityService(db, log)
	f.inventory = NewInventoryAvailabilityService(db, log, NewTTLReservationPolicy(DefaultReservationTTL))
	f.inventory.Now = clock
	f.validator = NewBookingValidator(db, log, f.resources, f.inventory)
	f.confirmation = NewInventoryConfirmationService(log)
	f.bookings = NewBookingService(db, log, f.validator, f.confirmation, NewLocalResourceLocker(time.Second))
	f.bookings.Now = clock
	return f
}

type seedBooking struct {
	status    string
	createdAt time.Time
	total     float64
	dates     []models.BookingDate
	resources []string // resource names, type "parlour"
	addons    []models.BookingAddon
}

// insertBooking writes a booking straight to the database, bypassing validation.
func (f *fixture) insertBooking(t *testing.T, sb seedBooking) models.Booking {
	t.Helper()
	if sb.status == "" {
		sb.status = models.StatusPending
	}
	if sb.createdAt.IsZero() {
		sb.createdAt = f.now
	}
	b := models.Booking{
		CreatedAt:     sb.createdAt,
		UpdatedAt:     sb.createdAt,
		PackageID:     f.pkg.ID,
		ProviderID:    f.provider.ID,
		CustomerID:    customerUserID,
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "555-0100",
		Status:        sb.status,
		TotalAmount:   sb.total,
		StatusHistory: datatypes.JSON("[]"),
	}
	require.NoError(t, f.db.Omit(clause.Associations).Create(&b).Error)

	for _, d := range sb.dates {
		d.BookingID = b.ID
		require.NoError(t, f.db.Create(&d).Error)
	}
	for _, name := range sb.resources {
		r := models.ResourceAssignment{BookingID: b.ID, ProviderID: f.provider.ID, ResourceType: "parlour", ResourceName: name}
		require.NoError(t, f.db.Create(&r).Error)
	}
	for _, a := range sb.addons {
		a.BookingID = b.ID
		require.NoError(t, f.db.Create(&a).Error)
	}
	return b
}

func day(date string) models.BookingDate {
	return models.BookingDate{ServiceDate: date}
}

func slot(date, start, end string) models.BookingDate {
	return models.BookingDate{ServiceDate: date, StartTime: utils.PtrString(start), EndTime: utils.PtrString(end)}
}

func (f *fixture) wreathLine(qty int) models.BookingAddon {
	return models.BookingAddon{AddonID: utils.PtrUint(f.wreath.ID), Name: f.wreath.Name, Price: f.wreath.Price, Quantity: qty}
}

func (f *fixture) stock(t *testing.T, addonID uint) int {
	t.Helper()
	var item models.AddonCatalogItem
	require.NoError(t, f.db.First(&item, addonID).Error)
	require.NotNil(t, item.StockQuantity)
	return *item.StockQuantity
}

func (f *fixture) status(t *testing.T, bookingID uint) string {
	t.Helper()
	var b models.Booking
	require.NoError(t, f.db.First(&b, bookingID).Error)
	return b.Status
}
