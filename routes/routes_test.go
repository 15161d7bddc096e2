package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"funeral-backend/config"
	"funeral-backend/controllers"
	"funeral-backend/services"
)

// Demo seed: provider owned by user 1, package #1 (4500.00),
// Floral Wreath #1 (item, stock 10), candles #2 (item, stock 25), streaming #3.
const (
	providerOwner = "1"
	customerID    = "300"
	strangerID    = "200"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zap.NewNop()
	require.NoError(t, config.Migrate(db))
	require.NoError(t, config.SeedDatabase(db, log))

	resourceSvc := services.NewResourceAvailabilityService(db, log)
	inventorySvc := services.NewInventoryAvailabilityService(db, log, nil)
	validator := services.NewBookingValidator(db, log, resourceSvc, inventorySvc)
	bookingSvc := services.NewBookingService(db, log, validator,
		services.NewInventoryConfirmationService(log), services.NewLocalResourceLocker(time.Second))

	r := SetupRouter(log, nil,
		controllers.NewAvailabilityController(resourceSvc, inventorySvc),
		controllers.NewBookingController(bookingSvc, validator),
	)
	return r, db
}

func do(r *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const createBody = `{
	"package_id": 1,
	"customer_name": "Jane Doe",
	"customer_email": "jane@example.com",
	"customer_phone": "555-0100",
	"service_dates": [{"date": "2030-05-10", "start_time": "10:00", "end_time": "12:00", "event_type": "funeral"}],
	"selected_addons": [{"addon_id": 1, "quantity": 2}, {"addon_id": 3}],
	"resources": [{"resource_type": "parlour", "resource_name": "Hall A"}]
}`

func createBooking(t *testing.T, r *gin.Engine) int64 {
	t.Helper()
	w := do(r, http.MethodPost, "/api/bookings", customerID, createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "booking_id").Int()
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := do(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCheckAvailability(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, http.MethodPost, "/checkAvailability", "", `{"type":"resource","provider_id":1,"resource_type":"parlour","resource_name":"Hall A","start_date":"2030-05-10"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "resource", gjson.Get(body, "type").String())
	assert.True(t, gjson.Get(body, "data.is_available").Bool())

	createBooking(t, r)

	w = do(r, http.MethodPost, "/api/checkAvailability", "", `{"type":"resource","provider_id":1,"resource_type":"parlour","resource_name":"Hall A","start_date":"2030-05-09","end_date":"2030-05-11"}`)
	body = w.Body.String()
	assert.False(t, gjson.Get(body, "data.is_available").Bool())
	assert.EqualValues(t, 1, gjson.Get(body, "data.conflict_count").Int())

	w = do(r, http.MethodPost, "/api/checkAvailability", "", `{"type":"inventory","addon_id":1,"quantity":8}`)
	body = w.Body.String()
	assert.True(t, gjson.Get(body, "data.is_available").Bool())
	assert.EqualValues(t, 8, gjson.Get(body, "data.available_stock").Int())
	assert.EqualValues(t, 2, gjson.Get(body, "data.reserved_quantity").Int())
	assert.EqualValues(t, 10, gjson.Get(body, "data.total_stock").Int())
}

func TestCheckAvailabilityRejectsBadRequests(t *testing.T) {
	r, _ := setupTestRouter(t)

	for _, body := range []string{
		`{"type":"room"}`,
		`{"type":"resource","provider_id":1,"resource_type":"parlour","resource_name":"Hall A","start_date":"10/05/2030"}`,
		`{"type":"resource","provider_id":1,"resource_type":"parlour","resource_name":"Hall A","start_date":"2030-05-10","start_time":"25:00"}`,
		`{"type":"resource","provider_id":1}`,
		`{"type":"inventory"}`,
	} {
		w := do(r, http.MethodPost, "/checkAvailability", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
	}
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, http.MethodPost, "/api/bookings", customerID, createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := w.Body.String()
	id := gjson.Get(body, "booking_id").Int()
	assert.Equal(t, "pending", gjson.Get(body, "status").String())
	assert.Equal(t, 5100.0, gjson.Get(body, "total_amount").Float())
	assert.True(t, strings.HasPrefix(gjson.Get(body, "booking_reference").String(), "FS-"))

	path := fmt.Sprintf("/api/bookings/%d", id)

	w = do(r, http.MethodGet, path, customerID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, gjson.Get(w.Body.String(), "data.addons.#").Int())
	assert.Equal(t, "2030-05-10", gjson.Get(w.Body.String(), "data.service_dates.0.service_date").String())

	w = do(r, http.MethodGet, path, strangerID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, path+"/confirm", customerID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, path+"/confirm", providerOwner, `{"note":"all set"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", gjson.Get(w.Body.String(), "status").String())
	assert.EqualValues(t, 1, gjson.Get(w.Body.String(), "items_decremented").Int())

	w = do(r, http.MethodPost, path+"/confirm", providerOwner, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPatch, path+"/status", providerOwner, `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "in_progress", gjson.Get(w.Body.String(), "status").String())

	w = do(r, http.MethodPost, path+"/cancel", customerID, `{"cancelled_by":"customer","reason":"family request"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, 4845.0, gjson.Get(w.Body.String(), "refund_amount").Float())

	w = do(r, http.MethodPost, path+"/cancel", customerID, `{"cancelled_by":"customer"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Booking is already cancelled", gjson.Get(w.Body.String(), "message").String())
}

func TestCreateBookingErrors(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, http.MethodPost, "/api/bookings", customerID, `{"package_id":1,"service_dates":[{"date":"2030-05-10"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.EqualValues(t, 3, gjson.Get(w.Body.String(), "errors.#").Int())

	w = do(r, http.MethodPost, "/api/bookings", customerID, `{"package_id":1,"service_dates":[{"date":"tomorrow"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/bookings", customerID, strings.Replace(createBody, `"package_id": 1`, `"package_id": 99`, 1))
	assert.Equal(t, http.StatusNotFound, w.Code)

	createBooking(t, r)
	w = do(r, http.MethodPost, "/api/bookings", customerID, createBody)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, gjson.Get(w.Body.String(), "errors.0").String(), "Hall A")
}

func TestValidateEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, http.MethodPost, "/api/bookings/validate", "", `{"provider_id":1,"package_id":1,"selected_addons":[{"addon_id":1,"quantity":11}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.False(t, gjson.Get(body, "data.is_valid").Bool())
	assert.Contains(t, gjson.Get(body, "data.error_messages").String(), "Insufficient stock for Floral Wreath")
}

func TestBookingIDAndStatusValidation(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, http.MethodGet, "/api/bookings/abc", customerID, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/bookings/9999", customerID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := createBooking(t, r)
	w = do(r, http.MethodPatch, fmt.Sprintf("/api/bookings/%d/status", id), providerOwner, `{"status":"archived"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, fmt.Sprintf("/api/bookings/%d/cancel", id), customerID, `{"cancelled_by":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseCorsOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, parseCorsOrigins(nil))
	assert.Equal(t, []string{"*"}, parseCorsOrigins([]string{" ", ""}))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, parseCorsOrigins([]string{" https://a.example", "https://b.example "}))
}
