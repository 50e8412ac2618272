package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"property-backoffice/internal/cache"
	"property-backoffice/internal/config"
	"property-backoffice/internal/database"
	"property-backoffice/internal/database/dbtest"
	"property-backoffice/internal/geocode"
	"property-backoffice/internal/models"
	"property-backoffice/internal/ratelimit"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	db     *database.GormDB
}

func newTestAPI(t *testing.T, configure ...func(*Deps)) *testAPI {
	t.Helper()
	gdb := dbtest.New(t)
	deps := Deps{
		DB:     gdb,
		Cache:  cache.NewMemory(time.Minute),
		Server: config.DefaultConfig().Server,
	}
	for _, fn := range configure {
		fn(&deps)
	}
	return &testAPI{t: t, router: New(deps), db: gdb}
}

func (a *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *testAPI) createProperty(name string) models.Property {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/properties", gin.H{
		"property_name": name,
		"address":       "12 Oak St",
		"city":          "Springfield",
		"state":         "IL",
		"zip_code":      "62701",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Property](a.t, w)
}

func TestHealth_OK(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	router := New(Deps{DB: database.NewGormDBFromDB(gormDB)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestIDAndCORS(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.Header.Set("Origin", "http://example.test")
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestProperties_CRUD(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/properties", gin.H{"address": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	p := api.createProperty("Oak Duplex")
	assert.Equal(t, models.PropertyStatusActive, p.Status)

	w = api.do(http.MethodPatch, "/api/properties/"+itoa(p.ID), gin.H{"owner": "Pat Smith", "id": 42, "created_at": "x"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Property](t, w)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Pat Smith", updated.Owner)
	assert.Equal(t, "Oak Duplex", updated.PropertyName)

	w = api.do(http.MethodPatch, "/api/properties/"+itoa(p.ID), gin.H{"lat": "north"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/properties?q=oak", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Property](t, w), 1)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/properties/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/properties/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/properties", "{not json").Code)
}

func TestProperties_DeleteCascades(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Doomed")
	pid := itoa(p.ID)

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/purchase_details", gin.H{"property_id": p.ID, "purchase_price": 150000}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/loan_details", gin.H{"property_id": p.ID, "loan_number": "L-1"}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/rentlog", gin.H{"property_id": p.ID, "month": 1, "year": 2024, "rent_amount": 1200}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/paymentlog", gin.H{"property_id": p.ID, "month": 1, "year": 2024, "payment_amount": 800}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/transactions", gin.H{"property_id": p.ID, "transaction_amount": 50, "transaction_date": "2024-02-01", "transaction_type": "Repairs"}).Code)

	w := api.do(http.MethodDelete, "/api/properties/"+pid, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/properties/"+pid, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/purchase_details?property_id="+pid, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/loan_details?property_id="+pid, nil).Code)
	assert.Empty(t, decode[[]models.RentLog](t, api.do(http.MethodGet, "/api/rentlog?property_id="+pid, nil)))
	assert.Empty(t, decode[[]models.PaymentLog](t, api.do(http.MethodGet, "/api/paymentlog?property_id="+pid+"&year=2024", nil)))
	assert.Empty(t, decode[[]models.Transaction](t, api.do(http.MethodGet, "/api/transactions?property_id="+pid, nil)))

	logs := decode[map[string]interface{}](t, api.do(http.MethodGet, "/api/admin/delete-logs", nil))
	assert.EqualValues(t, 1, logs["count"])
}

func TestProperties_DeleteMissingIs404(t *testing.T) {
	api := newTestAPI(t)
	kept := api.createProperty("Kept")

	w := api.do(http.MethodDelete, "/api/properties/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[map[string]interface{}](t, w)["error"])

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/properties/"+itoa(kept.ID), nil).Code)
}

func TestTransactions_NewestFirst(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/transactions", gin.H{
		"property_id": p.ID, "transaction_amount": 80, "transaction_date": "2024-01-15", "transaction_type": "Utilities",
	}).Code)
	w := api.do(http.MethodPost, "/api/transactions", gin.H{
		"property_id": p.ID, "transaction_amount": 250.00, "transaction_date": "2024-03-01", "transaction_type": "Repairs",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := decode[[]models.Transaction](t, api.do(http.MethodGet, "/api/transactions?property_id="+itoa(p.ID), nil))
	require.Len(t, list, 2)
	assert.InDelta(t, 250.00, list[0].TransactionAmount, 0.001)
	assert.Equal(t, "Repairs", list[0].TransactionType)
	assert.Equal(t, "2024-03-01", list[0].TransactionDate.Format("2006-01-02"))

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/transactions", gin.H{
		"property_id": p.ID, "transaction_amount": 1, "transaction_date": "03/01/2024", "transaction_type": "Repairs",
	}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/transactions", nil).Code)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/transactions/"+itoa(list[1].ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/transactions/"+itoa(list[1].ID), nil).Code)
}

func TestTransactions_ShortFieldNames(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")

	w := api.do(http.MethodPost, "/api/transactions", gin.H{
		"property_id": p.ID, "amount": 250.00, "date": "2024-03-01", "transaction_type": "Repairs",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := decode[[]map[string]interface{}](t, api.do(http.MethodGet, "/api/transactions?property_id="+itoa(p.ID), nil))
	require.Len(t, list, 1)
	assert.InDelta(t, 250.00, list[0]["transaction_amount"], 0.001)
	assert.NotContains(t, list[0], "amount")

	// long names win when both are sent
	w = api.do(http.MethodPost, "/api/transactions", gin.H{
		"property_id": p.ID, "transaction_amount": 10, "amount": 99, "date": "2024-04-01", "transaction_type": "Taxes",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.InDelta(t, 10, decode[models.Transaction](t, w).TransactionAmount, 0.001)

	w = api.do(http.MethodPost, "/api/transactions", gin.H{"property_id": p.ID, "date": "2024-03-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoanDetails(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")

	w := api.do(http.MethodGet, "/api/loan_details?property_id="+itoa(p.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, w.Body.String())

	w = api.do(http.MethodPost, "/api/loan_details", gin.H{"property_id": p.ID, "loan_number": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/loan_details", gin.H{
		"property_id": p.ID, "loan_number": "A-1", "lender": "First Bank", "loan_amount": 120000,
		"interest_rate": 6.5, "loan_term_months": 360, "start_date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loan := decode[models.LoanDetails](t, w)

	w = api.do(http.MethodPatch, "/api/loan_details/"+itoa(loan.ID), gin.H{"loan_term_months": 240, "maturity_date": "2044-01-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.LoanDetails](t, w)
	require.NotNil(t, updated.LoanTermMonths)
	assert.Equal(t, 240, *updated.LoanTermMonths)
	require.NotNil(t, updated.MaturityDate)
	assert.Equal(t, "First Bank", updated.Lender)

	w = api.do(http.MethodPatch, "/api/loan_details/"+itoa(loan.ID), gin.H{"loan_term_months": 12.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/loan_details?property_id="+itoa(p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A-1", decode[models.LoanDetails](t, w).LoanNumber)
}

func TestPurchaseDetails_SecondIsConflict(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/purchase_details", gin.H{"property_id": p.ID, "closing_date": "2020-06-30"}).Code)
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/purchase_details", gin.H{"property_id": p.ID}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/purchase_details", gin.H{"property_id": 999}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/purchase_details", nil).Code)

	purchase := decode[models.PurchaseDetails](t, api.do(http.MethodGet, "/api/purchase_details?property_id="+itoa(p.ID), nil))
	w := api.do(http.MethodPatch, "/api/purchase_details/"+itoa(purchase.ID), gin.H{"closing_date": nil, "notes": "reset"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.PurchaseDetails](t, w)
	assert.Nil(t, updated.ClosingDate)
	assert.Equal(t, "reset", updated.Notes)
}

func TestRentLog_PostTwiceKeepsOneRow(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")
	body := gin.H{"property_id": p.ID, "month": 4, "year": 2024, "rent_amount": 1200, "check_number": "1001"}

	first := api.do(http.MethodPost, "/api/rentlog", body)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := api.do(http.MethodPost, "/api/rentroll", gin.H{"property_id": p.ID, "month": 4, "year": 2024, "notes": "paid in person"})
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	logs := decode[[]models.RentLog](t, api.do(http.MethodGet, "/api/rentlog?property_id="+itoa(p.ID)+"&year=2024", nil))
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].RentAmount)
	assert.InDelta(t, 1200, *logs[0].RentAmount, 0.001)
	assert.Equal(t, "1001", logs[0].CheckNumber)
	assert.Equal(t, "paid in person", logs[0].Notes)
	assert.NotNil(t, logs[0].DepositDate, "amount without a date stamps today")

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/rentlog", gin.H{"property_id": p.ID, "month": 13, "year": 2024}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/rentlog", gin.H{"property_id": 999, "month": 1, "year": 2024}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/rentlog?property_id="+itoa(p.ID)+"&year=abc", nil).Code)
}

func TestContacts_PhoneNormalization(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/contacts", gin.H{"name": "Pat Smith", "phone": "(555) 123-4567", "contact_type": "owner"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Contact](t, w)
	assert.Equal(t, "5551234567", created.Phone)

	w = api.do(http.MethodPost, "/api/contacts", gin.H{"name": "Short", "phone": "555-1234"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "phone", decode[map[string]interface{}](t, w)["field"])

	all := decode[[]models.Contact](t, api.do(http.MethodGet, "/api/contacts", nil))
	require.Len(t, all, 1, "a rejected contact leaves no row")

	w = api.do(http.MethodPatch, "/api/contacts/"+itoa(created.ID), gin.H{"phone": "555.987.6543"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5559876543", decode[models.Contact](t, w).Phone)

	assert.Len(t, decode[[]models.Contact](t, api.do(http.MethodGet, "/api/contacts?type=owner", nil)), 1)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/contacts/"+itoa(created.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/contacts/"+itoa(created.ID), nil).Code)
}

func TestProperties_PatchEmptyStatusRejected(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")

	for _, body := range []string{`{"status": null}`, `{"status": ""}`} {
		w := api.do(http.MethodPatch, "/api/properties/"+itoa(p.ID), body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "status", decode[map[string]interface{}](t, w)["field"])
	}

	got := decode[models.Property](t, api.do(http.MethodGet, "/api/properties/"+itoa(p.ID), nil))
	assert.Equal(t, models.PropertyStatusActive, got.Status)
}

func TestTenants_SameNameWithoutLeaseIsConflict(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")
	body := gin.H{"property_id": p.ID, "tenant_name": "Ann"}

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/tenant", body).Code)
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/tenant", body).Code)
	assert.Len(t, decode[[]models.Tenant](t, api.do(http.MethodGet, "/api/tenant?property_id="+itoa(p.ID), nil)), 1)
}

func TestTenants(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")
	body := gin.H{"property_id": p.ID, "tenant_name": "Jane Roe", "lease_start": "2024-01-01", "lease_end": "2024-12-31", "monthly_rent": 1200}

	w := api.do(http.MethodPost, "/api/tenant", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tenant := decode[models.Tenant](t, w)
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/tenant", body).Code)

	w = api.do(http.MethodPatch, "/api/tenant/"+itoa(tenant.ID), gin.H{"monthly_rent": 1250})
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1250, *decode[models.Tenant](t, w).MonthlyRent, 0.001)

	assert.Len(t, decode[[]models.Tenant](t, api.do(http.MethodGet, "/api/tenant?property_id="+itoa(p.ID), nil)), 1)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/tenant/"+itoa(tenant.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/tenant/"+itoa(tenant.ID), nil).Code)
}

func TestPropertyMarkers_CachedAndInvalidated(t *testing.T) {
	api := newTestAPI(t)
	api.createProperty("Oak")

	w := api.do(http.MethodGet, "/api/property_markers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	markers := decode[[]map[string]interface{}](t, w)
	require.Len(t, markers, 1)
	assert.Nil(t, markers[0]["lat"])
	assert.Equal(t, "12 Oak St, Springfield, IL 62701", markers[0]["address"])

	w = api.do(http.MethodGet, "/api/property_markers", nil)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))

	api.createProperty("Elm")
	w = api.do(http.MethodGet, "/api/property_markers", nil)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))
	assert.Len(t, decode[[]map[string]interface{}](t, w), 2)
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, address string) (geocode.Point, error) {
	if strings.HasPrefix(address, "12 Oak") {
		return geocode.Point{Lat: 39.78, Lng: -89.65}, nil
	}
	return geocode.Point{}, geocode.ErrNoMatch
}

func TestAdmin_GeocodeMissing(t *testing.T) {
	api := newTestAPI(t, func(d *Deps) {
		d.Geocoder = geocode.NewService(stubGeocoder{}, d.DB, ratelimit.NewPacer(0), ratelimit.NewDailyQuota(100))
	})
	api.createProperty("Oak")
	require.NoError(t, api.db.CreateProperty(context.Background(), &models.Property{PropertyName: "Lost", Address: "1 Nowhere"}))

	// warm the marker cache so the batch has something to invalidate
	api.do(http.MethodGet, "/api/property_markers", nil)

	w := api.do(http.MethodPost, "/api/admin/geocode-missing", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[geocode.BatchResult](t, w)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Geocoded)
	assert.Equal(t, 1, result.Missed)

	w = api.do(http.MethodGet, "/api/property_markers", nil)
	assert.Equal(t, "miss", w.Header().Get("X-Cache"))

	stats := decode[map[string]interface{}](t, api.do(http.MethodGet, "/api/admin/stats", nil))
	tables := stats["tables"].(map[string]interface{})
	assert.EqualValues(t, 2, tables["properties"])
	assert.EqualValues(t, 1, tables["properties_missing_coordinates"])
	assert.Contains(t, stats, "geocoding")

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/admin/geocode-missing", gin.H{"limit": -1}).Code)
}

func TestAdmin_CleanupDeleteLogs(t *testing.T) {
	api := newTestAPI(t, func(d *Deps) { d.Cleanup = config.DefaultConfig().Cleanup })
	p := api.createProperty("Oak")
	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/properties/"+itoa(p.ID), nil).Code)
	stale := models.DeleteLog{PropertyID: 99, Reason: models.DeleteReasonManual, DeletedAt: time.Now().AddDate(-3, 0, 0)}
	require.NoError(t, api.db.DB().Create(&stale).Error)

	w := api.do(http.MethodPost, "/api/admin/delete-logs/cleanup", gin.H{"dry_run": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dry := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 1, dry["target_count"])
	assert.EqualValues(t, 0, dry["deleted_count"])

	w = api.do(http.MethodPost, "/api/admin/delete-logs/cleanup", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, w)["deleted_count"])

	logs := decode[map[string]interface{}](t, api.do(http.MethodGet, "/api/admin/delete-logs", nil))
	assert.EqualValues(t, 1, logs["count"], "the fresh entry stays")

	stats := decode[map[string]interface{}](t, api.do(http.MethodGet, "/api/admin/stats", nil))
	assert.EqualValues(t, 1, stats["delete_logs"].(map[string]interface{})["total"])

	w = api.do(http.MethodPost, "/api/admin/delete-logs/cleanup", gin.H{"retention_days": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "retention_days", decode[map[string]interface{}](t, w)["field"])
}

func TestAdmin_GeocodingDisabled(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusServiceUnavailable, api.do(http.MethodPost, "/api/admin/geocode-missing", nil).Code)
}

func TestSearch_DisabledWithoutEngine(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusServiceUnavailable, api.do(http.MethodGet, "/api/search?q=oak", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, api.do(http.MethodPost, "/api/admin/reindex", nil).Code)
}

func TestReports(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProperty("Oak")
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/rentlog", gin.H{"property_id": p.ID, "month": 1, "year": 2024, "rent_amount": 1000}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/transactions", gin.H{"property_id": p.ID, "transaction_amount": 250, "transaction_date": "2024-02-01", "transaction_type": "Repairs"}).Code)

	w := api.do(http.MethodGet, "/api/reports?start_year=2024&end_year=2024", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]interface{}](t, w)
	totals := body["totals"].(map[string]interface{})
	assert.InDelta(t, 750, totals["net"], 0.001)

	w = api.do(http.MethodGet, "/api/reports?start_year=2024&end_year=2024&format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "property_report_2024_2024.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Oak", name)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/reports?start_year=2025&end_year=2024", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/reports?start_year=2024&format=pdf", nil).Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
