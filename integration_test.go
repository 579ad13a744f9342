package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resto-pos/models"
	"resto-pos/permissions"
	"resto-pos/router"
	"resto-pos/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestFullServiceFlow walks the whole lifecycle:
// seat a table -> order food and drinks -> stations work the items ->
// bill requested -> invoice created with the configured rates ->
// cashier collects -> session closes and the table frees up.
func TestFullServiceFlow(t *testing.T) {
	db := setupIntegrationDB(t)
	r := router.SetupRouter(db)

	waiterToken := login(t, r, "ana", "password123")
	chefToken := login(t, r, "budi", "password123")
	baristaToken := login(t, r, "cici", "password123")
	cashierToken := login(t, r, "dewi", "password123")
	adminToken := login(t, r, "boss", "password123")

	// Admin configures the rates used later by the invoice.
	w := request(t, r, "PATCH", "/api/settings", adminToken, gin.H{
		"tax_rate":            "8",
		"service_charge_rate": "5",
		"discount_rate":       "10",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Waiter seats the guests.
	var table models.Table
	require.NoError(t, db.First(&table).Error)
	w = request(t, r, "POST", fmt.Sprintf("/api/tables/%d/open-session", table.ID), waiterToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := uint(payload(t, w)["id"].(float64))

	// A second open on the same table conflicts.
	w = request(t, r, "POST", fmt.Sprintf("/api/tables/%d/open-session", table.ID), waiterToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Waiter creates an order and adds 4x the 25.00 dish plus a drink.
	w = request(t, r, "POST", fmt.Sprintf("/api/sessions/%d/orders", sessionID), waiterToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint(payload(t, w)["id"].(float64))

	var dish, drink models.MenuItem
	require.NoError(t, db.Where("type = ?", models.ItemTypeFood).First(&dish).Error)
	require.NoError(t, db.Where("type = ?", models.ItemTypeDrink).First(&drink).Error)

	w = request(t, r, "POST", fmt.Sprintf("/api/orders/%d/items", orderID), waiterToken, gin.H{
		"menu_item_id": dish.ID,
		"quantity":     4,
		"note_to_chef": "no peanuts",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	foodItemID := uint(payload(t, w)["id"].(float64))

	w = request(t, r, "POST", fmt.Sprintf("/api/orders/%d/items", orderID), waiterToken, gin.H{
		"menu_item_id": drink.ID,
		"quantity":     1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	drinkItemID := uint(payload(t, w)["id"].(float64))

	// Chef works the food; the drink is off limits for the chef.
	w = request(t, r, "PATCH", fmt.Sprintf("/api/orders/items/%d/status", foodItemID), chefToken, gin.H{
		"status": models.ItemStatusInProgress,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(t, r, "PATCH", fmt.Sprintf("/api/orders/items/%d/status", drinkItemID), chefToken, gin.H{
		"status": models.ItemStatusReady,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(t, r, "PATCH", fmt.Sprintf("/api/orders/items/%d/status", drinkItemID), baristaToken, gin.H{
		"status": models.ItemStatusReady,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Kitchen dashboard sees the food item still pending.
	w = request(t, r, "GET", "/api/kitchen/dashboard", chefToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	counts := payload(t, w)
	assert.EqualValues(t, 1, counts["in_progress"])
	assert.EqualValues(t, 1, counts["total_pending"])

	w = request(t, r, "PATCH", fmt.Sprintf("/api/orders/items/%d/status", foodItemID), chefToken, gin.H{
		"status": models.ItemStatusReady,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Waiter requests the bill; the cashier queue picks it up.
	w = request(t, r, "POST", fmt.Sprintf("/api/sessions/%d/request-bill", sessionID), waiterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, "GET", "/api/billing/pending", cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pendingResp := decode(t, w)
	pending := pendingResp["data"].([]interface{})
	require.Len(t, pending, 1)

	// Cashier creates the invoice: subtotal 4x25 + 3 = 103.00,
	// discount 10.30, after 92.70, service 4.64 (92.70*5% = 4.635
	// rounded half-up), tax base 97.34, tax 7.79 (7.7872), total 105.13.
	w = request(t, r, "POST", "/api/billing/invoices", cashierToken, gin.H{"session_id": sessionID})
	require.Equal(t, http.StatusCreated, w.Code)
	invoice := payload(t, w)
	invoiceID := uint(invoice["id"].(float64))
	assertDecimal(t, "103.00", invoice["subtotal"])
	assertDecimal(t, "10.30", invoice["discount"])
	assertDecimal(t, "4.64", invoice["service_charge"])
	assertDecimal(t, "7.79", invoice["tax"])
	assertDecimal(t, "105.13", invoice["total"])

	// Duplicate invoice is refused.
	w = request(t, r, "POST", "/api/billing/invoices", cashierToken, gin.H{"session_id": sessionID})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Detail projection names the waiter.
	w = request(t, r, "GET", fmt.Sprintf("/api/billing/invoices/%d", invoiceID), cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := payload(t, w)
	waiters := detail["waiters"].([]interface{})
	require.Len(t, waiters, 1)
	assert.Equal(t, "Ana", waiters[0])

	// Collect payment, twice fails.
	w = request(t, r, "PATCH", fmt.Sprintf("/api/billing/invoices/%d/pay", invoiceID), cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = request(t, r, "PATCH", fmt.Sprintf("/api/billing/invoices/%d/pay", invoiceID), cashierToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Close the session, table frees.
	w = request(t, r, "POST", fmt.Sprintf("/api/tables/%d/close-session", table.ID), cashierToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var freed models.Table
	require.NoError(t, db.First(&freed, table.ID).Error)
	assert.Equal(t, models.TableAvailable, freed.Status)
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Invoice{},
		&models.Setting{},
	))

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	staff := []struct {
		name, username, role string
		isAdmin              bool
	}{
		{"Ana", "ana", permissions.RoleWaiter, false},
		{"Budi", "budi", permissions.RoleChef, false},
		{"Cici", "cici", permissions.RoleBarista, false},
		{"Dewi", "dewi", permissions.RoleCashier, false},
		{"Boss", "boss", permissions.RoleAdmin, true},
	}
	for _, s := range staff {
		role := models.Role{Name: s.role, IsAdmin: s.isAdmin}
		require.NoError(t, db.Where(models.Role{Name: s.role}).FirstOrCreate(&role).Error)
		require.NoError(t, db.Create(&models.User{
			Name: s.name, Username: s.username, Password: hash, RoleID: role.ID,
		}).Error)
	}

	category := models.MenuCategory{Name: "House Specials"}
	require.NoError(t, db.Create(&category).Error)
	price := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		return d
	}
	require.NoError(t, db.Create(&models.MenuItem{
		CategoryID: category.ID, Name: "Beef Rendang", Price: price("25.00"),
		Available: true, Type: models.ItemTypeFood,
	}).Error)
	require.NoError(t, db.Create(&models.MenuItem{
		CategoryID: category.ID, Name: "Iced Tea", Price: price("3.00"),
		Available: true, Type: models.ItemTypeDrink,
	}).Error)

	require.NoError(t, db.Create(&models.Table{Number: 12, Status: models.TableAvailable}).Error)
	return db
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := request(t, r, "POST", "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed for %s: %s", username, w.Body.String())
	data := payload(t, w)
	return data["token"].(string)
}

func request(t *testing.T, r *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func payload(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	return decode(t, w)["data"].(map[string]interface{})
}

func assertDecimal(t *testing.T, want string, got interface{}) {
	t.Helper()
	wantDec, err := decimal.NewFromString(want)
	require.NoError(t, err)
	gotDec, err := decimal.NewFromString(got.(string))
	require.NoError(t, err)
	assert.True(t, wantDec.Equal(gotDec), "want %s got %s", want, gotDec)
}
