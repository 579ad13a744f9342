package controllers_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"resto-pos/controllers"
	"resto-pos/middlewares"
	"resto-pos/models"
	"resto-pos/permissions"
)

func setupOrderRouter(db *gorm.DB, userID uint, role string, isAdmin bool) *gin.Engine {
	r := gin.New()
	r.Use(authAs(userID, role, isAdmin))
	oc := controllers.NewOrderController(db)
	r.POST("/sessions/:session_id/orders", oc.CreateOrderForSession)
	r.GET("/orders/:order_id", oc.GetOrderByID)
	r.POST("/orders/:order_id/items", oc.AddItemToOrder)
	r.PATCH("/orders/items/:item_id/status", oc.UpdateItemStatus)
	r.DELETE("/orders/items/:item_id",
		middlewares.RequireCapability(permissions.CapDeleteItem), oc.DeleteItem)
	return r
}

func seedOrder(t *testing.T, db *gorm.DB, session models.TableSession, staff models.User) models.Order {
	t.Helper()
	order := models.Order{SessionID: session.ID, CreatedByID: staff.ID, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestCreateOrderForActiveSession(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 1)

	r := setupOrderRouter(db, waiter.ID, "waiter", false)
	w := doJSON(t, r, "POST", "/sessions/"+strconv.Itoa(int(session.ID))+"/orders", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	require.NoError(t, db.Where("session_id = ?", session.ID).First(&order).Error)
	assert.Equal(t, waiter.ID, order.CreatedByID)
}

func TestCreateOrderForClosedSessionFails(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 2)
	require.NoError(t, db.Model(&models.TableSession{}).Where("id = ?", session.ID).
		Update("status", models.SessionClosed).Error)

	r := setupOrderRouter(db, waiter.ID, "waiter", false)
	w := doJSON(t, r, "POST", "/sessions/"+strconv.Itoa(int(session.ID))+"/orders", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.Order{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Zero(t, count)
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 3)
	order := seedOrder(t, db, session, waiter)
	menuItem := seedMenuItem(t, db, "Nasi Goreng", models.ItemTypeFood, "12.50", true)

	r := setupOrderRouter(db, waiter.ID, "waiter", false)
	w := doJSON(t, r, "POST", "/orders/"+strconv.Itoa(int(order.ID))+"/items", gin.H{
		"menu_item_id": menuItem.ID,
		"quantity":     2,
		"note_to_chef": "extra spicy",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var line models.OrderItem
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&line).Error)
	assert.Equal(t, models.ItemStatusWaiting, line.Status)
	assert.True(t, line.PriceSnapshot.Equal(mustDec(t, "12.50")))

	// A later catalog price change never touches the snapshot.
	require.NoError(t, db.Model(&models.MenuItem{}).Where("id = ?", menuItem.ID).
		Update("price", mustDec(t, "99.99")).Error)

	require.NoError(t, db.First(&line, line.ID).Error)
	assert.True(t, line.PriceSnapshot.Equal(mustDec(t, "12.50")), "snapshot changed to %s", line.PriceSnapshot)
}

func TestAddUnavailableItemFails(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 4)
	order := seedOrder(t, db, session, waiter)
	menuItem := seedMenuItem(t, db, "Sold Out Soup", models.ItemTypeFood, "8.00", false)

	r := setupOrderRouter(db, waiter.ID, "waiter", false)
	w := doJSON(t, r, "POST", "/orders/"+strconv.Itoa(int(order.ID))+"/items", gin.H{
		"menu_item_id": menuItem.ID,
		"quantity":     1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Zero(t, count)
}

func seedLine(t *testing.T, db *gorm.DB, order models.Order, menuItem models.MenuItem, status string) models.OrderItem {
	t.Helper()
	line := models.OrderItem{
		OrderID:       order.ID,
		MenuItemID:    menuItem.ID,
		Quantity:      1,
		PriceSnapshot: menuItem.Price,
		Status:        status,
	}
	require.NoError(t, db.Create(&line).Error)
	return line
}

func TestUpdateItemStatusRejectsIllegalValue(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 5)
	order := seedOrder(t, db, session, waiter)
	menuItem := seedMenuItem(t, db, "Satay", models.ItemTypeFood, "6.00", true)
	line := seedLine(t, db, order, menuItem, models.ItemStatusWaiting)

	r := setupOrderRouter(db, waiter.ID, "waiter", false)
	w := doJSON(t, r, "PATCH", "/orders/items/"+strconv.Itoa(int(line.ID))+"/status", gin.H{
		"status": "burnt",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChefCannotTouchDrinkItems(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 6)
	order := seedOrder(t, db, session, waiter)
	drink := seedMenuItem(t, db, "Es Teh", models.ItemTypeDrink, "2.00", true)
	line := seedLine(t, db, order, drink, models.ItemStatusWaiting)

	chefRouter := setupOrderRouter(db, 99, "chef", false)
	w := doJSON(t, chefRouter, "PATCH", "/orders/items/"+strconv.Itoa(int(line.ID))+"/status", gin.H{
		"status": models.ItemStatusReady,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The barista doing the same succeeds.
	baristaRouter := setupOrderRouter(db, 98, "barista", false)
	w = doJSON(t, baristaRouter, "PATCH", "/orders/items/"+strconv.Itoa(int(line.ID))+"/status", gin.H{
		"status": models.ItemStatusReady,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.OrderItem
	require.NoError(t, db.First(&updated, line.ID).Error)
	assert.Equal(t, models.ItemStatusReady, updated.Status)
}

func TestBaristaCannotTouchFoodItems(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 7)
	order := seedOrder(t, db, session, waiter)
	food := seedMenuItem(t, db, "Rendang", models.ItemTypeFood, "15.00", true)
	line := seedLine(t, db, order, food, models.ItemStatusWaiting)

	r := setupOrderRouter(db, 98, "barista", false)
	w := doJSON(t, r, "PATCH", "/orders/items/"+strconv.Itoa(int(line.ID))+"/status", gin.H{
		"status": models.ItemStatusInProgress,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStatusTransitionsArePermissiveWithinLegalValues(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 8)
	order := seedOrder(t, db, session, waiter)
	food := seedMenuItem(t, db, "Gado Gado", models.ItemTypeFood, "9.00", true)
	line := seedLine(t, db, order, food, models.ItemStatusServed)

	// Moving backwards is allowed, only the value is validated.
	r := setupOrderRouter(db, 99, "chef", false)
	w := doJSON(t, r, "PATCH", "/orders/items/"+strconv.Itoa(int(line.ID))+"/status", gin.H{
		"status": models.ItemStatusWaiting,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteItemIsAdminOnly(t *testing.T) {
	db := setupTestDB(t)
	waiter := seedStaff(t, db, "Ana", "ana", "waiter", false)
	session := seedActiveSession(t, db, 9)
	order := seedOrder(t, db, session, waiter)
	food := seedMenuItem(t, db, "Soto", models.ItemTypeFood, "7.00", true)
	line := seedLine(t, db, order, food, models.ItemStatusWaiting)

	waiterRouter := setupOrderRouter(db, waiter.ID, "waiter", false)
	w := doJSON(t, waiterRouter, "DELETE", "/orders/items/"+strconv.Itoa(int(line.ID)), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminRouter := setupOrderRouter(db, 1, "admin", true)
	w = doJSON(t, adminRouter, "DELETE", "/orders/items/"+strconv.Itoa(int(line.ID)), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.OrderItem{}).Where("id = ?", line.ID).Count(&count)
	assert.Zero(t, count)
}
