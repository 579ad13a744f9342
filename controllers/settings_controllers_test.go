package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"resto-pos/controllers"
	"resto-pos/middlewares"
	"resto-pos/models"
	"resto-pos/permissions"
)

func setupSettingsRouter(db *gorm.DB, role string, isAdmin bool) *gin.Engine {
	r := gin.New()
	r.Use(authAs(1, role, isAdmin))
	sc := controllers.NewSettingsController(db)
	r.GET("/settings", sc.GetSettings)
	r.PATCH("/settings",
		middlewares.RequireCapability(permissions.CapManageSettings), sc.PatchSettings)
	return r
}

func TestGetSettingsAutoCreatesZeroRates(t *testing.T) {
	db := setupTestDB(t)
	r := setupSettingsRouter(db, "waiter", false)

	w := doJSON(t, r, "GET", "/settings", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "0", data["tax_rate"])
	assert.Equal(t, "0", data["service_charge_rate"])
	assert.Equal(t, "0", data["discount_rate"])

	var count int64
	db.Model(&models.Setting{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestPatchSettingsIsAdminOnly(t *testing.T) {
	db := setupTestDB(t)

	cashier := setupSettingsRouter(db, "cashier", false)
	w := doJSON(t, cashier, "PATCH", "/settings", gin.H{"tax_rate": "10"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := setupSettingsRouter(db, "admin", true)
	w = doJSON(t, admin, "PATCH", "/settings", gin.H{"tax_rate": "10", "service_charge_rate": "5"})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "10", data["tax_rate"])
	assert.Equal(t, "5", data["service_charge_rate"])
	// Untouched rate keeps its value.
	assert.Equal(t, "0", data["discount_rate"])
}
