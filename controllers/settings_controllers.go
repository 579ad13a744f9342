package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"resto-pos/services"
	"resto-pos/utils"
)

type SettingsController struct {
	DB *gorm.DB
}

func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{DB: db}
}

// GetSettings -> the singleton rates record, created with zero rates on
// first access.
func (sc *SettingsController) GetSettings(c *gin.Context) {
	setting, err := services.GetOrCreateSetting(sc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings", setting)
}

// PatchSettings -> partial update of the three percentage rates (admin).
func (sc *SettingsController) PatchSettings(c *gin.Context) {
	var req struct {
		TaxRate           *decimal.Decimal `json:"tax_rate"`
		ServiceChargeRate *decimal.Decimal `json:"service_charge_rate"`
		DiscountRate      *decimal.Decimal `json:"discount_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	setting, err := services.GetOrCreateSetting(sc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if req.TaxRate != nil {
		setting.TaxRate = *req.TaxRate
	}
	if req.ServiceChargeRate != nil {
		setting.ServiceChargeRate = *req.ServiceChargeRate
	}
	if req.DiscountRate != nil {
		setting.DiscountRate = *req.DiscountRate
	}

	if err := sc.DB.Save(&setting).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Rates updated: tax=%s service=%s discount=%s",
		setting.TaxRate, setting.ServiceChargeRate, setting.DiscountRate)
	utils.RespondJSON(c, http.StatusOK, "Settings updated", setting)
}
