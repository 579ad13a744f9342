package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"resto-pos/middlewares"
	"resto-pos/models"
	"resto-pos/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllCategories -> menu categories ordered by name.
func (mc *MenuController) GetAllCategories(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mc.DB.Order("name").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// CreateCategory -> new menu category (admin).
func (mc *MenuController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category := models.MenuCategory{Name: req.Name}
	if err := mc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// DeleteCategory -> remove a category and its items (admin).
func (mc *MenuController) DeleteCategory(c *gin.Context) {
	var category models.MenuCategory
	if err := mc.DB.First(&category, c.Param("category_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err := mc.DB.Delete(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"id": category.ID})
}

// GetAllItems -> available items by default; admins may pass ?all=1 to
// include unavailable ones.
func (mc *MenuController) GetAllItems(c *gin.Context) {
	q := mc.DB.Preload("Category").Order("name")

	_, isAdmin, _ := middlewares.Principal(c)
	if !(c.Query("all") == "1" && isAdmin) {
		q = q.Where("available = ?", true)
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetItemByID -> one menu item.
func (mc *MenuController) GetItemByID(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.Preload("Category").First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// CreateItem -> new menu item (admin).
func (mc *MenuController) CreateItem(c *gin.Context) {
	var req struct {
		CategoryID  uint            `json:"category_id" binding:"required"`
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Available   *bool           `json:"available"`
		Type        string          `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Type == "" {
		req.Type = models.ItemTypeFood
	}
	if req.Type != models.ItemTypeFood && req.Type != models.ItemTypeDrink {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidStatus)
		return
	}

	item := models.MenuItem{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   true,
		Type:        req.Type,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// PatchItem -> partial update of a menu item (admin). Existing order
// lines keep their price snapshots no matter what changes here.
func (mc *MenuController) PatchItem(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		CategoryID  *uint            `json:"category_id"`
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Price       *decimal.Decimal `json:"price"`
		Available   *bool            `json:"available"`
		Type        *string          `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.CategoryID != nil {
		item.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Available != nil {
		item.Available = *req.Available
	}
	if req.Type != nil {
		if *req.Type != models.ItemTypeFood && *req.Type != models.ItemTypeDrink {
			utils.RespondError(c, http.StatusBadRequest, ErrInvalidStatus)
			return
		}
		item.Type = *req.Type
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// DeleteItem -> remove a menu item from the catalog (admin).
func (mc *MenuController) DeleteItem(c *gin.Context) {
	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err := mc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"id": item.ID})
}
