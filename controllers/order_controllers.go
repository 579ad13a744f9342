package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resto-pos/kds"
	"resto-pos/middlewares"
	"resto-pos/models"
	"resto-pos/permissions"
	"resto-pos/utils"
)

type OrderController struct {
	DB *gorm.DB
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db}
}

// CreateOrderForSession -> new empty order owned by the acting staff
// member. Only allowed while the session is active.
func (oc *OrderController) CreateOrderForSession(c *gin.Context) {
	userID := c.GetUint("user_id")

	var order models.Order
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		var session models.TableSession
		if err := tx.First(&session, c.Param("session_id")).Error; err != nil {
			return err
		}
		if session.Status != models.SessionActive {
			return ErrSessionNotActive
		}

		order = models.Order{
			SessionID:   session.ID,
			CreatedByID: userID,
			CreatedAt:   time.Now(),
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		switch err {
		case ErrSessionNotActive:
			utils.RespondError(c, http.StatusConflict, err)
		case gorm.ErrRecordNotFound:
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.InfoLogger.Printf("Order %d created for session %d by user %d", order.ID, order.SessionID, userID)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> one order with its items.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	err := oc.DB.
		Preload("Items.MenuItem").
		Preload("CreatedBy").
		First(&order, c.Param("order_id")).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// AddItemToOrder appends a line item. The menu price is snapshotted into
// the line at this instant; later catalog changes never touch it.
func (oc *OrderController) AddItemToOrder(c *gin.Context) {
	var req struct {
		MenuItemID uint   `json:"menu_item_id" binding:"required"`
		Quantity   int    `json:"quantity"`
		NoteToChef string `json:"note_to_chef"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var item models.OrderItem
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, c.Param("order_id")).Error; err != nil {
			return err
		}

		var menuItem models.MenuItem
		if err := tx.First(&menuItem, req.MenuItemID).Error; err != nil {
			return err
		}
		if !menuItem.Available {
			return ErrItemUnavailable
		}

		item = models.OrderItem{
			OrderID:       order.ID,
			MenuItemID:    menuItem.ID,
			Quantity:      req.Quantity,
			NoteToChef:    req.NoteToChef,
			PriceSnapshot: menuItem.Price,
			Status:        models.ItemStatusWaiting,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		item.MenuItem = menuItem
		return nil
	})
	if err != nil {
		switch err {
		case ErrItemUnavailable:
			utils.RespondError(c, http.StatusConflict, err)
		case gorm.ErrRecordNotFound:
			utils.RespondError(c, http.StatusNotFound, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	kds.BroadcastItemUpdate(item)
	utils.RespondJSON(c, http.StatusCreated, "Item added to order", item)
}

// UpdateItemStatus moves an item to any legal status value. Category
// scoping: chefs may only touch food, baristas only drinks, waiters and
// admins either. No ordering between statuses is enforced.
func (oc *OrderController) UpdateItemStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidItemStatus(req.Status) {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidStatus)
		return
	}

	var item models.OrderItem
	if err := oc.DB.Preload("MenuItem").First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	role, isAdmin, _ := middlewares.Principal(c)
	if !permissions.CanTransitionItem(role, isAdmin, item.MenuItem.Type) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	item.Status = req.Status
	item.UpdatedAt = time.Now()
	if err := oc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastItemUpdate(item)
	utils.InfoLogger.Printf("Item %d (%s) -> %s by %s", item.ID, item.MenuItem.Name, item.Status, role)
	utils.RespondJSON(c, http.StatusOK, "Item status updated", item)
}

// DeleteItem -> unconditional removal, admin only (enforced on the
// route).
func (oc *OrderController) DeleteItem(c *gin.Context) {
	var item models.OrderItem
	if err := oc.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := oc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Item %d deleted from order %d", item.ID, item.OrderID)
	utils.RespondJSON(c, http.StatusOK, "Item deleted", gin.H{"id": item.ID})
}
