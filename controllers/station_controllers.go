package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"resto-pos/kds"
	"resto-pos/middlewares"
	"resto-pos/models"
	"resto-pos/utils"
)

// StationController serves the kitchen (food) and bar (drink) read-only
// projections: item work queues and per-status dashboard counts.
type StationController struct {
	DB *gorm.DB
}

func NewStationController(db *gorm.DB) *StationController {
	return &StationController{DB: db}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// stationQuery scopes order items to one station and applies the
// optional status-set, table-number and session-id filters.
func (sc *StationController) stationQuery(c *gin.Context, itemType string) *gorm.DB {
	q := sc.DB.Model(&models.OrderItem{}).
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN table_sessions ON table_sessions.id = orders.session_id").
		Where("menu_items.type = ?", itemType)

	if status := c.Query("status"); status != "" {
		q = q.Where("order_items.status IN ?", strings.Split(status, ","))
	}
	if table := c.Query("table"); table != "" {
		q = q.Joins("JOIN tables ON tables.id = table_sessions.table_id").
			Where("tables.number = ?", table)
	}
	if session := c.Query("session"); session != "" {
		q = q.Where("orders.session_id = ?", session)
	}
	return q
}

func (sc *StationController) listItems(c *gin.Context, itemType string) {
	var items []models.OrderItem
	err := sc.stationQuery(c, itemType).
		Preload("MenuItem").
		Order("order_items.created_at").
		Find(&items).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Station items", items)
}

// DashboardCounts is the per-station status breakdown. Pending is the
// work still ahead of the station: waiting plus in_progress.
type DashboardCounts struct {
	Waiting      int64 `json:"waiting"`
	InProgress   int64 `json:"in_progress"`
	Ready        int64 `json:"ready"`
	TotalPending int64 `json:"total_pending"`
}

func (sc *StationController) dashboard(c *gin.Context, itemType string) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := sc.stationQuery(c, itemType).
		Select("order_items.status AS status, COUNT(*) AS count").
		Group("order_items.status").
		Scan(&rows).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var counts DashboardCounts
	for _, row := range rows {
		switch row.Status {
		case models.ItemStatusWaiting:
			counts.Waiting = row.Count
		case models.ItemStatusInProgress:
			counts.InProgress = row.Count
		case models.ItemStatusReady:
			counts.Ready = row.Count
		}
	}
	counts.TotalPending = counts.Waiting + counts.InProgress

	utils.RespondJSON(c, http.StatusOK, "Station dashboard", counts)
}

// KitchenItems -> food work queue for chefs.
func (sc *StationController) KitchenItems(c *gin.Context) {
	sc.listItems(c, models.ItemTypeFood)
}

// KitchenDashboard -> food status counts.
func (sc *StationController) KitchenDashboard(c *gin.Context) {
	sc.dashboard(c, models.ItemTypeFood)
}

// BarItems -> drink work queue for baristas.
func (sc *StationController) BarItems(c *gin.Context) {
	sc.listItems(c, models.ItemTypeDrink)
}

// BarDashboard -> drink status counts.
func (sc *StationController) BarDashboard(c *gin.Context) {
	sc.dashboard(c, models.ItemTypeDrink)
}

// Stream upgrades to a websocket and registers the client on the kds
// hub; it receives the events for its role's station until disconnect.
func (sc *StationController) Stream(c *gin.Context) {
	role, _, ok := middlewares.Principal(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kds.RegisterClient(ws, role)
	defer kds.UnregisterClient(ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
