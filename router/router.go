package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"resto-pos/controllers"
	"resto-pos/middlewares"
	"resto-pos/permissions"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	authCtrl := controllers.NewAuthController(db)
	tableCtrl := controllers.NewTableController(db)
	orderCtrl := controllers.NewOrderController(db)
	stationCtrl := controllers.NewStationController(db)
	billingCtrl := controllers.NewBillingController(db)
	settingsCtrl := controllers.NewSettingsController(db)
	menuCtrl := controllers.NewMenuController(db)

	loginLimiter := middlewares.NewLoginRateLimiter(rate.Every(12*time.Second), 5) // 5 burst, then one attempt per 12s

	api := r.Group("/api")

	api.POST("/auth/login", loginLimiter.Limit(), authCtrl.Login)

	authed := api.Group("")
	authed.Use(middlewares.AuthMiddleware())
	{
		authed.POST("/auth/register",
			middlewares.RequireCapability(permissions.CapManageUsers), authCtrl.RegisterStaff)

		// Tables and sessions
		authed.GET("/tables", tableCtrl.GetAllTables)
		authed.POST("/tables",
			middlewares.RequireCapability(permissions.CapManageTables), tableCtrl.CreateTable)
		authed.GET("/tables/:table_id", tableCtrl.GetTableByID)
		authed.POST("/tables/:table_id/open-session",
			middlewares.RequireCapability(permissions.CapOpenSession), tableCtrl.OpenSession)
		authed.POST("/tables/:table_id/close-session",
			middlewares.RequireCapability(permissions.CapCloseSession), tableCtrl.CloseSession)

		authed.GET("/sessions/active", tableCtrl.ListActiveSessions)
		authed.GET("/sessions/:session_id", tableCtrl.GetSession)
		authed.POST("/sessions/:session_id/request-bill",
			middlewares.RequireCapability(permissions.CapRequestBill), tableCtrl.RequestBill)
		authed.POST("/sessions/:session_id/orders",
			middlewares.RequireCapability(permissions.CapCreateOrder), orderCtrl.CreateOrderForSession)

		// Orders and items. Status updates carry their own category-scoped
		// check inside the controller.
		authed.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		authed.POST("/orders/:order_id/items",
			middlewares.RequireCapability(permissions.CapAddItem), orderCtrl.AddItemToOrder)
		authed.PATCH("/orders/items/:item_id/status", orderCtrl.UpdateItemStatus)
		authed.DELETE("/orders/items/:item_id",
			middlewares.RequireCapability(permissions.CapDeleteItem), orderCtrl.DeleteItem)

		// Station projections
		authed.GET("/kitchen/items",
			middlewares.RequireCapability(permissions.CapViewKitchen), stationCtrl.KitchenItems)
		authed.GET("/kitchen/dashboard",
			middlewares.RequireCapability(permissions.CapViewKitchen), stationCtrl.KitchenDashboard)
		authed.GET("/bar/items",
			middlewares.RequireCapability(permissions.CapViewBar), stationCtrl.BarItems)
		authed.GET("/bar/dashboard",
			middlewares.RequireCapability(permissions.CapViewBar), stationCtrl.BarDashboard)
		authed.GET("/ws", stationCtrl.Stream)

		// Billing
		authed.GET("/billing/pending",
			middlewares.RequireCapability(permissions.CapViewBilling), billingCtrl.PendingBills)
		authed.POST("/billing/invoices",
			middlewares.RequireCapability(permissions.CapCreateInvoice), billingCtrl.CreateInvoice)
		authed.PATCH("/billing/invoices/:invoice_id/pay",
			middlewares.RequireCapability(permissions.CapMarkPaid), billingCtrl.MarkPaid)
		authed.GET("/billing/invoices/:invoice_id",
			middlewares.RequireCapability(permissions.CapViewBilling), billingCtrl.InvoiceDetail)

		// Settings
		authed.GET("/settings", settingsCtrl.GetSettings)
		authed.PATCH("/settings",
			middlewares.RequireCapability(permissions.CapManageSettings), settingsCtrl.PatchSettings)

		// Menu catalog
		authed.GET("/menu/categories", menuCtrl.GetAllCategories)
		authed.POST("/menu/categories",
			middlewares.RequireCapability(permissions.CapManageMenu), menuCtrl.CreateCategory)
		authed.DELETE("/menu/categories/:category_id",
			middlewares.RequireCapability(permissions.CapManageMenu), menuCtrl.DeleteCategory)
		authed.GET("/menu/items", menuCtrl.GetAllItems)
		authed.POST("/menu/items",
			middlewares.RequireCapability(permissions.CapManageMenu), menuCtrl.CreateItem)
		authed.GET("/menu/items/:item_id", menuCtrl.GetItemByID)
		authed.PATCH("/menu/items/:item_id",
			middlewares.RequireCapability(permissions.CapManageMenu), menuCtrl.PatchItem)
		authed.DELETE("/menu/items/:item_id",
			middlewares.RequireCapability(permissions.CapManageMenu), menuCtrl.DeleteItem)
	}

	return r
}
