package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cashier-desk/controllers"
	"github.com/yeremiapane/cashier-desk/hub"
	"github.com/yeremiapane/cashier-desk/middlewares"
	"github.com/yeremiapane/cashier-desk/services"
)

// Deps is everything the route table hands to controllers and middleware.
type Deps struct {
	Cashier  *services.CashierService
	State    *services.DashboardState
	Hub      *hub.Hub
	Settings controllers.SettingsStore
	Backend  controllers.BackendTarget
	Agent    controllers.PrintAgent

	DefaultServerURL string
	AllowedOrigin    string
	AllowedRoles     []string
	PayRateLimit     float64
	PayRateBurst     int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.AllowedOrigin))
	r.Use(middlewares.NewRateLimiter(50, time.Second).RateLimit())

	authCtrl := controllers.NewAuthController(d.Cashier)
	orderCtrl := controllers.NewOrderController(d.Cashier, d.State)
	paymentCtrl := controllers.NewPaymentController(d.Cashier)
	receiptCtrl := controllers.NewReceiptController(d.Cashier, d.Agent, d.Settings)
	menuCtrl := controllers.NewMenuController(d.Cashier)
	categoryCtrl := controllers.NewMenuCategoryController(d.Cashier)
	reportCtrl := controllers.NewReportController(d.Cashier)
	settingsCtrl := controllers.NewSettingsController(d.Settings, d.Backend, d.DefaultServerURL)
	printerCtrl := controllers.NewPrinterController(d.Agent, d.Settings)
	wsCtrl := controllers.NewWSController(d.Hub, d.State)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	login := middlewares.NewTokenBucket(1, 5)
	r.POST("/login", login.Limit(), authCtrl.Login)
	r.POST("/logout", authCtrl.Logout)

	// Settings stay reachable before login: the server url may be what blocks it.
	r.GET("/api/settings", settingsCtrl.GetSettings)
	r.PUT("/api/settings", settingsCtrl.UpdateSettings)
	r.GET("/api/printers", printerCtrl.ListPrinters)
	r.GET("/api/printers/status", printerCtrl.Status)

	r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Cashier), wsCtrl.Serve)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(d.Cashier))
	api.Use(middlewares.RoleCheck(d.AllowedRoles...))

	api.GET("/me", authCtrl.Me)
	api.GET("/dashboard", orderCtrl.Dashboard)

	// ORDERS
	api.GET("/orders", orderCtrl.ListOrders)
	api.GET("/orders/:order_id", orderCtrl.GetOrder)
	api.POST("/orders/:order_id/quote", paymentCtrl.Quote)
	api.POST("/orders/:order_id/items", orderCtrl.AddItems)
	api.POST("/orders/merge", orderCtrl.MergeOrders)

	// Money-moving and printing routes share one token bucket per client.
	guarded := middlewares.NewTokenBucket(d.PayRateLimit, d.PayRateBurst)
	payments := api.Group("")
	payments.Use(guarded.Limit(), middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	{
		payments.POST("/orders/:order_id/pay", paymentCtrl.Pay)
		payments.POST("/saboy", paymentCtrl.CreateSaboy)
	}
	prints := api.Group("")
	prints.Use(guarded.Limit())
	{
		prints.POST("/orders/:order_id/print-bill", orderCtrl.PrintBill)
		prints.POST("/reports/print", reportCtrl.PrintDailyReport)
		prints.POST("/printers/test", printerCtrl.TestPrint)
		prints.POST("/orders/:order_id/reprint", receiptCtrl.ReprintReceipt)
	}

	// RECEIPTS
	receipts := api.Group("/orders/:order_id")
	receipts.Use(middlewares.ReceiptLoggerMiddleware())
	{
		receipts.GET("/receipt", receiptCtrl.GetReceipt)
		receipts.GET("/receipt.pdf", receiptCtrl.DownloadReceiptPDF)
	}

	// MENU
	api.GET("/menu", menuCtrl.GetMenu)
	api.GET("/categories", categoryCtrl.GetCategories)

	// REPORTS
	api.GET("/reports/waiters", reportCtrl.WaiterStats)
	api.GET("/reports/daily", reportCtrl.DailyReport)
	api.GET("/reports/cancelled", reportCtrl.CancelledItems)

	return r
}
