package routes

import (
	"net/http"

	"studiocrm-backend/config"
	"studiocrm-backend/controllers"
	_ "studiocrm-backend/docs"
	"studiocrm-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups every controller the router mounts.
type Handlers struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Customers *controllers.CustomerController
	Services  *controllers.ServiceController
	Orders    *controllers.OrderController
	Invoices  *controllers.InvoiceController
	Reports   *controllers.ReportController
	Dashboard *controllers.DashboardController
	Reminders *controllers.ReminderController
	Audit     *controllers.AuditController
}

func SetupRouter(cfg *config.Config, h Handlers) (*gin.Engine, error) {
	r := gin.New()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(config.PerformanceLogger())

	r.GET("/health", func(c *gin.Context) {
		utils.RespondWithSuccess(c, http.StatusOK, "ok", nil)
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limit, err := utils.RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", limit, h.Auth.Register)
		auth.POST("/login", limit, h.Auth.Login)
		auth.GET("/me", utils.AuthMiddleware(), h.Auth.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		api.GET("/profile", h.Users.GetProfile)
		api.PUT("/profile", h.Users.UpdateProfile)

		customers := api.Group("/customers")
		{
			customers.POST("", h.Customers.CreateCustomer)
			customers.GET("", h.Customers.GetCustomers)
			customers.POST("/bulk-delete", h.Customers.BulkDeleteCustomers)
			customers.GET("/:id", h.Customers.GetCustomer)
			customers.PUT("/:id", h.Customers.UpdateCustomer)
			customers.DELETE("/:id", h.Customers.DeleteCustomer)
		}

		services := api.Group("/services")
		{
			services.POST("", h.Services.CreateService)
			services.GET("", h.Services.GetServices)
			services.GET("/:id", h.Services.GetService)
			services.PUT("/:id", h.Services.UpdateService)
			services.DELETE("/:id", h.Services.DeleteService)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", h.Orders.CreateOrder)
			orders.GET("", h.Orders.GetOrders)
			orders.GET("/export", h.Orders.ExportOrders)
			orders.PATCH("/bulk-status", h.Orders.BulkUpdateStatus)
			orders.GET("/:id", h.Orders.GetOrder)
			orders.PUT("/:id", h.Orders.UpdateOrder)
			orders.DELETE("/:id", h.Orders.DeleteOrder)
			orders.GET("/:id/pdf", h.Invoices.DownloadPDF)
		}

		api.GET("/reports", h.Reports.GetRevenueReport)
		api.GET("/dashboard", h.Dashboard.GetDashboardOverview)

		reminders := api.Group("/reminders")
		{
			reminders.GET("/upcoming", h.Reminders.GetUpcomingEvents)
			reminders.GET("/logs", h.Reminders.GetReminderLogs)
		}

		api.GET("/audit-logs", h.Audit.GetAuditLogs)

		users := api.Group("/users", utils.AdminOnly())
		{
			users.GET("", h.Users.ListUsers)
			users.DELETE("/:id", h.Users.DeleteUser)
		}
	}

	return r, nil
}
