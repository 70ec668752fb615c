package main

import (
	"context"
	"fmt"
	"log"

	"studiocrm-backend/config"
	"studiocrm-backend/controllers"
	"studiocrm-backend/models"
	"studiocrm-backend/notifications"
	"studiocrm-backend/routes"
	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title StudioCRM API
// @version 1.0
// @description Customers, services, orders, invoices and revenue reports for photo studios.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	logger := config.Log
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	if cfg.JWT.Secret == "" {
		if cfg.GinMode == gin.ReleaseMode {
			logger.Fatal("JWT_SECRET is not set")
		}
		cfg.JWT.Secret = utils.GenerateJWTSecret()
		logger.Warn("JWT_SECRET is not set, using a random secret; tokens will not survive a restart")
	}
	utils.InitAuth(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.Security.BcryptCost)
	if err := utils.InitInvoiceNumbers(cfg.SnowflakeNode); err != nil {
		logger.Fatal("invalid SNOWFLAKE_NODE", zap.Error(err))
	}

	if err := config.ConnectDB(cfg.DB); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := models.Migrate(config.DB); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	dispatcher := newDispatcher(cfg, logger)

	audit := services.NewAuditService(newAuditSink(cfg, config.DB, logger), config.DB, logger)
	accounts := services.NewAccountService(config.DB, audit, dispatcher, logger)
	customers := services.NewCustomerService(config.DB, audit, dispatcher, logger)
	catalog := services.NewCatalogService(config.DB, audit, logger)
	orders := services.NewOrderService(config.DB, customers, audit, logger)
	reports := services.NewReportService(config.DB)
	exports := services.NewExportService(reports)
	cache := services.NewPDFCache(config.NewRedisClient(cfg.Redis), cfg.PDFCacheTTL)
	invoices := services.NewInvoiceService(config.DB, orders, cache, logger)
	reminders := services.NewReminderService(config.DB, dispatcher, cfg.Reminder.Cron, cfg.Reminder.Days, logger)

	if err := reminders.StartScheduler(); err != nil {
		logger.Fatal("failed to start reminder scheduler", zap.Error(err))
	}
	defer reminders.Stop()

	r, err := routes.SetupRouter(cfg, routes.Handlers{
		Auth:      controllers.NewAuthController(accounts, cfg.JWT.ExpiryHours, logger),
		Users:     controllers.NewUserController(accounts, logger),
		Customers: controllers.NewCustomerController(customers, logger),
		Services:  controllers.NewServiceController(catalog, logger),
		Orders:    controllers.NewOrderController(orders, exports, logger),
		Invoices:  controllers.NewInvoiceController(invoices, logger),
		Reports:   controllers.NewReportController(reports, logger),
		Dashboard: controllers.NewDashboardController(reports, logger),
		Reminders: controllers.NewReminderController(reminders, logger),
		Audit:     controllers.NewAuditController(audit, logger),
	})
	if err != nil {
		logger.Fatal("failed to set up router", zap.Error(err))
	}

	printRoutes(r)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newDispatcher registers only the channels whose credentials are present.
func newDispatcher(cfg *config.Config, logger *zap.Logger) *notifications.Dispatcher {
	d := notifications.NewDispatcher(logger)

	if email := notifications.NewEmailSender(notifications.EmailConfig(cfg.SMTP)); email != nil {
		d.Register(notifications.ChannelEmail, email)
	}

	twilioCfg := notifications.TwilioConfig(cfg.Twilio)
	if sms := notifications.NewSMSSender(twilioCfg); sms != nil {
		d.Register(notifications.ChannelSMS, sms)
	}
	if wa := notifications.NewWhatsAppSender(twilioCfg); wa != nil {
		d.Register(notifications.ChannelWhatsApp, wa)
	}

	for _, ch := range []notifications.Channel{notifications.ChannelEmail, notifications.ChannelSMS, notifications.ChannelWhatsApp} {
		logger.Info("notification channel", zap.String("channel", string(ch)), zap.Bool("enabled", d.Enabled(ch)))
	}
	return d
}

func newAuditSink(cfg *config.Config, db *gorm.DB, logger *zap.Logger) services.AuditSink {
	if cfg.Audit.Backend != "dynamodb" {
		return services.NewGormAuditSink(db)
	}

	client, err := config.NewDynamoDBClient(context.Background(), cfg.Audit)
	if err != nil {
		logger.Fatal("failed to create dynamodb client", zap.Error(err))
	}
	logger.Info("audit log backed by dynamodb", zap.String("table", cfg.Audit.DynamoDBTable))
	return services.NewDynamoAuditSink(client, cfg.Audit.DynamoDBTable)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
