package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medibill/internal/config"
	"medibill/internal/handler/api"
	"medibill/internal/middleware"
	"medibill/internal/payment"
	"medibill/internal/repository"
	"medibill/internal/service"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	gateway payment.Gateway,
	pharmacy service.PharmacyReader,
	cfg *config.Config,
	logger *zap.Logger,
	webhookDeduper middleware.WebhookDeduper,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Storage
	bills := repository.NewBillRepository(db)
	uow := repository.NewGormUnitOfWork(db)

	// Services
	billing := service.NewBillService(bills, pharmacy, logger)
	payments := service.NewPaymentService(uow, gateway, cfg.PayOS, logger)

	// Handlers
	billHandler := api.NewBillHandler(billing, logger)
	transactionHandler := api.NewTransactionHandler(payments, logger)

	// Bill management, behind the service API key when one is configured.
	billGroup := e.Group("/bills")
	billGroup.Use(middleware.APIAuth(cfg.API.Key))
	billGroup.POST("", billHandler.Create)
	billGroup.GET("", billHandler.List)
	billGroup.GET("/:billId", billHandler.Get)
	billGroup.GET("/:billId/details", billHandler.GetDetails)
	billGroup.PUT("/:billId", billHandler.Update)
	billGroup.DELETE("/:billId", billHandler.Delete)

	// Payment attempts
	transactionGroup := e.Group("/transactions")
	transactionGroup.POST("/create-payment/:billId", transactionHandler.CreatePayment, middleware.APIAuth(cfg.API.Key))
	transactionGroup.POST("/cash-payment/:billId", transactionHandler.CashPayment, middleware.APIAuth(cfg.API.Key))
	transactionGroup.GET("/:orderId", transactionHandler.GetPaymentInfo, middleware.APIAuth(cfg.API.Key))
	transactionGroup.PUT("/:orderId/cancel", transactionHandler.CancelPayment, middleware.APIAuth(cfg.API.Key))

	// Gateway callback: signature-verified inside the handler, deduplicated
	// at the transport layer, never behind the API key.
	transactionGroup.POST("/webhook", transactionHandler.Webhook, middleware.PaymentWebhookDedup(webhookDeduper))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
