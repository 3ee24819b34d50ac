package main

import (
	"log"
	"time"

	"shop_manager/internal/config"
	"shop_manager/internal/database"
	"shop_manager/internal/handlers"
	"shop_manager/internal/migrations"
	"shop_manager/internal/redis"
	"shop_manager/internal/repository"
	"shop_manager/internal/services"
	"shop_manager/pkg/mailer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize mail transport and dispatcher
	mailClient := mailer.NewClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.NotifyFrom)
	dispatcher := services.NewDispatcher(mailClient, time.Duration(cfg.NotifyTimeout)*time.Second, logger)

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	warrantyRepo := repository.NewWarrantyRepository(db)
	ruleRepo := repository.NewCommissionRuleRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	targetRepo := repository.NewTargetRepository(db)

	// Initialize services
	commissionService := services.NewCommissionService(ruleRepo, commissionRepo, redisClient, cacheTTL, logger)
	saleService := services.NewSaleService(
		saleRepo, commissionRepo, userRepo, commissionService,
		nil, // catalog lookup is handled by the inventory service
		dispatcher, redisClient, cacheTTL, cfg.CommissionBasis, cfg.SaleRetention, logger,
	)
	warrantyService := services.NewWarrantyService(warrantyRepo, userRepo, commissionService, dispatcher, cfg.CommissionBasis, logger)
	performanceService := services.NewPerformanceService(saleRepo, commissionRepo, targetRepo)

	// Initialize handlers
	saleHandler := handlers.NewSaleHandler(saleService)
	warrantyHandler := handlers.NewWarrantyHandler(warrantyService)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	performanceHandler := handlers.NewPerformanceHandler(performanceService)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/sales", saleHandler.CreateSale)
		api.GET("/sales", saleHandler.GetSales)
		api.GET("/sales/:id", saleHandler.GetSale)
		api.PUT("/sales/:id", saleHandler.UpdateSale)
		api.DELETE("/sales/:id", saleHandler.DeleteSale)

		api.POST("/warranties", warrantyHandler.FileWarranty)
		api.GET("/warranties", warrantyHandler.GetWarranties)
		api.GET("/warranties/expiring", warrantyHandler.GetExpiring)
		api.GET("/warranties/lookup", warrantyHandler.LookupByIMEI)
		api.GET("/warranties/:id", warrantyHandler.GetWarranty)

		api.POST("/commission-rules", commissionHandler.CreateRule)
		api.GET("/commission-rules", commissionHandler.GetRules)
		api.GET("/commission-rules/:id", commissionHandler.GetRule)
		api.PUT("/commission-rules/:id", commissionHandler.UpdateRule)

		api.GET("/commissions", commissionHandler.GetCommissions)
		api.PUT("/commissions/:id/status", commissionHandler.UpdateStatus)

		api.GET("/performance", performanceHandler.GetShopSummaries)
		api.GET("/performance/:salesman_id", performanceHandler.GetMonthlySummary)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
