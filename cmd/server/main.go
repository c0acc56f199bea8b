package main

import (
	"time"

	"garage_finance/internal/config"
	"garage_finance/internal/database"
	"garage_finance/internal/handlers"
	"garage_finance/internal/migrations"
	"garage_finance/internal/redis"
	"garage_finance/internal/repository"
	"garage_finance/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := config.GetLogger()

	// Load configuration
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	if cfg.AutoMigrate {
		if err := migrations.RunMigrations(db, cfg.DefaultLaborRate); err != nil {
			logger.WithError(err).Fatal("Failed to migrate database")
		}
	}

	// Code sequences come from Redis when configured, else from the database
	var sequencer services.Sequencer = repository.NewSequenceRepository(db)
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
		sequencer = redisClient
	}

	// Initialize repositories
	usageRepo := repository.NewBatchUsageRepository(db)
	orderRepo := repository.NewServiceOrderRepository(db)
	financialRepo := repository.NewFinancialRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	partRepo := repository.NewPartRepository(db)
	warrantyRepo := repository.NewWarrantyRepository(db)

	// Initialize services
	codes := services.NewCodeGenerator(sequencer, cfg.CodeRetryLimit, time.Duration(cfg.CodeRetryDelayMS)*time.Millisecond, logger)
	cogsService := services.NewCOGSService(usageRepo, orderRepo, financialRepo, logger)
	grossProfitService := services.NewGrossProfitService(orderRepo, cogsService, logger)
	reportService := services.NewProfitReportService(orderRepo, financialRepo, cfg.DefaultLaborRate, logger)
	transactionService := services.NewFinancialTransactionService(financialRepo, codes, logger)
	warrantyService := services.NewWarrantyService(warrantyRepo, orderRepo, customerRepo, partRepo, codes, cfg.DefaultWarrantyMonths, logger)

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(cogsService, grossProfitService, reportService, transactionService, cfg.DefaultCOGSMethod, logger)
	warrantyHandler := handlers.NewWarrantyHandler(warrantyService, logger)

	// Setup routes
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger(logger), handlers.CORS(cfg.CORSAllowedOrigins))
	handlers.RegisterRoutes(router, apiHandler, warrantyHandler)

	// Start server
	logger.Infof("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}
