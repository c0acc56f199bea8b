package main

import (
	"garage_finance/internal/config"
	"garage_finance/internal/database"
	"garage_finance/internal/migrations"
)

func main() {
	logger := config.GetLogger()
	logger.Info("Initializing database...")

	// Load configuration
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	// Force recreate all tables
	if err := migrations.ResetSchema(db, cfg.DefaultLaborRate); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	logger.Info("Database initialized")
}
