package database

import (
	"fmt"
	"strings"
	"time"

	"garage_finance/internal/config"
	"garage_finance/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entities lists every table owned by this service, in dependency order.
func Entities() []interface{} {
	return []interface{}{
		&models.Customer{},
		&models.Vehicle{},
		&models.Part{},
		&models.PartInventoryBatch{},
		&models.ServiceOrder{},
		&models.ServiceOrderPart{},
		&models.PartBatchUsage{},
		&models.ServiceFeeType{},
		&models.ServiceOrderFee{},
		&models.FinancialTransaction{},
		&models.FinancialSettings{},
		&models.CalculationHistory{},
		&models.CodeSequence{},
		&models.Warranty{},
		&models.WarrantyItem{},
		&models.WarrantyClaim{},
	}
}

func Initialize(databaseURL string, logLevel string) (*gorm.DB, error) {
	// Configure GORM
	gormConfig := &gorm.Config{
		Logger:         newLogger(logLevel),
		TranslateError: true,
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(databaseURL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	config.GetLogger().Info("Database connected successfully")
	return db, nil
}

func newLogger(level string) logger.Interface {
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "debug", "trace":
		lvl = logger.Info
	case "error", "fatal", "panic":
		lvl = logger.Error
	}
	return logger.New(
		config.GetLogger(),
		logger.Config{
			Colorful:      false,
			LogLevel:      lvl,
			SlowThreshold: time.Second,
		},
	)
}
