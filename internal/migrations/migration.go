package migrations

import (
	"context"

	"garage_finance/internal/config"
	"garage_finance/internal/database"
	"garage_finance/internal/models"
	"garage_finance/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and creates default data
func RunMigrations(db *gorm.DB, defaultLaborRate decimal.Decimal) error {
	logger := config.GetLogger()
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(database.Entities()...); err != nil {
		return err
	}

	if err := createDefaultData(db, defaultLaborRate); err != nil {
		logger.WithError(err).Warn("Failed to create default data")
	}

	logger.Info("Database migrations completed successfully!")
	return nil
}

// ResetSchema drops every table and recreates it.
func ResetSchema(db *gorm.DB, defaultLaborRate decimal.Decimal) error {
	logger := config.GetLogger()
	logger.Info("Dropping existing tables...")

	entities := database.Entities()
	// drop children before parents
	reversed := make([]interface{}, 0, len(entities))
	for i := len(entities) - 1; i >= 0; i-- {
		reversed = append(reversed, entities[i])
	}
	if err := db.Migrator().DropTable(reversed...); err != nil {
		logger.WithError(err).Warn("Error dropping tables")
	}

	return RunMigrations(db, defaultLaborRate)
}

// createDefaultData seeds the labor rate setting and the labor fee type.
// A stored labor rate that is not positive is replaced by the configured one.
func createDefaultData(db *gorm.DB, defaultLaborRate decimal.Decimal) error {
	logger := config.GetLogger()
	ctx := context.Background()
	financialRepo := repository.NewFinancialRepository(db)

	existing, err := financialRepo.GetSettings(ctx, models.SettingDefaultLaborRate)
	if err != nil {
		return err
	}
	if existing == nil {
		logger.Info("Creating default labor rate setting...")
		err = financialRepo.CreateSettings(ctx, &models.FinancialSettings{
			SettingName:  models.SettingDefaultLaborRate,
			NumericValue: defaultLaborRate,
			IsActive:     true,
		})
		if err != nil {
			return err
		}
	} else if !existing.NumericValue.GreaterThan(decimal.Zero) {
		logger.Info("Resetting non-positive labor rate setting...")
		existing.NumericValue = defaultLaborRate
		if err := financialRepo.UpdateSettings(ctx, existing); err != nil {
			return err
		}
	}

	var feeTypes int64
	if err := db.Model(&models.ServiceFeeType{}).Where("LOWER(name) = ?", "labor").Count(&feeTypes).Error; err != nil {
		return err
	}
	if feeTypes == 0 {
		logger.Info("Creating default Labor fee type...")
		if err := db.Create(&models.ServiceFeeType{Name: "Labor"}).Error; err != nil {
			return err
		}
	}
	return nil
}
