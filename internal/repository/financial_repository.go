package repository

import (
	"context"
	"time"

	"garage_finance/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionSum selects completed transactions for an aggregate.
// An empty Categories list matches every category; Exclude inverts it.
type TransactionSum struct {
	Type       string
	From       time.Time
	To         time.Time
	Categories []string
	Exclude    bool
}

type FinancialRepository interface {
	CreateSettings(ctx context.Context, settings *models.FinancialSettings) error
	GetSettings(ctx context.Context, settingName string) (*models.FinancialSettings, error)
	UpdateSettings(ctx context.Context, settings *models.FinancialSettings) error
	GetCalculationHistory(ctx context.Context, serviceOrderID uint) ([]models.CalculationHistory, error)
	CreateTransaction(ctx context.Context, tx *models.FinancialTransaction) error
	SumTransactions(ctx context.Context, q TransactionSum) (decimal.Decimal, error)
}

type financialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

func (r *financialRepository) CreateSettings(ctx context.Context, settings *models.FinancialSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *financialRepository) GetSettings(ctx context.Context, settingName string) (*models.FinancialSettings, error) {
	var settings models.FinancialSettings
	err := r.db.WithContext(ctx).Where("setting_name = ? AND is_active = ?", settingName, true).First(&settings).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *financialRepository) UpdateSettings(ctx context.Context, settings *models.FinancialSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *financialRepository) GetCalculationHistory(ctx context.Context, serviceOrderID uint) ([]models.CalculationHistory, error) {
	var history []models.CalculationHistory
	err := r.db.WithContext(ctx).
		Where("service_order_id = ?", serviceOrderID).
		Order("calculation_timestamp DESC").
		Find(&history).Error
	return history, err
}

func (r *financialRepository) CreateTransaction(ctx context.Context, tx *models.FinancialTransaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if isDuplicate(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *financialRepository) SumTransactions(ctx context.Context, q TransactionSum) (decimal.Decimal, error) {
	var res sumResult
	query := r.db.WithContext(ctx).Model(&models.FinancialTransaction{}).
		Select("SUM(amount) AS total").
		Where("transaction_type = ? AND status = ?", q.Type, models.TransactionCompleted).
		Where("transaction_date >= ? AND transaction_date <= ?", q.From, q.To)
	if len(q.Categories) > 0 {
		if q.Exclude {
			query = query.Where("category NOT IN ?", q.Categories)
		} else {
			query = query.Where("category IN ?", q.Categories)
		}
	}
	if err := query.Scan(&res).Error; err != nil {
		return decimal.Zero, err
	}
	return res.value(), nil
}
