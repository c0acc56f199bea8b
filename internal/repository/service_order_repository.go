package repository

import (
	"context"
	"time"

	"garage_finance/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// COGSStamp is the persisted outcome of a COGS calculation.
type COGSStamp struct {
	TotalCOGS       decimal.Decimal
	Method          string
	CalculationDate time.Time
	Breakdown       string
}

type ServiceOrderRepository interface {
	GetByID(ctx context.Context, id uint) (*models.ServiceOrder, error)
	GetWithParts(ctx context.Context, id uint) (*models.ServiceOrder, error)
	SaveCOGS(ctx context.Context, id uint, stamp COGSStamp, history *models.CalculationHistory) error
	SumCOGS(ctx context.Context, from, to time.Time, status string) (decimal.Decimal, error)
	SumActualHours(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumLaborFees(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type serviceOrderRepository struct {
	db *gorm.DB
}

func NewServiceOrderRepository(db *gorm.DB) ServiceOrderRepository {
	return &serviceOrderRepository{db: db}
}

func (r *serviceOrderRepository) GetByID(ctx context.Context, id uint) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *serviceOrderRepository) GetWithParts(ctx context.Context, id uint) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := r.db.WithContext(ctx).Preload("Parts").First(&order, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *serviceOrderRepository) SaveCOGS(ctx context.Context, id uint, stamp COGSStamp, history *models.CalculationHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ServiceOrder{}).Where("id = ?", id).Updates(map[string]interface{}{
			"total_cogs":              stamp.TotalCOGS,
			"cogs_calculation_method": stamp.Method,
			"cogs_calculation_date":   stamp.CalculationDate,
			"cogs_breakdown":          stamp.Breakdown,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		if history == nil {
			return nil
		}
		return tx.Create(history).Error
	})
}

// SumCOGS totals the persisted COGS of orders dated within [from, to].
// Orders without a stamped positive COGS are not included.
func (r *serviceOrderRepository) SumCOGS(ctx context.Context, from, to time.Time, status string) (decimal.Decimal, error) {
	var res sumResult
	query := r.db.WithContext(ctx).Model(&models.ServiceOrder{}).
		Select("SUM(total_cogs) AS total").
		Where("order_date >= ? AND order_date <= ? AND total_cogs > 0", from, to)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Scan(&res).Error; err != nil {
		return decimal.Zero, err
	}
	return res.value(), nil
}

func (r *serviceOrderRepository) SumActualHours(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var res sumResult
	err := r.db.WithContext(ctx).Model(&models.ServiceOrder{}).
		Select("SUM(total_actual_hours) AS total").
		Where("order_date >= ? AND order_date <= ?", from, to).
		Where("total_actual_hours IS NOT NULL AND total_actual_hours > 0").
		Scan(&res).Error
	if err != nil {
		return decimal.Zero, err
	}
	return res.value(), nil
}

// SumLaborFees totals fee lines whose fee type name mentions labor, over
// orders in range that recorded actual hours.
func (r *serviceOrderRepository) SumLaborFees(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	orders := r.db.Model(&models.ServiceOrder{}).
		Select("id").
		Where("order_date >= ? AND order_date <= ?", from, to).
		Where("total_actual_hours IS NOT NULL AND total_actual_hours > 0")

	var res sumResult
	err := r.db.WithContext(ctx).
		Table("service_order_fees AS f").
		Select("SUM(f.amount) AS total").
		Joins("JOIN service_fee_types AS t ON t.id = f.service_fee_type_id").
		Where("f.deleted_at IS NULL").
		Where("LOWER(t.name) LIKE ?", "%labor%").
		Where("f.service_order_id IN (?)", orders).
		Scan(&res).Error
	if err != nil {
		return decimal.Zero, err
	}
	return res.value(), nil
}
