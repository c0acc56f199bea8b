package repository

import (
	"context"
	"time"

	"garage_finance/internal/models"

	"gorm.io/gorm"
)

// PartWarrantyStamp marks a service order part as covered until a date.
type PartWarrantyStamp struct {
	ServiceOrderPartID uint
	WarrantyUntil      time.Time
}

// WarrantyGeneration is everything written when a warranty is (re)generated.
type WarrantyGeneration struct {
	Warranty       *models.Warranty
	Items          []models.WarrantyItem
	PartStamps     []PartWarrantyStamp
	ServiceOrderID uint
}

type WarrantyRepository interface {
	GetByServiceOrderID(ctx context.Context, serviceOrderID uint) (*models.Warranty, error)
	GetByCode(ctx context.Context, code string) (*models.Warranty, error)
	GetByID(ctx context.Context, id uint) (*models.Warranty, error)
	Search(ctx context.Context, filter models.WarrantySearchFilter) ([]models.Warranty, error)
	SaveGeneration(ctx context.Context, gen WarrantyGeneration) error
	CreateClaim(ctx context.Context, claim *models.WarrantyClaim) error
	GetClaim(ctx context.Context, id uint) (*models.WarrantyClaim, error)
	UpdateClaim(ctx context.Context, claim *models.WarrantyClaim) error
}

type warrantyRepository struct {
	db *gorm.DB
}

func NewWarrantyRepository(db *gorm.DB) WarrantyRepository {
	return &warrantyRepository{db: db}
}

func (r *warrantyRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Claims").
		Preload("Customer").
		Preload("Vehicle")
}

func (r *warrantyRepository) first(query *gorm.DB) (*models.Warranty, error) {
	var warranty models.Warranty
	if err := query.First(&warranty).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &warranty, nil
}

func (r *warrantyRepository) GetByServiceOrderID(ctx context.Context, serviceOrderID uint) (*models.Warranty, error) {
	return r.first(r.preloaded(ctx).Where("service_order_id = ?", serviceOrderID))
}

func (r *warrantyRepository) GetByCode(ctx context.Context, code string) (*models.Warranty, error) {
	return r.first(r.preloaded(ctx).Where("warranty_code = ?", code))
}

func (r *warrantyRepository) GetByID(ctx context.Context, id uint) (*models.Warranty, error) {
	return r.first(r.preloaded(ctx).Where("id = ?", id))
}

func (r *warrantyRepository) Search(ctx context.Context, filter models.WarrantySearchFilter) ([]models.Warranty, error) {
	query := r.preloaded(ctx).Model(&models.Warranty{})
	if filter.CustomerID != nil {
		query = query.Where("warranties.customer_id = ?", *filter.CustomerID)
	}
	if filter.VehicleID != nil {
		query = query.Where("warranties.vehicle_id = ?", *filter.VehicleID)
	}
	if filter.Status != "" {
		query = query.Where("warranties.status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("warranties.warranty_start_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("warranties.warranty_end_date <= ?", *filter.EndDate)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.
			Joins("LEFT JOIN customers ON customers.id = warranties.customer_id").
			Joins("LEFT JOIN vehicles ON vehicles.id = warranties.vehicle_id").
			Where("warranties.warranty_code ILIKE ? OR customers.name ILIKE ? OR vehicles.license_plate ILIKE ?", like, like, like)
	}

	var warranties []models.Warranty
	err := query.Order("warranties.warranty_start_date DESC").Find(&warranties).Error
	return warranties, err
}

// SaveGeneration writes the warranty, replaces its items, flags the
// covered parts and stamps the service order in one transaction.
func (r *warrantyRepository) SaveGeneration(ctx context.Context, gen WarrantyGeneration) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := gen.Warranty
		if w.ID == 0 {
			if err := tx.Omit("Items", "Claims", "Customer", "Vehicle").Create(w).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Omit("Items", "Claims", "Customer", "Vehicle").Save(w).Error; err != nil {
				return err
			}
			if err := tx.Where("warranty_id = ?", w.ID).Delete(&models.WarrantyItem{}).Error; err != nil {
				return err
			}
		}

		for i := range gen.Items {
			gen.Items[i].WarrantyID = w.ID
		}
		if len(gen.Items) > 0 {
			if err := tx.Create(&gen.Items).Error; err != nil {
				return err
			}
		}

		for _, stamp := range gen.PartStamps {
			err := tx.Model(&models.ServiceOrderPart{}).
				Where("id = ?", stamp.ServiceOrderPartID).
				Updates(map[string]interface{}{
					"is_warranty":    true,
					"warranty_until": stamp.WarrantyUntil,
				}).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&models.ServiceOrder{}).
			Where("id = ?", gen.ServiceOrderID).
			Updates(map[string]interface{}{
				"warranty_code":        w.WarrantyCode,
				"warranty_expiry_date": w.WarrantyEndDate,
			}).Error
	})
	if isDuplicate(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *warrantyRepository) CreateClaim(ctx context.Context, claim *models.WarrantyClaim) error {
	err := r.db.WithContext(ctx).Create(claim).Error
	if isDuplicate(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *warrantyRepository) GetClaim(ctx context.Context, id uint) (*models.WarrantyClaim, error) {
	var claim models.WarrantyClaim
	if err := r.db.WithContext(ctx).First(&claim, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

func (r *warrantyRepository) UpdateClaim(ctx context.Context, claim *models.WarrantyClaim) error {
	return r.db.WithContext(ctx).Save(claim).Error
}
