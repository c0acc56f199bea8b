package repository

import (
	"context"

	"garage_finance/internal/models"

	"gorm.io/gorm"
)

type BatchUsageRepository interface {
	// GetByServiceOrder returns the usages whose batch and part both exist.
	GetByServiceOrder(ctx context.Context, serviceOrderID uint) ([]models.BatchUsageRecord, error)
	// CountOrphans counts usages that reference a missing batch or part.
	CountOrphans(ctx context.Context, serviceOrderID uint) (int64, error)
}

type batchUsageRepository struct {
	db *gorm.DB
}

func NewBatchUsageRepository(db *gorm.DB) BatchUsageRepository {
	return &batchUsageRepository{db: db}
}

func (r *batchUsageRepository) GetByServiceOrder(ctx context.Context, serviceOrderID uint) ([]models.BatchUsageRecord, error) {
	var records []models.BatchUsageRecord
	err := r.db.WithContext(ctx).
		Table("part_batch_usages AS u").
		Select(`u.id AS usage_id,
			u.service_order_id AS service_order_id,
			b.part_id AS part_id,
			p.part_name AS part_name,
			p.part_number AS part_number,
			b.id AS batch_id,
			b.batch_number AS batch_number,
			b.receive_date AS batch_receive_date,
			u.quantity_used AS quantity_used,
			u.unit_cost AS unit_cost,
			u.total_cost AS total_cost`).
		Joins("JOIN part_inventory_batches AS b ON b.id = u.part_inventory_batch_id").
		Joins("JOIN parts AS p ON p.id = b.part_id").
		Where("u.service_order_id = ? AND u.deleted_at IS NULL", serviceOrderID).
		Order("u.id").
		Scan(&records).Error
	return records, err
}

func (r *batchUsageRepository) CountOrphans(ctx context.Context, serviceOrderID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("part_batch_usages AS u").
		Joins("LEFT JOIN part_inventory_batches AS b ON b.id = u.part_inventory_batch_id").
		Joins("LEFT JOIN parts AS p ON p.id = b.part_id").
		Where("u.service_order_id = ? AND u.deleted_at IS NULL", serviceOrderID).
		Where("(b.id IS NULL OR p.id IS NULL)").
		Count(&count).Error
	return count, err
}
