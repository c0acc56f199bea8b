package repository

import (
	"context"

	"garage_finance/internal/models"

	"gorm.io/gorm"
)

type PartRepository interface {
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Part, error)
}

type partRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

func (r *partRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Part, error) {
	parts := make(map[uint]models.Part, len(ids))
	if len(ids) == 0 {
		return parts, nil
	}
	var rows []models.Part
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		parts[p.ID] = p
	}
	return parts, nil
}
