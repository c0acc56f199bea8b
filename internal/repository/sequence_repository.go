package repository

import (
	"context"

	"gorm.io/gorm"
)

// SequenceRepository reserves monotonically increasing values per key
// from the code_sequences table.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next increments the counter for key and returns the new value.
// Concurrent callers never observe the same value.
func (r *SequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO code_sequences (key, value, updated_at) VALUES (?, 1, NOW())
		ON CONFLICT (key) DO UPDATE SET value = code_sequences.value + 1, updated_at = NOW()
		RETURNING value`, key).Scan(&value).Error
	return value, err
}
