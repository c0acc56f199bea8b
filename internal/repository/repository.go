package repository

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when an insert violates a unique constraint.
// Requires the connection to be opened with TranslateError enabled.
var ErrDuplicateKey = gorm.ErrDuplicatedKey

type sumResult struct {
	Total decimal.NullDecimal
}

func (s sumResult) value() decimal.Decimal {
	if !s.Total.Valid {
		return decimal.Zero
	}
	return s.Total.Decimal
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ErrRecordNotFound is returned by updates that matched no row.
var ErrRecordNotFound = gorm.ErrRecordNotFound
