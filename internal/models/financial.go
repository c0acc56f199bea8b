package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FinancialTransaction struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	TransactionNumber string          `json:"transaction_number" gorm:"size:50;unique;not null"`
	TransactionType   string          `json:"transaction_type" gorm:"size:20;not null;index"` // Income, Expense
	Category          string          `json:"category" gorm:"size:50;not null"`
	SubCategory       string          `json:"sub_category" gorm:"size:100"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	TransactionDate   time.Time       `json:"transaction_date" gorm:"not null;index"`
	Status            string          `json:"status" gorm:"size:20;default:'Pending'"` // Pending, Completed, Cancelled
	Description       string          `json:"description" gorm:"size:500"`
	RelatedEntity     *string         `json:"related_entity" gorm:"size:100"`
	RelatedEntityID   *uint           `json:"related_entity_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

const (
	TransactionIncome  = "Income"
	TransactionExpense = "Expense"

	TransactionPending   = "Pending"
	TransactionCompleted = "Completed"
	TransactionCancelled = "Cancelled"

	CategoryServiceRevenue   = "Service Revenue"
	CategoryInsuranceRevenue = "Insurance Revenue"
	CategoryPartsSale        = "Parts Sale"
	CategoryPartsPurchase    = "Parts Purchase"
)

type FinancialSettings struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	SettingName  string          `json:"setting_name" gorm:"size:50;not null;index"` // default_labor_rate
	NumericValue decimal.Decimal `json:"numeric_value" gorm:"type:decimal(18,4)"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

const SettingDefaultLaborRate = "default_labor_rate"

type CalculationHistory struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	ServiceOrderID       uint            `json:"service_order_id" gorm:"not null;index"`
	CalculationType      string          `json:"calculation_type" gorm:"size:40;not null"` // cogs_fifo, cogs_weighted_average
	ItemCount            int             `json:"item_count"`
	CalculatedAmount     decimal.Decimal `json:"calculated_amount" gorm:"type:decimal(18,2)"`
	CalculationTimestamp time.Time       `json:"calculation_timestamp"`
	CreatedAt            time.Time       `json:"created_at"`
}

// CodeSequence backs atomic sequence reservation for generated codes.
type CodeSequence struct {
	Key       string    `json:"key" gorm:"primaryKey;size:100"`
	Value     int64     `json:"value" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}
