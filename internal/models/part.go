package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Part struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	PartNumber     string         `json:"part_number" gorm:"size:50;not null;index"`
	PartName       string         `json:"part_name" gorm:"size:200;not null"`
	WarrantyMonths int            `json:"warranty_months" gorm:"default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// PartInventoryBatch is one stock receipt of a part.
type PartInventoryBatch struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	PartID            uint            `json:"part_id" gorm:"not null;index"`
	BatchNumber       string          `json:"batch_number" gorm:"size:50;not null"`
	ReceiveDate       time.Time       `json:"receive_date" gorm:"not null"`
	QuantityReceived  int             `json:"quantity_received" gorm:"not null"`
	QuantityRemaining int             `json:"quantity_remaining"`
	UnitCost          decimal.Decimal `json:"unit_cost" gorm:"type:decimal(18,4);not null"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `json:"deleted_at" gorm:"index"`

	Part *Part `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

// PartBatchUsage records stock drawn from a batch for a service order.
// TotalCost is written as QuantityUsed * UnitCost at withdrawal time.
type PartBatchUsage struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	PartInventoryBatchID uint            `json:"part_inventory_batch_id" gorm:"not null;index"`
	ServiceOrderID       uint            `json:"service_order_id" gorm:"not null;index"`
	ServiceOrderPartID   *uint           `json:"service_order_part_id"`
	QuantityUsed         int             `json:"quantity_used" gorm:"not null"`
	UnitCost             decimal.Decimal `json:"unit_cost" gorm:"type:decimal(18,4);not null"`
	UnitPrice            decimal.Decimal `json:"unit_price" gorm:"type:decimal(18,4);not null"`
	TotalCost            decimal.Decimal `json:"total_cost" gorm:"type:decimal(18,4);not null"`
	TotalPrice           decimal.Decimal `json:"total_price" gorm:"type:decimal(18,4);not null"`
	UsageDate            time.Time       `json:"usage_date"`
	CreatedAt            time.Time       `json:"created_at"`
	DeletedAt            gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
}

// BatchUsageRecord is a batch usage joined with its batch and part.
// Only rows whose batch and part both exist are ever materialized.
type BatchUsageRecord struct {
	UsageID          uint
	ServiceOrderID   uint
	PartID           uint
	PartName         string
	PartNumber       string
	BatchID          uint
	BatchNumber      string
	BatchReceiveDate time.Time
	QuantityUsed     int
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
}
