package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceOrder struct {
	ID                    uint               `json:"id" gorm:"primaryKey"`
	OrderNumber           string             `json:"order_number" gorm:"size:50;unique;not null"`
	CustomerID            uint               `json:"customer_id" gorm:"not null;index"`
	VehicleID             uint               `json:"vehicle_id" gorm:"not null;index"`
	OrderDate             time.Time          `json:"order_date" gorm:"not null;index"`
	CompletedDate         *time.Time         `json:"completed_date"`
	HandoverDate          *time.Time         `json:"handover_date"`
	Status                string             `json:"status" gorm:"size:20;default:'Pending'"` // Pending, InProgress, Completed, Cancelled
	TotalAmount           decimal.Decimal    `json:"total_amount" gorm:"type:decimal(18,2);not null;default:0"`
	TotalActualHours      *decimal.Decimal   `json:"total_actual_hours" gorm:"type:decimal(10,2)"`
	TotalCOGS             decimal.Decimal    `json:"total_cogs" gorm:"column:total_cogs;type:decimal(18,2);not null;default:0"`
	COGSCalculationMethod string             `json:"cogs_calculation_method" gorm:"column:cogs_calculation_method;size:20;default:'FIFO'"`
	COGSCalculationDate   *time.Time         `json:"cogs_calculation_date" gorm:"column:cogs_calculation_date"`
	COGSBreakdown         *string            `json:"cogs_breakdown" gorm:"column:cogs_breakdown;type:text"`
	WarrantyCode          *string            `json:"warranty_code" gorm:"size:50"`
	WarrantyExpiryDate    *time.Time         `json:"warranty_expiry_date"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	DeletedAt             gorm.DeletedAt     `json:"deleted_at" gorm:"index"`
	Parts                 []ServiceOrderPart `json:"parts,omitempty" gorm:"foreignKey:ServiceOrderID"`
	Fees                  []ServiceOrderFee  `json:"fees,omitempty" gorm:"foreignKey:ServiceOrderID"`
}

type ServiceOrderStatus string

const (
	ServiceOrderPending    ServiceOrderStatus = "Pending"
	ServiceOrderInProgress ServiceOrderStatus = "InProgress"
	ServiceOrderCompleted  ServiceOrderStatus = "Completed"
	ServiceOrderCancelled  ServiceOrderStatus = "Cancelled"
)

// ServiceOrderPart is a part line consumed by a service order.
type ServiceOrderPart struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ServiceOrderID uint           `json:"service_order_id" gorm:"not null;index"`
	PartID         uint           `json:"part_id" gorm:"not null"`
	PartName       string         `json:"part_name" gorm:"size:200"`
	Quantity       int            `json:"quantity"`
	IsWarranty     bool           `json:"is_warranty" gorm:"default:false"`
	WarrantyUntil  *time.Time     `json:"warranty_until"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type ServiceFeeType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null"`
}

type ServiceOrderFee struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	ServiceOrderID   uint            `json:"service_order_id" gorm:"not null;index"`
	ServiceFeeTypeID uint            `json:"service_fee_type_id" gorm:"not null"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	CreatedAt        time.Time       `json:"created_at"`
	DeletedAt        gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
	ServiceFeeType   *ServiceFeeType `json:"service_fee_type,omitempty" gorm:"foreignKey:ServiceFeeTypeID"`
}
