package models

import (
	"time"

	"gorm.io/gorm"
)

type Warranty struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	WarrantyCode      string          `json:"warranty_code" gorm:"size:50;unique;not null"`
	ServiceOrderID    uint            `json:"service_order_id" gorm:"not null;index"`
	CustomerID        uint            `json:"customer_id" gorm:"not null;index"`
	VehicleID         uint            `json:"vehicle_id" gorm:"not null;index"`
	WarrantyStartDate time.Time       `json:"warranty_start_date"`
	WarrantyEndDate   time.Time       `json:"warranty_end_date"`
	Status            string          `json:"status" gorm:"size:20;default:'Active'"`
	HandoverBy        *string         `json:"handover_by" gorm:"size:100"`
	HandoverLocation  *string         `json:"handover_location" gorm:"size:200"`
	Notes             *string         `json:"notes" gorm:"size:1000"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `json:"deleted_at" gorm:"index"`
	Items             []WarrantyItem  `json:"items" gorm:"foreignKey:WarrantyID"`
	Claims            []WarrantyClaim `json:"claims" gorm:"foreignKey:WarrantyID"`
	Customer          *Customer       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Vehicle           *Vehicle        `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}

type WarrantyItem struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	WarrantyID         uint           `json:"warranty_id" gorm:"not null;index"`
	ServiceOrderPartID *uint          `json:"service_order_part_id"`
	PartID             *uint          `json:"part_id"`
	PartName           string         `json:"part_name" gorm:"size:200"`
	PartNumber         *string        `json:"part_number" gorm:"size:50"`
	WarrantyMonths     int            `json:"warranty_months"`
	WarrantyStartDate  time.Time      `json:"warranty_start_date"`
	WarrantyEndDate    time.Time      `json:"warranty_end_date"`
	Status             string         `json:"status" gorm:"size:20;default:'Active'"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type WarrantyClaim struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	ClaimNumber      string     `json:"claim_number" gorm:"size:50;unique;not null"`
	WarrantyID       uint       `json:"warranty_id" gorm:"not null;index"`
	ServiceOrderID   *uint      `json:"service_order_id"`
	CustomerID       uint       `json:"customer_id"`
	VehicleID        uint       `json:"vehicle_id"`
	ClaimDate        time.Time  `json:"claim_date"`
	IssueDescription string     `json:"issue_description" gorm:"size:1000"`
	Status           string     `json:"status" gorm:"size:20;default:'Pending'"`
	Resolution       *string    `json:"resolution" gorm:"size:1000"`
	ResolvedDate     *time.Time `json:"resolved_date"`
	Notes            *string    `json:"notes" gorm:"size:1000"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "Active"
	WarrantyExpired WarrantyStatus = "Expired"
	WarrantyVoid    WarrantyStatus = "Void"
)

type ClaimStatus string

const (
	ClaimPending    ClaimStatus = "Pending"
	ClaimInProgress ClaimStatus = "InProgress"
	ClaimResolved   ClaimStatus = "Resolved"
	ClaimRejected   ClaimStatus = "Rejected"
)
