package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostingMethod selects how a COGS line item is attributed to batches.
type CostingMethod string

const (
	CostingFIFO            CostingMethod = "FIFO"
	CostingWeightedAverage CostingMethod = "WeightedAverage"
)

func (m CostingMethod) String() string {
	return string(m)
}

type COGSLineItem struct {
	PartID           uint            `json:"part_id"`
	PartName         string          `json:"part_name"`
	PartNumber       string          `json:"part_number"`
	QuantityUsed     int             `json:"quantity_used"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	BatchNumber      *string         `json:"batch_number"`
	BatchReceiveDate *time.Time      `json:"batch_receive_date"`
	Method           CostingMethod   `json:"calculation_method"`
}

type COGSResult struct {
	ServiceOrderID      uint            `json:"service_order_id"`
	Method              CostingMethod   `json:"calculation_method"`
	TotalCOGS           decimal.Decimal `json:"total_cogs"`
	CalculationDate     *time.Time      `json:"calculation_date"`
	LineItems           []COGSLineItem  `json:"item_details"`
	SerializedBreakdown string          `json:"-"`
}

type GrossProfitResult struct {
	ServiceOrderID    uint            `json:"service_order_id"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalCOGS         decimal.Decimal `json:"total_cogs"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	GrossProfitMargin decimal.Decimal `json:"gross_profit_margin"`
}

type RevenueResult struct {
	ServiceRevenue decimal.Decimal `json:"service_revenue"`
	PartsSale      decimal.Decimal `json:"parts_sale"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

type COGSSummary struct {
	TotalCOGS decimal.Decimal `json:"total_cogs"`
	Notes     string          `json:"notes"`
}

type ExpensesResult struct {
	LaborCost     decimal.Decimal `json:"labor_cost"`
	OperatingCost decimal.Decimal `json:"operating_cost"`
	PartsPurchase decimal.Decimal `json:"parts_purchase"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

type ProfitResult struct {
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	GrossProfitMargin decimal.Decimal `json:"gross_profit_margin"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	NetProfitMargin   decimal.Decimal `json:"net_profit_margin"`
}

// IncomeStatement is derived on demand for a date window and never stored.
type IncomeStatement struct {
	FromDate time.Time      `json:"from_date"`
	ToDate   time.Time      `json:"to_date"`
	Revenue  RevenueResult  `json:"revenue"`
	COGS     COGSSummary    `json:"cogs"`
	Expenses ExpensesResult `json:"expenses"`
	Profit   ProfitResult   `json:"profit"`
}

type WarrantyGenerationOptions struct {
	WarrantyStartDate     *time.Time `json:"warranty_start_date"`
	DefaultWarrantyMonths int        `json:"default_warranty_months"`
	ForceRegenerate       bool       `json:"force_regenerate"`
	HandoverBy            *string    `json:"handover_by"`
	HandoverLocation      *string    `json:"handover_location"`
}

type WarrantySearchFilter struct {
	CustomerID *uint      `form:"customer_id"`
	VehicleID  *uint      `form:"vehicle_id"`
	Status     string     `form:"status"`
	StartDate  *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate    *time.Time `form:"end_date" time_format:"2006-01-02"`
	Keyword    string     `form:"keyword"`
}

type ClaimCreateRequest struct {
	ClaimNumber      string     `json:"claim_number"`
	ClaimDate        *time.Time `json:"claim_date"`
	ServiceOrderID   *uint      `json:"service_order_id"`
	CustomerID       *uint      `json:"customer_id"`
	VehicleID        *uint      `json:"vehicle_id"`
	IssueDescription string     `json:"issue_description" binding:"required"`
	Notes            *string    `json:"notes"`
}

type ClaimStatusUpdate struct {
	Status       string     `json:"status" binding:"required"`
	Resolution   *string    `json:"resolution"`
	ResolvedDate *time.Time `json:"resolved_date"`
	Notes        *string    `json:"notes"`
}
