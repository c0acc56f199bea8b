package services

import (
	"strings"

	"garage_finance/internal/models"

	"github.com/shopspring/decimal"
)

// ParseCostingMethod resolves a method name once at the boundary.
// A blank name means FIFO.
func ParseCostingMethod(value string) (models.CostingMethod, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return models.CostingFIFO, nil
	}
	switch strings.ToUpper(trimmed) {
	case "FIFO":
		return models.CostingFIFO, nil
	case "WEIGHTEDAVERAGE", "WEIGHTED_AVERAGE", "AVERAGE":
		return models.CostingWeightedAverage, nil
	}
	return "", &InvalidMethodError{Value: value}
}

func historyType(method models.CostingMethod) string {
	if method == models.CostingWeightedAverage {
		return "cogs_weighted_average"
	}
	return "cogs_fifo"
}

var hundred = decimal.NewFromInt(100)

// margin returns part as a percentage of whole, or zero when whole <= 0.
// The value is left unrounded; the HTTP layer rounds for display.
func margin(part, whole decimal.Decimal) decimal.Decimal {
	if whole.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}
