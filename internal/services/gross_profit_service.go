package services

import (
	"context"

	"garage_finance/internal/models"
	"garage_finance/internal/repository"

	"github.com/sirupsen/logrus"
)

type GrossProfitService interface {
	CalculateGrossProfit(ctx context.Context, serviceOrderID uint) (*models.GrossProfitResult, error)
}

type grossProfitService struct {
	orderRepo repository.ServiceOrderRepository
	cogs      COGSService
	logger    logrus.FieldLogger
}

func NewGrossProfitService(orderRepo repository.ServiceOrderRepository, cogs COGSService, logger logrus.FieldLogger) GrossProfitService {
	return &grossProfitService{orderRepo: orderRepo, cogs: cogs, logger: logger}
}

// CalculateGrossProfit uses the cached COGS whenever a calculation date is
// stamped on the order, including a cached zero.
func (s *grossProfitService) CalculateGrossProfit(ctx context.Context, serviceOrderID uint) (*models.GrossProfitResult, error) {
	order, err := s.orderRepo.GetByID(ctx, serviceOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Entity: "service order", ID: serviceOrderID}
	}

	revenue := order.TotalAmount
	cogs := order.TotalCOGS
	if order.COGSCalculationDate == nil {
		method, err := ParseCostingMethod(order.COGSCalculationMethod)
		if err != nil {
			return nil, err
		}
		result, err := s.cogs.Calculate(ctx, serviceOrderID, method)
		if err != nil {
			return nil, err
		}
		cogs = result.TotalCOGS
		s.logger.WithField("service_order_id", serviceOrderID).Debug("COGS not yet stamped, computed on the fly")
	}

	gross := revenue.Sub(cogs)
	return &models.GrossProfitResult{
		ServiceOrderID:    serviceOrderID,
		TotalRevenue:      revenue,
		TotalCOGS:         cogs,
		GrossProfit:       gross,
		GrossProfitMargin: margin(gross, revenue),
	}, nil
}
