package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"garage_finance/internal/models"
	"garage_finance/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type COGSService interface {
	// Calculate aggregates the batch usages of a service order into
	// per-part line items. Nothing is persisted.
	Calculate(ctx context.Context, serviceOrderID uint, method models.CostingMethod) (*models.COGSResult, error)
	// CalculateAndStore calculates and stamps the result on the service
	// order. A blank method uses the method stored on the order.
	CalculateAndStore(ctx context.Context, serviceOrderID uint, method string) (*models.COGSResult, error)
	// GetBreakdown serves the persisted snapshot, recomputing when it is
	// absent or unreadable.
	GetBreakdown(ctx context.Context, serviceOrderID uint) (*models.COGSResult, error)
	GetCalculationHistory(ctx context.Context, serviceOrderID uint) ([]models.CalculationHistory, error)
	// BreakdownCorruptions counts snapshots that could not be parsed.
	BreakdownCorruptions() int64
}

type cogsService struct {
	usageRepo     repository.BatchUsageRepository
	orderRepo     repository.ServiceOrderRepository
	financialRepo repository.FinancialRepository
	logger        logrus.FieldLogger
	corruptions   atomic.Int64
	now           func() time.Time
}

func NewCOGSService(usageRepo repository.BatchUsageRepository, orderRepo repository.ServiceOrderRepository, financialRepo repository.FinancialRepository, logger logrus.FieldLogger) COGSService {
	return &cogsService{
		usageRepo:     usageRepo,
		orderRepo:     orderRepo,
		financialRepo: financialRepo,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *cogsService) Calculate(ctx context.Context, serviceOrderID uint, method models.CostingMethod) (*models.COGSResult, error) {
	if method != models.CostingFIFO && method != models.CostingWeightedAverage {
		return nil, &InvalidMethodError{Value: string(method)}
	}

	records, err := s.usageRepo.GetByServiceOrder(ctx, serviceOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch usages: %w", err)
	}
	s.warnOrphans(ctx, serviceOrderID)

	calculatedAt := s.now()
	result := &models.COGSResult{
		ServiceOrderID:  serviceOrderID,
		Method:          method,
		TotalCOGS:       decimal.Zero,
		CalculationDate: &calculatedAt,
		LineItems:       []models.COGSLineItem{},
	}

	groups := make(map[uint][]models.BatchUsageRecord)
	partIDs := make([]uint, 0)
	for _, rec := range records {
		if _, ok := groups[rec.PartID]; !ok {
			partIDs = append(partIDs, rec.PartID)
		}
		groups[rec.PartID] = append(groups[rec.PartID], rec)
	}
	sort.Slice(partIDs, func(i, j int) bool { return partIDs[i] < partIDs[j] })

	for _, partID := range partIDs {
		item, ok := s.aggregate(serviceOrderID, method, groups[partID])
		if !ok {
			continue
		}
		result.LineItems = append(result.LineItems, item)
		result.TotalCOGS = result.TotalCOGS.Add(item.TotalCost)
	}

	result.SerializedBreakdown, err = encodeBreakdown(method, calculatedAt, result.LineItems)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"service_order_id": serviceOrderID,
		"method":           method,
		"total_cogs":       result.TotalCOGS.String(),
		"line_items":       len(result.LineItems),
	}).Info("COGS calculated")

	return result, nil
}

// aggregate folds the usages of one part into a line item. Cost is the sum
// of what each usage was charged; FIFO only decides which batch is reported.
func (s *cogsService) aggregate(serviceOrderID uint, method models.CostingMethod, group []models.BatchUsageRecord) (models.COGSLineItem, bool) {
	if method == models.CostingFIFO {
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if !a.BatchReceiveDate.Equal(b.BatchReceiveDate) {
				return a.BatchReceiveDate.Before(b.BatchReceiveDate)
			}
			return a.UsageID < b.UsageID
		})
	}

	quantity := 0
	total := decimal.Zero
	for _, rec := range group {
		quantity += rec.QuantityUsed
		total = total.Add(rec.TotalCost)
	}

	first := group[0]
	if quantity == 0 {
		s.logger.WithFields(logrus.Fields{
			"service_order_id": serviceOrderID,
			"part_id":          first.PartID,
		}).Warn("part consumed with zero total quantity, skipping line item")
		return models.COGSLineItem{}, false
	}

	item := models.COGSLineItem{
		PartID:       first.PartID,
		PartName:     first.PartName,
		PartNumber:   first.PartNumber,
		QuantityUsed: quantity,
		UnitCost:     total.Div(decimal.NewFromInt(int64(quantity))),
		TotalCost:    total,
		Method:       method,
	}
	if method == models.CostingFIFO {
		batchNumber := first.BatchNumber
		receivedAt := first.BatchReceiveDate
		item.BatchNumber = &batchNumber
		item.BatchReceiveDate = &receivedAt
	}
	return item, true
}

func (s *cogsService) warnOrphans(ctx context.Context, serviceOrderID uint) {
	orphans, err := s.usageRepo.CountOrphans(ctx, serviceOrderID)
	if err != nil {
		s.logger.WithError(err).WithField("service_order_id", serviceOrderID).Warn("failed to count orphaned batch usages")
		return
	}
	if orphans > 0 {
		s.logger.WithFields(logrus.Fields{
			"service_order_id": serviceOrderID,
			"orphans":          orphans,
		}).Warn("batch usages reference a missing batch or part and were excluded")
	}
}

func (s *cogsService) CalculateAndStore(ctx context.Context, serviceOrderID uint, method string) (*models.COGSResult, error) {
	order, err := s.orderRepo.GetByID(ctx, serviceOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Entity: "service order", ID: serviceOrderID}
	}

	if strings.TrimSpace(method) == "" {
		method = order.COGSCalculationMethod
	}
	costing, err := ParseCostingMethod(method)
	if err != nil {
		return nil, err
	}

	result, err := s.Calculate(ctx, serviceOrderID, costing)
	if err != nil {
		return nil, err
	}

	stamp := repository.COGSStamp{
		TotalCOGS:       result.TotalCOGS,
		Method:          costing.String(),
		CalculationDate: *result.CalculationDate,
		Breakdown:       result.SerializedBreakdown,
	}
	history := &models.CalculationHistory{
		ServiceOrderID:       serviceOrderID,
		CalculationType:      historyType(costing),
		ItemCount:            len(result.LineItems),
		CalculatedAmount:     result.TotalCOGS,
		CalculationTimestamp: *result.CalculationDate,
	}
	if err := s.orderRepo.SaveCOGS(ctx, serviceOrderID, stamp, history); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "service order", ID: serviceOrderID}
		}
		return nil, fmt.Errorf("failed to store COGS: %w", err)
	}
	return result, nil
}

func (s *cogsService) GetBreakdown(ctx context.Context, serviceOrderID uint) (*models.COGSResult, error) {
	order, err := s.orderRepo.GetByID(ctx, serviceOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Entity: "service order", ID: serviceOrderID}
	}

	if order.COGSBreakdown == nil || strings.TrimSpace(*order.COGSBreakdown) == "" {
		return s.recalculate(ctx, order)
	}

	method, err := ParseCostingMethod(order.COGSCalculationMethod)
	if err != nil {
		method = models.CostingMethod(order.COGSCalculationMethod)
	}

	decoded, err := decodeBreakdown(*order.COGSBreakdown, method)
	if err != nil {
		s.corruptions.Add(1)
		s.logger.WithError(err).WithField("service_order_id", serviceOrderID).
			Warn("stored COGS breakdown is corrupt, recalculating")
		return s.recalculate(ctx, order)
	}
	for _, skipped := range decoded.Skipped {
		s.logger.WithFields(logrus.Fields{
			"service_order_id": serviceOrderID,
			"item_index":       skipped.Index,
			"reason":           skipped.Reason,
		}).Warn("skipping unreadable COGS breakdown item")
	}

	return &models.COGSResult{
		ServiceOrderID:      serviceOrderID,
		Method:              method,
		TotalCOGS:           order.TotalCOGS,
		CalculationDate:     order.COGSCalculationDate,
		LineItems:           decoded.Items,
		SerializedBreakdown: *order.COGSBreakdown,
	}, nil
}

func (s *cogsService) recalculate(ctx context.Context, order *models.ServiceOrder) (*models.COGSResult, error) {
	method, err := ParseCostingMethod(order.COGSCalculationMethod)
	if err != nil {
		return nil, err
	}
	return s.Calculate(ctx, order.ID, method)
}

func (s *cogsService) GetCalculationHistory(ctx context.Context, serviceOrderID uint) ([]models.CalculationHistory, error) {
	return s.financialRepo.GetCalculationHistory(ctx, serviceOrderID)
}

func (s *cogsService) BreakdownCorruptions() int64 {
	return s.corruptions.Load()
}
