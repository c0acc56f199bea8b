package services

import (
	"context"
	"fmt"
	"time"

	"garage_finance/internal/models"
	"garage_finance/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const cogsSourceNote = "COGS summed from the persisted total_cogs of service orders in range"

type ProfitReportService interface {
	// GetIncomeStatement derives the statement for [from, to]. The three
	// aggregations run concurrently and any failure aborts the whole call.
	GetIncomeStatement(ctx context.Context, from, to time.Time, orderStatus string) (*models.IncomeStatement, error)
}

type profitReportService struct {
	orderRepo        repository.ServiceOrderRepository
	financialRepo    repository.FinancialRepository
	defaultLaborRate decimal.Decimal
	logger           logrus.FieldLogger
}

func NewProfitReportService(orderRepo repository.ServiceOrderRepository, financialRepo repository.FinancialRepository, defaultLaborRate decimal.Decimal, logger logrus.FieldLogger) ProfitReportService {
	return &profitReportService{
		orderRepo:        orderRepo,
		financialRepo:    financialRepo,
		defaultLaborRate: defaultLaborRate,
		logger:           logger,
	}
}

func (s *profitReportService) GetIncomeStatement(ctx context.Context, from, to time.Time, orderStatus string) (*models.IncomeStatement, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from date %s is after to date %s", ErrInvalidArgument,
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	var (
		revenue  models.RevenueResult
		cogs     models.COGSSummary
		expenses models.ExpensesResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.revenue(gctx, from, to)
		if err != nil {
			return fmt.Errorf("revenue: %w", err)
		}
		revenue = r
		return nil
	})
	g.Go(func() error {
		total, err := s.orderRepo.SumCOGS(gctx, from, to, orderStatus)
		if err != nil {
			return fmt.Errorf("cogs: %w", err)
		}
		cogs = models.COGSSummary{TotalCOGS: total, Notes: cogsSourceNote}
		return nil
	})
	g.Go(func() error {
		e, err := s.expenses(gctx, from, to)
		if err != nil {
			return fmt.Errorf("expenses: %w", err)
		}
		expenses = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Parts purchase is reported under expenses but not deducted from net profit.
	gross := revenue.TotalRevenue.Sub(cogs.TotalCOGS)
	net := gross.Sub(expenses.LaborCost).Sub(expenses.OperatingCost)

	s.logger.WithFields(logrus.Fields{
		"from":          from.Format("2006-01-02"),
		"to":            to.Format("2006-01-02"),
		"total_revenue": revenue.TotalRevenue.String(),
		"net_profit":    net.String(),
	}).Info("income statement generated")

	return &models.IncomeStatement{
		FromDate: from,
		ToDate:   to,
		Revenue:  revenue,
		COGS:     cogs,
		Expenses: expenses,
		Profit: models.ProfitResult{
			GrossProfit:       gross,
			GrossProfitMargin: margin(gross, revenue.TotalRevenue),
			NetProfit:         net,
			NetProfitMargin:   margin(net, revenue.TotalRevenue),
		},
	}, nil
}

func (s *profitReportService) revenue(ctx context.Context, from, to time.Time) (models.RevenueResult, error) {
	service, err := s.financialRepo.SumTransactions(ctx, repository.TransactionSum{
		Type:       models.TransactionIncome,
		From:       from,
		To:         to,
		Categories: []string{models.CategoryServiceRevenue, models.CategoryInsuranceRevenue},
	})
	if err != nil {
		return models.RevenueResult{}, err
	}
	parts, err := s.financialRepo.SumTransactions(ctx, repository.TransactionSum{
		Type:       models.TransactionIncome,
		From:       from,
		To:         to,
		Categories: []string{models.CategoryPartsSale},
	})
	if err != nil {
		return models.RevenueResult{}, err
	}
	return models.RevenueResult{
		ServiceRevenue: service,
		PartsSale:      parts,
		TotalRevenue:   service.Add(parts),
	}, nil
}

func (s *profitReportService) expenses(ctx context.Context, from, to time.Time) (models.ExpensesResult, error) {
	partsOnly := []string{models.CategoryPartsPurchase}
	partsPurchase, err := s.financialRepo.SumTransactions(ctx, repository.TransactionSum{
		Type:       models.TransactionExpense,
		From:       from,
		To:         to,
		Categories: partsOnly,
	})
	if err != nil {
		return models.ExpensesResult{}, err
	}
	operating, err := s.financialRepo.SumTransactions(ctx, repository.TransactionSum{
		Type:       models.TransactionExpense,
		From:       from,
		To:         to,
		Categories: partsOnly,
		Exclude:    true,
	})
	if err != nil {
		return models.ExpensesResult{}, err
	}
	labor, err := s.laborCost(ctx, from, to)
	if err != nil {
		return models.ExpensesResult{}, err
	}
	return models.ExpensesResult{
		LaborCost:     labor,
		OperatingCost: operating,
		PartsPurchase: partsPurchase,
		TotalExpenses: labor.Add(operating).Add(partsPurchase),
	}, nil
}

// laborCost prefers labor fee lines and falls back to hours times the
// labor rate when no fee was recorded.
func (s *profitReportService) laborCost(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	fees, err := s.orderRepo.SumLaborFees(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if fees.GreaterThan(decimal.Zero) {
		return fees, nil
	}

	hours, err := s.orderRepo.SumActualHours(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if hours.IsZero() {
		return decimal.Zero, nil
	}
	rate, err := s.laborRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return hours.Mul(rate), nil
}

func (s *profitReportService) laborRate(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.financialRepo.GetSettings(ctx, models.SettingDefaultLaborRate)
	if err != nil {
		return decimal.Zero, err
	}
	if setting == nil || !setting.NumericValue.GreaterThan(decimal.Zero) {
		return s.defaultLaborRate, nil
	}
	return setting.NumericValue, nil
}
