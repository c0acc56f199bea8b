package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garage_finance/internal/models"
	"garage_finance/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type FinancialTransactionService interface {
	// Record validates and inserts a transaction under a generated number.
	Record(ctx context.Context, tx *models.FinancialTransaction) error
}

type financialTransactionService struct {
	financialRepo repository.FinancialRepository
	codes         *CodeGenerator
	logger        logrus.FieldLogger
	now           func() time.Time
}

func NewFinancialTransactionService(financialRepo repository.FinancialRepository, codes *CodeGenerator, logger logrus.FieldLogger) FinancialTransactionService {
	return &financialTransactionService{
		financialRepo: financialRepo,
		codes:         codes,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *financialTransactionService) Record(ctx context.Context, tx *models.FinancialTransaction) error {
	switch tx.TransactionType {
	case models.TransactionIncome, models.TransactionExpense:
	default:
		return fmt.Errorf("%w: transaction type must be %s or %s", ErrInvalidArgument, models.TransactionIncome, models.TransactionExpense)
	}
	if !tx.Amount.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	tx.Category = strings.TrimSpace(tx.Category)
	if tx.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidArgument)
	}
	switch tx.Status {
	case "":
		tx.Status = models.TransactionCompleted
	case models.TransactionPending, models.TransactionCompleted, models.TransactionCancelled:
	default:
		return fmt.Errorf("%w: unknown transaction status %q", ErrInvalidArgument, tx.Status)
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = s.now()
	}

	err := s.codes.InsertWithCode(ctx, s.codes.TransactionNumber, func(code string) error {
		tx.ID = 0
		tx.TransactionNumber = code
		return s.financialRepo.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"transaction_number": tx.TransactionNumber,
		"type":               tx.TransactionType,
		"category":           tx.Category,
		"amount":             tx.Amount.String(),
	}).Info("financial transaction recorded")
	return nil
}
