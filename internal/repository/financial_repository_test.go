package repository

import (
	"context"
	"errors"
	"testing"

	"garage_finance/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancial_SumTransactionsCategoryFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFinancialRepository(db)
	from, to := day("2024-01-01"), day("2024-01-31")

	mock.ExpectQuery(sqlLike(
		"SELECT SUM(amount) AS total FROM \"financial_transactions\"",
		"transaction_type = $1 AND status = $2",
		"transaction_date >= $3 AND transaction_date <= $4",
		"category IN ($5,$6)",
		"\"financial_transactions\".\"deleted_at\" IS NULL",
	)).WithArgs(models.TransactionIncome, models.TransactionCompleted, from, to,
		models.CategoryServiceRevenue, models.CategoryInsuranceRevenue).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("5000.00"))

	revenue, err := repo.SumTransactions(context.Background(), TransactionSum{
		Type:       models.TransactionIncome,
		From:       from,
		To:         to,
		Categories: []string{models.CategoryServiceRevenue, models.CategoryInsuranceRevenue},
	})
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(5000)))

	mock.ExpectQuery(sqlLike(
		"SUM(amount)",
		"transaction_type = $1 AND status = $2",
		"category NOT IN ($5)",
	)).WithArgs(models.TransactionExpense, models.TransactionCompleted, from, to, models.CategoryPartsPurchase).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(nil))

	operating, err := repo.SumTransactions(context.Background(), TransactionSum{
		Type:       models.TransactionExpense,
		From:       from,
		To:         to,
		Categories: []string{models.CategoryPartsPurchase},
		Exclude:    true,
	})
	require.NoError(t, err)
	assert.True(t, operating.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinancial_GetSettingsActiveOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFinancialRepository(db)

	mock.ExpectQuery(sqlLike("FROM \"financial_settings\"", "setting_name = $1 AND is_active = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "setting_name", "numeric_value", "is_active"}).
			AddRow(1, models.SettingDefaultLaborRate, "60000.0000", true))

	setting, err := repo.GetSettings(context.Background(), models.SettingDefaultLaborRate)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.True(t, setting.NumericValue.Equal(decimal.NewFromInt(60000)))

	mock.ExpectQuery(sqlLike("FROM \"financial_settings\"")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	setting, err = repo.GetSettings(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, setting)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinancial_CreateTransactionDuplicateNumber(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFinancialRepository(db)

	mock.ExpectQuery(sqlLike("INSERT INTO \"financial_transactions\"", "RETURNING \"id\"")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.CreateTransaction(context.Background(), &models.FinancialTransaction{
		TransactionNumber: "FIN20240315-0001",
		TransactionType:   models.TransactionIncome,
		Category:          models.CategoryPartsSale,
		Amount:            decimal.NewFromInt(10),
		TransactionDate:   day("2024-03-15"),
	})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinancial_CalculationHistoryNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFinancialRepository(db)

	mock.ExpectQuery(sqlLike("FROM \"calculation_histories\"", "service_order_id = $1", "ORDER BY calculation_timestamp DESC")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "service_order_id", "calculation_type"}).
			AddRow(2, 100, "cogs_weighted_average").
			AddRow(1, 100, "cogs_fifo"))

	history, err := repo.GetCalculationHistory(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "cogs_weighted_average", history[0].CalculationType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
