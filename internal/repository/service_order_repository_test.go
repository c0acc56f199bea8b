package repository

import (
	"context"
	"errors"
	"testing"

	"garage_finance/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceOrder_SumCOGS(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceOrderRepository(db)
	from, to := day("2024-01-01"), day("2024-01-31")

	mock.ExpectQuery(sqlLike(
		"SELECT SUM(total_cogs) AS total FROM \"service_orders\"",
		"order_date >= $1 AND order_date <= $2 AND total_cogs > 0",
		"status = $3",
		"\"service_orders\".\"deleted_at\" IS NULL",
	)).WithArgs(from, to, "Completed").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("1250.50"))

	total, err := repo.SumCOGS(context.Background(), from, to, "Completed")
	require.NoError(t, err)
	assert.Equal(t, "1250.5", total.String())

	// Without a status filter only the two date arguments are bound.
	mock.ExpectQuery(sqlLike("SUM(total_cogs)", "total_cogs > 0")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(nil))

	total, err = repo.SumCOGS(context.Background(), from, to, "")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceOrder_SumActualHours(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceOrderRepository(db)
	from, to := day("2024-01-01"), day("2024-01-31")

	mock.ExpectQuery(sqlLike(
		"SUM(total_actual_hours) AS total",
		"order_date >= $1 AND order_date <= $2",
		"total_actual_hours IS NOT NULL AND total_actual_hours > 0",
	)).WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("3.50"))

	hours, err := repo.SumActualHours(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, hours.Equal(decimal.RequireFromString("3.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceOrder_SumLaborFees(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceOrderRepository(db)
	from, to := day("2024-01-01"), day("2024-01-31")

	mock.ExpectQuery(sqlLike(
		"SELECT SUM(f.amount) AS total FROM service_order_fees AS f JOIN service_fee_types AS t ON t.id = f.service_fee_type_id",
		"f.deleted_at IS NULL",
		"LOWER(t.name) LIKE $1",
		"f.service_order_id IN (SELECT id FROM \"service_orders\"",
		"order_date >= $2 AND order_date <= $3",
		"total_actual_hours IS NOT NULL AND total_actual_hours > 0",
	)).WithArgs("%labor%", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(nil))

	fees, err := repo.SumLaborFees(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, fees.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceOrder_SaveCOGSStampsAndRecordsHistory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceOrderRepository(db)
	calculatedAt := day("2024-03-15")
	stamp := COGSStamp{
		TotalCOGS:       decimal.NewFromInt(860),
		Method:          "FIFO",
		CalculationDate: calculatedAt,
		Breakdown:       `{"Method":"FIFO","Items":[]}`,
	}

	mock.ExpectBegin()
	mock.ExpectExec(sqlLike(
		"UPDATE \"service_orders\" SET",
		"\"cogs_breakdown\"=",
		"\"total_cogs\"=",
		"WHERE id = ",
	)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlLike("INSERT INTO \"calculation_histories\"", "RETURNING \"id\"")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	history := &models.CalculationHistory{
		ServiceOrderID:       100,
		CalculationType:      "cogs_fifo",
		ItemCount:            1,
		CalculatedAmount:     stamp.TotalCOGS,
		CalculationTimestamp: calculatedAt,
	}
	require.NoError(t, repo.SaveCOGS(context.Background(), 100, stamp, history))
	assert.Equal(t, uint(9), history.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceOrder_SaveCOGSMissingOrderRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(sqlLike("UPDATE \"service_orders\" SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SaveCOGS(context.Background(), 404, COGSStamp{Method: "FIFO"}, &models.CalculationHistory{ServiceOrderID: 404})
	assert.True(t, errors.Is(err, ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceOrder_GetByIDMissingIsNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceOrderRepository(db)

	mock.ExpectQuery(sqlLike("FROM \"service_orders\"", "\"service_orders\".\"id\" = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	order, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.NoError(t, mock.ExpectationsWereMet())
}
