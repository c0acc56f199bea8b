package repository

import (
	"context"
	"errors"
	"testing"

	"garage_finance/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regeneration() WarrantyGeneration {
	start, end := day("2024-08-31"), day("2025-02-28")
	partID := uint(501)
	return WarrantyGeneration{
		Warranty: &models.Warranty{
			ID:                5,
			WarrantyCode:      "WAR20240315-000100-02",
			ServiceOrderID:    100,
			CustomerID:        10,
			VehicleID:         20,
			WarrantyStartDate: start,
			WarrantyEndDate:   end,
			Status:            string(models.WarrantyActive),
		},
		Items: []models.WarrantyItem{{
			ServiceOrderPartID: &partID,
			PartName:           "Brake Pad",
			WarrantyMonths:     6,
			WarrantyStartDate:  start,
			WarrantyEndDate:    end,
			Status:             string(models.WarrantyActive),
		}},
		PartStamps:     []PartWarrantyStamp{{ServiceOrderPartID: partID, WarrantyUntil: end}},
		ServiceOrderID: 100,
	}
}

func TestWarranty_SaveGenerationReplacesItemsInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWarrantyRepository(db)
	gen := regeneration()

	mock.ExpectBegin()
	mock.ExpectExec(sqlLike("UPDATE \"warranties\" SET", "\"warranty_code\"=", "\"id\" = ")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike("UPDATE \"warranty_items\" SET \"deleted_at\"=", "warranty_id = ")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(sqlLike("INSERT INTO \"warranty_items\"", "RETURNING \"id\"")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectExec(sqlLike("UPDATE \"service_order_parts\" SET", "\"is_warranty\"=", "\"warranty_until\"=", "WHERE id = ")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike("UPDATE \"service_orders\" SET", "\"warranty_code\"=", "\"warranty_expiry_date\"=", "WHERE id = ")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveGeneration(context.Background(), gen))
	assert.Equal(t, uint(5), gen.Items[0].WarrantyID)
	assert.Equal(t, uint(31), gen.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarranty_SaveGenerationDuplicateCodeRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWarrantyRepository(db)
	gen := regeneration()
	gen.Warranty.ID = 0

	mock.ExpectBegin()
	mock.ExpectQuery(sqlLike("INSERT INTO \"warranties\"", "RETURNING \"id\"")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.SaveGeneration(context.Background(), gen)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWarranty_SearchKeywordJoinsCustomerAndVehicle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWarrantyRepository(db)
	customerID := uint(10)

	mock.ExpectQuery(sqlLike(
		"FROM \"warranties\" LEFT JOIN customers ON customers.id = warranties.customer_id LEFT JOIN vehicles ON vehicles.id = warranties.vehicle_id",
		"warranties.customer_id = $1",
		"warranties.warranty_code ILIKE $2 OR customers.name ILIKE $3 OR vehicles.license_plate ILIKE $4",
		"ORDER BY warranties.warranty_start_date DESC",
	)).WithArgs(customerID, "%brake%", "%brake%", "%brake%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	found, err := repo.Search(context.Background(), models.WarrantySearchFilter{CustomerID: &customerID, Keyword: "brake"})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
