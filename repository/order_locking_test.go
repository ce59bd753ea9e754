package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"github.com/stretchr/testify/assert"
)

// lockedOrderSelect matches the order load of a mutating transaction, which
// must hold the row lock until commit.
var lockedOrderSelect = regexp.QuoteMeta(`SELECT * FROM "orders" WHERE`) + `.*FOR UPDATE`

func TestOrderRepository_UpdateLocksOrderRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockedOrderSelect).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	status := models.StatusReady
	_, err := repo.Update(context.Background(), 7, &models.OrderPatch{Status: &status})
	assert.True(t, errors.Is(err, repository.ErrOrderNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ForceDeleteLocksOrderRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockedOrderSelect).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.ForceDelete(context.Background(), 7)
	assert.True(t, errors.Is(err, repository.ErrOrderNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_RestoreLocksOrderRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockedOrderSelect).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Restore(context.Background(), 7)
	assert.True(t, errors.Is(err, repository.ErrOrderNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
