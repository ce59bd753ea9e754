package repository_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/joseguilhermeromano/Pastel360/database"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var nonWord = regexp.MustCompile(`\W+`)

// newSQLiteDB opens a private in-memory database with the schema migrated.
// A single connection keeps transactions and reads on the same database.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", nonWord.ReplaceAllString(strings.ToLower(t.Name()), "_"))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return gormDB, mock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

type fixture struct {
	customer models.Customer
	carne    models.Product
	queijo   models.Product
	frango   models.Product
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		customer: models.Customer{Name: "Ana Souza", Mail: "ana@example.com", Phone: "11999990000"},
		carne:    models.Product{Name: "Pastel de carne", Description: "Carne moída", Price: dec("8.50"), SKU: "pastel-de-carne-001", Enable: true},
		queijo:   models.Product{Name: "Pastel de queijo", Description: "Mussarela", Price: dec("7.50"), SKU: "pastel-de-queijo-001", Enable: true},
		frango:   models.Product{Name: "Pastel de frango", Description: "Frango com catupiry", Price: dec("9.00"), SKU: "pastel-de-frango-001", Enable: true},
	}
	require.NoError(t, db.Create(&f.customer).Error)
	require.NoError(t, db.Create(&f.carne).Error)
	require.NoError(t, db.Create(&f.queijo).Error)
	require.NoError(t, db.Create(&f.frango).Error)
	return f
}
