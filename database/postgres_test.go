package database_test

import (
	"testing"

	"github.com/joseguilhermeromano/Pastel360/database"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestConfig_DSN(t *testing.T) {
	cfg := database.Config{
		Host: "db", Port: "5432", User: "pastel", Password: "secret",
		DBName: "pastel360", SSLMode: "disable", TimeZone: "America/Sao_Paulo",
	}
	assert.Equal(t,
		"host=db user=pastel password=secret dbname=pastel360 port=5432 sslmode=disable TimeZone=America/Sao_Paulo",
		cfg.DSN())
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate?mode=memory&cache=shared"), database.GormConfig(gormlogger.Silent))
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.Migrate(db))
	for _, m := range []any{&models.Customer{}, &models.Product{}, &models.Order{}, &models.OrderItem{}, &models.NotificationLog{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasColumn(&models.Order{}, "total_amount"))
	assert.True(t, db.Migrator().HasColumn(&models.OrderItem{}, "deleted_at"))
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, database.Close(nil))
}
