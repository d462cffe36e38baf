// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chainmarket/backend/internal/models"
)

// setupTestDB opens an isolated in-memory sqlite database with the full
// schema. A single connection serializes access, which keeps concurrent
// tests free of sqlite lock errors.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.TransactionRecord{},
		&models.PurchaseSaga{},
		&models.Order{},
		&models.Review{},
		&models.MerchantReply{},
		&models.Favorite{},
	))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, quantity int, owner string) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:         name,
		Description:  name + " description",
		Price:        price,
		Category:     "general",
		Quantity:     quantity,
		OwnerAddress: owner,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func testTxHash(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

func testBlockHash(n int) string {
	return fmt.Sprintf("0x%064x", n+1000000)
}

const (
	testBuyer    = "0x1111111111111111111111111111111111111111"
	testBuyerTwo = "0x2222222222222222222222222222222222222222"
	testMerchant = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)
