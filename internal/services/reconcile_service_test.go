// internal/services/reconcile_service_test.go
package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/models"
)

type ReconcileServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ReconcileService
	orders  *OrderService
}

func (suite *ReconcileServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())

	inventory := NewInventoryService(suite.db)
	transactions := NewTransactionService(suite.db)
	suite.orders = NewOrderService(suite.db)
	ledger := NewLedgerService(&config.Config{})

	suite.service = NewReconcileService(suite.db, inventory, transactions, suite.orders, ledger)
}

func (suite *ReconcileServiceTestSuite) request(productID uint, qty, seq int) *RecordPurchaseRequest {
	return &RecordPurchaseRequest{
		ProductID:    productID,
		Quantity:     qty,
		TxHash:       testTxHash(seq),
		BlockHash:    testBlockHash(seq),
		BlockNumber:  uint64(seq + 1),
		BuyerAddress: testBuyer,
	}
}

func (suite *ReconcileServiceTestSuite) TestRecordPurchaseHappyPath() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 3, testMerchant)

	result, err := suite.service.RecordPurchase(suite.request(product.ID, 2, 1))
	suite.NoError(err)
	suite.False(result.Replayed)

	suite.Equal(1, result.Product.Quantity)
	suite.Equal(testTxHash(1), result.Transaction.TxHash)
	suite.Equal(2, result.Transaction.Quantity)
	suite.Equal("Desk Lamp", result.Order.ProductName)
	suite.Equal(testMerchant, result.Order.SellerAddress)
	suite.Equal(testBuyer, result.Order.BuyerAddress)

	var saga models.PurchaseSaga
	suite.NoError(suite.db.Where("tx_hash = ?", testTxHash(1)).First(&saga).Error)
	suite.Equal(models.SagaStepCompleted, saga.Step)
}

func (suite *ReconcileServiceTestSuite) TestRecordPurchaseIdempotentReplay() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 5, testMerchant)
	req := suite.request(product.ID, 2, 1)

	first, err := suite.service.RecordPurchase(req)
	suite.NoError(err)
	suite.False(first.Replayed)

	second, err := suite.service.RecordPurchase(req)
	suite.NoError(err)
	suite.True(second.Replayed)

	// Inventory decremented exactly once.
	suite.Equal(3, second.Product.Quantity)

	var orderCount, recordCount int64
	suite.db.Model(&models.Order{}).Count(&orderCount)
	suite.db.Model(&models.TransactionRecord{}).Count(&recordCount)
	suite.EqualValues(1, orderCount)
	suite.EqualValues(1, recordCount)
}

func (suite *ReconcileServiceTestSuite) TestInsufficientInventoryIsPartial() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 1, testMerchant)

	_, err := suite.service.RecordPurchase(suite.request(product.ID, 2, 1))
	suite.Error(err)

	pre, ok := apperrors.AsPartialReconciliation(err)
	suite.True(ok)
	suite.Equal(testTxHash(1), pre.TxHash)
	suite.Equal(StepInventory, pre.Step)
	suite.ErrorIs(err, apperrors.ErrInsufficientInventory)

	// The quantity must not have gone negative or moved at all.
	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, product.ID).Error)
	suite.Equal(1, reloaded.Quantity)

	// The saga records the failure for operator inspection.
	var saga models.PurchaseSaga
	suite.NoError(suite.db.Where("tx_hash = ?", testTxHash(1)).First(&saga).Error)
	suite.NotEmpty(saga.LastError)
}

func (suite *ReconcileServiceTestSuite) TestUnknownProduct() {
	_, err := suite.service.RecordPurchase(suite.request(9999, 1, 1))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconcileServiceTestSuite) TestInvalidReceiptRejected() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 3, testMerchant)

	req := suite.request(product.ID, 1, 1)
	req.BlockNumber = 0
	_, err := suite.service.RecordPurchase(req)
	suite.ErrorIs(err, apperrors.ErrInvalidReceipt)
}

func (suite *ReconcileServiceTestSuite) TestResumeSkipsAppliedInventory() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 5, testMerchant)
	req := suite.request(product.ID, 2, 1)

	// Simulate a crash after step one: saga marked applied, decrement done,
	// but no transaction record or order yet.
	saga := &models.PurchaseSaga{
		TxHash:       req.TxHash,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		BuyerAddress: req.BuyerAddress,
		Step:         models.SagaStepInventoryApplied,
	}
	suite.NoError(suite.db.Create(saga).Error)
	suite.NoError(suite.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("quantity", gorm.Expr("quantity - ?", req.Quantity)).Error)

	result, err := suite.service.RecordPurchase(req)
	suite.NoError(err)
	suite.False(result.Replayed)

	// The decrement was not applied a second time.
	suite.Equal(3, result.Product.Quantity)
	suite.NotNil(result.Transaction)
	suite.NotNil(result.Order)

	var reloaded models.PurchaseSaga
	suite.NoError(suite.db.Where("tx_hash = ?", req.TxHash).First(&reloaded).Error)
	suite.Equal(models.SagaStepCompleted, reloaded.Step)
}

func (suite *ReconcileServiceTestSuite) TestConcurrentDistinctPurchases() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 10, testMerchant)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.service.RecordPurchase(suite.request(product.ID, 2, i+1))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		suite.NoError(err)
	}

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, product.ID).Error)
	suite.Equal(0, reloaded.Quantity)

	var orderCount int64
	suite.db.Model(&models.Order{}).Count(&orderCount)
	suite.EqualValues(5, orderCount)
}

func (suite *ReconcileServiceTestSuite) TestStatus() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 3, testMerchant)

	_, err := suite.service.RecordPurchase(suite.request(product.ID, 1, 1))
	suite.NoError(err)

	saga, record, order, err := suite.service.Status(testTxHash(1))
	suite.NoError(err)
	suite.Equal(models.SagaStepCompleted, saga.Step)
	suite.NotNil(record)
	suite.NotNil(order)

	_, _, _, err = suite.service.Status(testTxHash(42))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestReconcileServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcileServiceTestSuite))
}
