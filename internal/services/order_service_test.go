// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewOrderService(suite.db)
}

func (suite *OrderServiceTestSuite) order(seq int, buyer string) *models.Order {
	return &models.Order{
		ProductID:     1,
		ProductName:   "Desk Lamp",
		Price:         49.99,
		Quantity:      1,
		TxHash:        testTxHash(seq),
		BuyerAddress:  buyer,
		SellerAddress: testMerchant,
	}
}

func (suite *OrderServiceTestSuite) TestAppendRejectsDuplicateTxHash() {
	suite.NoError(suite.service.Append(nil, suite.order(1, testBuyer)))

	err := suite.service.Append(nil, suite.order(1, testBuyerTwo))
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	exists, err := suite.service.ExistsByTxHash(testTxHash(1))
	suite.NoError(err)
	suite.True(exists)
}

func (suite *OrderServiceTestSuite) TestGetByTxHash() {
	suite.NoError(suite.service.Append(nil, suite.order(1, testBuyer)))

	order, err := suite.service.GetByTxHash(testTxHash(1))
	suite.NoError(err)
	suite.Equal("Desk Lamp", order.ProductName)

	_, err = suite.service.GetByTxHash(testTxHash(2))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestListByBuyerAndSeller() {
	suite.NoError(suite.service.Append(nil, suite.order(1, testBuyer)))
	suite.NoError(suite.service.Append(nil, suite.order(2, testBuyer)))
	suite.NoError(suite.service.Append(nil, suite.order(3, testBuyerTwo)))

	mine, err := suite.service.ListByBuyer(testBuyer)
	suite.NoError(err)
	suite.Len(mine, 2)

	sold, err := suite.service.ListBySeller(testMerchant)
	suite.NoError(err)
	suite.Len(sold, 3)

	none, err := suite.service.ListBySeller(testBuyer)
	suite.NoError(err)
	suite.Empty(none)
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
