// internal/services/favorite_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/models"
)

type FavoriteServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *FavoriteService
}

func (suite *FavoriteServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	suite.service = NewFavoriteService(suite.db)
}

func (suite *FavoriteServiceTestSuite) TestAddIsIdempotent() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 3, testMerchant)

	suite.NoError(suite.service.Add(testBuyer, product.ID))
	suite.NoError(suite.service.Add(testBuyer, product.ID))

	var count int64
	suite.db.Model(&models.Favorite{}).Count(&count)
	suite.EqualValues(1, count)

	fav, err := suite.service.IsFavorite(testBuyer, product.ID)
	suite.NoError(err)
	suite.True(fav)
}

func (suite *FavoriteServiceTestSuite) TestAddUnknownProduct() {
	suite.ErrorIs(suite.service.Add(testBuyer, 9999), apperrors.ErrNotFound)
}

func (suite *FavoriteServiceTestSuite) TestRemoveAbsentIsNoop() {
	product := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 3, testMerchant)

	suite.NoError(suite.service.Remove(testBuyer, product.ID))

	suite.NoError(suite.service.Add(testBuyer, product.ID))
	suite.NoError(suite.service.Remove(testBuyer, product.ID))
	suite.NoError(suite.service.Remove(testBuyer, product.ID))

	fav, err := suite.service.IsFavorite(testBuyer, product.ID)
	suite.NoError(err)
	suite.False(fav)
}

func (suite *FavoriteServiceTestSuite) TestListDeduplicatesAndSkipsDelisted() {
	lamp := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 3, testMerchant)
	chair := seedProduct(suite.T(), suite.db, "Office Chair", 199.00, 2, testMerchant)

	suite.NoError(suite.service.Add(testBuyer, lamp.ID))
	suite.NoError(suite.service.Add(testBuyer, chair.ID))

	// Historical duplicate rows still read back as a set.
	suite.NoError(suite.db.Create(&models.Favorite{UserAddress: testBuyer, ProductID: lamp.ID}).Error)

	products, err := suite.service.List(testBuyer)
	suite.NoError(err)
	suite.Len(products, 2)

	// Delisted products drop out of the listing.
	suite.NoError(suite.db.Delete(&models.Product{}, chair.ID).Error)
	products, err = suite.service.List(testBuyer)
	suite.NoError(err)
	suite.Require().Len(products, 1)
	suite.Equal("Desk Lamp", products[0].Name)
}

func (suite *FavoriteServiceTestSuite) TestListIsPerUser() {
	lamp := seedProduct(suite.T(), suite.db, "Desk Lamp", 49.99, 3, testMerchant)
	suite.NoError(suite.service.Add(testBuyer, lamp.ID))

	products, err := suite.service.List(testBuyerTwo)
	suite.NoError(err)
	suite.Empty(products)
}

func TestFavoriteServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FavoriteServiceTestSuite))
}
