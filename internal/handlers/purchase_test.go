// internal/handlers/purchase_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/models"
	"github.com/chainmarket/backend/internal/services"
)

const (
	testBuyer    = "0x1111111111111111111111111111111111111111"
	testMerchant = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

type PurchaseHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *PurchaseHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(db.AutoMigrate(
		&models.Product{},
		&models.TransactionRecord{},
		&models.PurchaseSaga{},
		&models.Order{},
		&models.Review{},
		&models.MerchantReply{},
	))
	suite.db = db

	cfg := &config.Config{}
	inventory := services.NewInventoryService(db)
	transactions := services.NewTransactionService(db)
	orders := services.NewOrderService(db)
	reviews := services.NewReviewService(db)
	ledger := services.NewLedgerService(cfg)
	catalog := services.NewCatalogService(cfg, inventory, transactions, reviews)
	reconcile := services.NewReconcileService(db, inventory, transactions, orders, ledger)

	handler := NewPurchaseHandler(reconcile, catalog)

	suite.router = gin.New()
	// Stand-in for the JWT middleware.
	suite.router.Use(func(c *gin.Context) {
		c.Set("address", testBuyer)
		c.Next()
	})
	suite.router.POST("/v1/purchases", handler.RecordPurchase)
	suite.router.GET("/v1/purchases/:txHash", handler.GetPurchaseStatus)
}

func (suite *PurchaseHandlerTestSuite) seedProduct(quantity int) *models.Product {
	product := &models.Product{
		Name:         "Desk Lamp",
		Price:        49.99,
		Quantity:     quantity,
		OwnerAddress: testMerchant,
	}
	suite.Require().NoError(suite.db.Create(product).Error)
	return product
}

func (suite *PurchaseHandlerTestSuite) postPurchase(body map[string]interface{}) *httptest.ResponseRecorder {
	jsonData, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/v1/purchases", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func purchaseBody(productID uint, qty, seq int) map[string]interface{} {
	return map[string]interface{}{
		"product_id":   productID,
		"quantity":     qty,
		"tx_hash":      fmt.Sprintf("0x%064x", seq),
		"block_hash":   fmt.Sprintf("0x%064x", seq+1000000),
		"block_number": seq + 1,
	}
}

func (suite *PurchaseHandlerTestSuite) TestRecordPurchase() {
	product := suite.seedProduct(3)

	w := suite.postPurchase(purchaseBody(product.ID, 2, 1))
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response["success"].(bool))

	data := response["data"].(map[string]interface{})
	purchase := data["purchase"].(map[string]interface{})
	assert.False(suite.T(), purchase["replayed"].(bool))
}

func (suite *PurchaseHandlerTestSuite) TestRecordPurchaseReplay() {
	product := suite.seedProduct(3)
	body := purchaseBody(product.ID, 1, 1)

	first := suite.postPurchase(body)
	suite.Require().Equal(http.StatusCreated, first.Code)

	second := suite.postPurchase(body)
	suite.Require().Equal(http.StatusCreated, second.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(second.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	purchase := data["purchase"].(map[string]interface{})
	assert.True(suite.T(), purchase["replayed"].(bool))

	var reloaded models.Product
	suite.Require().NoError(suite.db.First(&reloaded, product.ID).Error)
	assert.Equal(suite.T(), 2, reloaded.Quantity)
}

func (suite *PurchaseHandlerTestSuite) TestRecordPurchaseInsufficient() {
	product := suite.seedProduct(1)

	w := suite.postPurchase(purchaseBody(product.ID, 5, 1))
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(suite.T(), response["success"].(bool))

	errObj := response["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	assert.Equal(suite.T(), "inventory", details["step"])
}

func (suite *PurchaseHandlerTestSuite) TestRecordPurchaseMalformedHash() {
	product := suite.seedProduct(3)

	body := purchaseBody(product.ID, 1, 1)
	body["tx_hash"] = "0x123"
	w := suite.postPurchase(body)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *PurchaseHandlerTestSuite) TestGetPurchaseStatus() {
	product := suite.seedProduct(3)
	body := purchaseBody(product.ID, 1, 7)
	suite.Require().Equal(http.StatusCreated, suite.postPurchase(body).Code)

	req, _ := http.NewRequest("GET", "/v1/purchases/"+body["tx_hash"].(string), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "completed", data["step"])

	req, _ = http.NewRequest("GET", "/v1/purchases/"+fmt.Sprintf("0x%064x", 999), nil)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	// The message comes from the purchase.not_found translation key; with no
	// locales loaded the key itself is returned verbatim.
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "purchase.not_found", errObj["message"])
}

func TestPurchaseHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseHandlerTestSuite))
}
