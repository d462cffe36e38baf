// internal/handlers/review_test.go
package handlers

import (
	"bytes"
	"encoding/json"
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

type ReviewHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *ReviewHandlerTestSuite) SetupTest() {
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
		&models.Review{},
		&models.MerchantReply{},
	))
	suite.db = db

	cfg := &config.Config{}
	inventory := services.NewInventoryService(db)
	transactions := services.NewTransactionService(db)
	reviews := services.NewReviewService(db)
	catalog := services.NewCatalogService(cfg, inventory, transactions, reviews)

	handler := NewReviewHandler(reviews, catalog)

	suite.router = gin.New()
	suite.router.Use(func(c *gin.Context) {
		c.Set("address", testMerchant)
		c.Next()
	})
	suite.router.POST("/v1/reviews/:id/reply", handler.ReplyToReview)
}

func (suite *ReviewHandlerTestSuite) postReply(path, reply string) *httptest.ResponseRecorder {
	jsonData, _ := json.Marshal(map[string]string{"reply": reply})
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ReviewHandlerTestSuite) TestReplyToReview() {
	product := &models.Product{Name: "Desk Lamp", Price: 49.99, Quantity: 3, OwnerAddress: testMerchant}
	suite.Require().NoError(suite.db.Create(product).Error)
	review := &models.Review{ProductID: product.ID, ProductName: product.Name, ReviewerAddress: testBuyer, Content: "Great lamp", TxHash: "0xabc"}
	suite.Require().NoError(suite.db.Create(review).Error)

	w := suite.postReply("/v1/reviews/1/reply", "Thanks")
	assert.Equal(suite.T(), http.StatusCreated, w.Code)
}

func (suite *ReviewHandlerTestSuite) TestReplyToMissingReview() {
	w := suite.postReply("/v1/reviews/42/reply", "Thanks")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	// The message comes from the review.not_found translation key; with no
	// locales loaded the key itself is returned verbatim.
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "review.not_found", errObj["message"])
}

func TestReviewHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerTestSuite))
}
