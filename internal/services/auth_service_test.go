// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/models"
	"github.com/chainmarket/backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	suite.service = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) register(address, username string) (*AuthResponse, error) {
	return suite.service.Register(&RegisterRequest{
		Address:  address,
		Username: username,
		Password: "TestPass123!",
		UserType: models.UserTypeCustomer,
	})
}

func (suite *AuthServiceTestSuite) TestRegisterAndLogin() {
	resp, err := suite.register(testBuyer, "alice")
	suite.NoError(err)
	suite.NotEmpty(resp.AccessToken)
	suite.Equal("Bearer", resp.TokenType)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	suite.NoError(err)
	suite.Equal(testBuyer, claims.Address)

	login, err := suite.service.Login(&LoginRequest{Address: testBuyer, Password: "TestPass123!"})
	suite.NoError(err)
	suite.Equal("alice", login.User.Username)

	_, err = suite.service.Login(&LoginRequest{Address: testBuyer, Password: "WrongPass123!"})
	suite.Error(err)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicate() {
	_, err := suite.register(testBuyer, "alice")
	suite.Require().NoError(err)

	_, err = suite.register(testBuyer, "bob")
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = suite.register(testBuyerTwo, "alice")
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AuthServiceTestSuite) TestPasswordIsHashed() {
	_, err := suite.register(testBuyer, "alice")
	suite.Require().NoError(err)

	var user models.User
	suite.NoError(suite.db.Where("address = ?", testBuyer).First(&user).Error)
	suite.NotEqual("TestPass123!", user.PasswordHash)
	suite.NoError(user.CheckPassword("TestPass123!"))
	suite.Error(user.CheckPassword("WrongPass123!"))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
