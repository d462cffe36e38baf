// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/models"
	"github.com/chainmarket/backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RegisterRequest struct {
	Address  string          `json:"address" validate:"required,eth_address"`
	Username string          `json:"username" validate:"required,username"`
	Password string          `json:"password" validate:"required,strong_password"`
	Phone    string          `json:"phone" validate:"omitempty,max=20"`
	Email    string          `json:"email" validate:"omitempty,email"`
	UserType models.UserType `json:"user_type" validate:"required"`
}

type LoginRequest struct {
	Address  string `json:"address" validate:"required,eth_address"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

// Register creates an account bound to a wallet address. The address is the
// primary identity; username is a display handle, unique per deployment.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.UserType != models.UserTypeMerchant && req.UserType != models.UserTypeCustomer {
		return nil, errors.New("invalid user type")
	}

	var existing models.User
	if err := s.db.Where("address = ? OR username = ?", req.Address, req.Username).First(&existing).Error; err == nil {
		if existing.Address == req.Address {
			return nil, apperrors.Duplicatef("address %s already registered", req.Address)
		}
		return nil, apperrors.Duplicatef("username %s already taken", req.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unavailable("register", err)
	}

	user := &models.User{
		Address:  req.Address,
		Username: req.Username,
		Phone:    req.Phone,
		Email:    req.Email,
		UserType: req.UserType,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Duplicatef("address %s already registered", req.Address)
		}
		return nil, apperrors.Unavailable("register", err)
	}

	return s.issueToken(user)
}

// Login authenticates by address and password.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("address = ?", req.Address).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, apperrors.Unavailable("login", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return s.issueToken(&user)
}

// GetProfile returns the account for an address.
func (s *AuthService) GetProfile(address string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("address = ?", address).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user %s", address)
		}
		return nil, apperrors.Unavailable("get profile", err)
	}
	return &user, nil
}

func (s *AuthService) issueToken(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(user.Address, user.Username, string(user.UserType), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
