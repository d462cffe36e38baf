// internal/services/order_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/models"
)

// OrderService keeps the buyer- and seller-facing views of completed
// purchases. The seller address is denormalized onto each order at write
// time, so seller reads never join through products and survive delists.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

func (s *OrderService) Append(db *gorm.DB, order *models.Order) error {
	if db == nil {
		db = s.db
	}

	if err := db.Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Duplicatef("order for transaction %s", order.TxHash)
		}
		return apperrors.Unavailable("append order", err)
	}
	return nil
}

func (s *OrderService) GetByTxHash(txHash string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Where("tx_hash = ?", txHash).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("order for transaction %s", txHash)
		}
		return nil, apperrors.Unavailable("get order", err)
	}
	return &order, nil
}

func (s *OrderService) ExistsByTxHash(txHash string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Order{}).Where("tx_hash = ?", txHash).Count(&count).Error; err != nil {
		return false, apperrors.Unavailable("check order", err)
	}
	return count > 0, nil
}

func (s *OrderService) ListByBuyer(buyerAddress string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("buyer_address = ?", buyerAddress).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, apperrors.Unavailable("list orders by buyer", err)
	}
	return orders, nil
}

func (s *OrderService) ListBySeller(sellerAddress string) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Where("seller_address = ?", sellerAddress).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, apperrors.Unavailable("list orders by seller", err)
	}
	return orders, nil
}
