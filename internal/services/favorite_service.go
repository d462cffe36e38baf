// internal/services/favorite_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/models"
)

// FavoriteService implements a per-user favorite set with idempotent adds
// and removes. Surviving rows behave as a set even if historical duplicates
// exist in the table.
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Add marks a product as a favorite. Adding an existing favorite is a no-op
// rather than an error. The product must currently be listed.
func (s *FavoriteService) Add(userAddress string, productID uint) error {
	var product models.Product
	if err := s.db.Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("product %d", productID)
		}
		return apperrors.Unavailable("add favorite", err)
	}

	var count int64
	if err := s.db.Model(&models.Favorite{}).
		Where("user_address = ? AND product_id = ?", userAddress, productID).
		Count(&count).Error; err != nil {
		return apperrors.Unavailable("add favorite", err)
	}
	if count > 0 {
		return nil
	}

	favorite := &models.Favorite{UserAddress: userAddress, ProductID: productID}
	if err := s.db.Create(favorite).Error; err != nil {
		return apperrors.Unavailable("add favorite", err)
	}
	return nil
}

// Remove unmarks a favorite. Removing an absent favorite is a no-op.
func (s *FavoriteService) Remove(userAddress string, productID uint) error {
	if err := s.db.Where("user_address = ? AND product_id = ?", userAddress, productID).
		Delete(&models.Favorite{}).Error; err != nil {
		return apperrors.Unavailable("remove favorite", err)
	}
	return nil
}

// IsFavorite reports whether the user has favorited the product.
func (s *FavoriteService) IsFavorite(userAddress string, productID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Favorite{}).
		Where("user_address = ? AND product_id = ?", userAddress, productID).
		Count(&count).Error; err != nil {
		return false, apperrors.Unavailable("check favorite", err)
	}
	return count > 0, nil
}

// List returns the user's favorited products, deduplicated by product and
// newest favorite first. Products delisted since being favorited are
// omitted.
func (s *FavoriteService) List(userAddress string) ([]models.Product, error) {
	var favorites []models.Favorite
	if err := s.db.Where("user_address = ?", userAddress).
		Order("created_at DESC, id DESC").
		Find(&favorites).Error; err != nil {
		return nil, apperrors.Unavailable("list favorites", err)
	}

	products := make([]models.Product, 0, len(favorites))
	seen := make(map[uint]bool, len(favorites))
	for _, f := range favorites {
		if seen[f.ProductID] {
			continue
		}
		seen[f.ProductID] = true

		var product models.Product
		if err := s.db.Where("id = ?", f.ProductID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, apperrors.Unavailable("list favorites", err)
		}
		products = append(products, product)
	}
	return products, nil
}
