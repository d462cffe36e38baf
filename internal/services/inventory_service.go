// internal/services/inventory_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/models"
	"github.com/chainmarket/backend/internal/utils"
)

// InventoryService is the authoritative off-chain mirror of sellable
// quantity. The only quantity mutation it offers is a single conditional
// decrement; there is no read-then-write path.
type InventoryService struct {
	db *gorm.DB
}

type CreateListingRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	Category     string   `json:"category" validate:"max=100"`
	Tags         []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50"`
	Quantity     int      `json:"quantity" validate:"min=0"`
	ImageHash    string   `json:"image_hash" validate:"omitempty,len=64,hexadecimal"`
	OwnerAddress string   `json:"owner_address" validate:"required,eth_address"`
}

// ListingFilter predicates are conjunctive. Search matches name OR
// description by case-insensitive substring; Tags requires every named tag.
type ListingFilter struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Owner    string
	Category string
	Tags     []string
	InStock  bool
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

func (s *InventoryService) CreateListing(req *CreateListingRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product := &models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		Tags:         req.Tags,
		Quantity:     req.Quantity,
		ImageHash:    req.ImageHash,
		OwnerAddress: req.OwnerAddress,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Unavailable("create listing", err)
	}

	return product, nil
}

func (s *InventoryService) GetListing(id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("product %d", id)
		}
		return nil, apperrors.Unavailable("get listing", err)
	}
	return &product, nil
}

// DecrementQuantity applies a single conditional update gated on
// quantity >= qty, so concurrent purchases of the same product serialize at
// the store and can never drive the counter negative. A zero-row result is
// disambiguated into NotFound versus insufficient inventory.
func (s *InventoryService) DecrementQuantity(db *gorm.DB, productID uint, qty int) (*models.Product, error) {
	if db == nil {
		db = s.db
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return nil, apperrors.Unavailable("decrement quantity", res.Error)
	}

	if res.RowsAffected == 0 {
		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFoundf("product %d", productID)
			}
			return nil, apperrors.Unavailable("decrement quantity", err)
		}
		return nil, fmt.Errorf("product %d has %d left, need %d: %w",
			productID, product.Quantity, qty, apperrors.ErrInsufficientInventory)
	}

	var updated models.Product
	if err := db.First(&updated, productID).Error; err != nil {
		return nil, apperrors.Unavailable("decrement quantity", err)
	}
	return &updated, nil
}

// Delist removes the product row. Transaction and order rows keep their
// productId references; they snapshot what they need at write time.
func (s *InventoryService) Delist(productID uint, ownerAddress string) error {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("product %d", productID)
		}
		return apperrors.Unavailable("delist", err)
	}

	if product.OwnerAddress != ownerAddress {
		return fmt.Errorf("product %d is not owned by %s: %w", productID, ownerAddress, apperrors.ErrUnauthorized)
	}

	if err := s.db.Delete(&models.Product{}, productID).Error; err != nil {
		return apperrors.Unavailable("delist", err)
	}
	return nil
}

func (s *InventoryService) Query(filter ListingFilter) ([]models.Product, error) {
	var products []models.Product
	if err := s.filterQuery(filter).Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, apperrors.Unavailable("query listings", err)
	}
	return products, nil
}

// QueryPage is Query with offset pagination for the public listing endpoint.
func (s *InventoryService) QueryPage(filter ListingFilter, params utils.PaginationParams) ([]models.Product, int64, error) {
	var total int64
	if err := s.filterQuery(filter).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Unavailable("query listings", err)
	}

	var products []models.Product
	if err := utils.ApplyPagination(s.filterQuery(filter), params).
		Order("created_at DESC, id DESC").
		Find(&products).Error; err != nil {
		return nil, 0, apperrors.Unavailable("query listings", err)
	}
	return products, total, nil
}

func (s *InventoryService) filterQuery(filter ListingFilter) *gorm.DB {
	query := s.db.Model(&models.Product{})

	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}

	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	if filter.Owner != "" {
		query = query.Where("owner_address = ?", filter.Owner)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	// Tags are JSON-encoded, so an exact element match is a substring match
	// on the quoted tag.
	for _, tag := range filter.Tags {
		query = query.Where("tags LIKE ?", fmt.Sprintf(`%%"%s"%%`, tag))
	}

	if filter.InStock {
		query = query.Where("quantity > 0")
	}

	return query
}
