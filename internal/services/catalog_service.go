// internal/services/catalog_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/metrics"
	"github.com/chainmarket/backend/internal/models"
)

// CatalogService composes the product detail view: the listing itself, its
// ledger transaction history, and its reviews with replies. Details are
// cached in redis when configured; the cache is invalidated on any write
// that touches the product.
type CatalogService struct {
	inventory    *InventoryService
	transactions *TransactionService
	reviews      *ReviewService
	redis        *redis.Client
	cacheTTL     time.Duration
}

type ProductDetail struct {
	Product      *models.Product            `json:"product"`
	Transactions []models.TransactionRecord `json:"transactions"`
	Reviews      []ReviewWithReply          `json:"reviews"`
}

func NewCatalogService(cfg *config.Config, inventory *InventoryService, transactions *TransactionService, reviews *ReviewService) *CatalogService {
	s := &CatalogService{
		inventory:    inventory,
		transactions: transactions,
		reviews:      reviews,
		cacheTTL:     time.Duration(cfg.Redis.CacheTTL) * time.Second,
	}

	if cfg.Redis.Enabled() {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.redis.Ping(context.Background()).Err(); err != nil {
			logrus.WithError(err).Warn("Redis unavailable, product detail caching disabled")
			s.redis = nil
		}
	}

	return s
}

// GetDetail returns the composed detail view for a product, from cache when
// possible.
func (s *CatalogService) GetDetail(ctx context.Context, productID uint) (*ProductDetail, error) {
	if cached := s.readCache(ctx, productID); cached != nil {
		return cached, nil
	}

	product, err := s.inventory.GetListing(productID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactions.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByProduct(productID)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product:      product,
		Transactions: transactions,
		Reviews:      reviews,
	}
	s.writeCache(ctx, productID, detail)
	return detail, nil
}

// Invalidate drops the cached detail for a product. Safe to call when the
// cache is disabled or the key is absent.
func (s *CatalogService) Invalidate(ctx context.Context, productID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.cacheKey(productID)).Err(); err != nil {
		logrus.WithError(err).WithField("product_id", productID).Warn("Failed to invalidate product cache")
	}
}

func (s *CatalogService) readCache(ctx context.Context, productID uint) *ProductDetail {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, s.cacheKey(productID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Warn("Product cache read failed")
		}
		metrics.RecordCacheLookup(false)
		return nil
	}

	var detail ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		metrics.RecordCacheLookup(false)
		return nil
	}
	metrics.RecordCacheLookup(true)
	return &detail
}

func (s *CatalogService) writeCache(ctx context.Context, productID uint, detail *ProductDetail) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(productID), data, s.cacheTTL).Err(); err != nil {
		logrus.WithError(err).Warn("Product cache write failed")
	}
}

func (s *CatalogService) cacheKey(productID uint) string {
	return fmt.Sprintf("product:detail:%d", productID)
}
