// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/models"
	"github.com/chainmarket/backend/internal/utils"
)

// ReviewService manages product reviews and merchant replies. A review is
// correlated to a purchase by the natural triple (productId, reviewerAddress,
// txHash), never by a stored foreign key to the order row.
type ReviewService struct {
	db *gorm.DB
}

type AddReviewRequest struct {
	ProductID       uint   `json:"product_id" validate:"required"`
	ReviewerAddress string `json:"reviewer_address" validate:"required,eth_address"`
	Content         string `json:"content" validate:"required,max=2000"`
	ImageHash       string `json:"image_hash" validate:"omitempty,len=64,hexadecimal"`
	TxHash          string `json:"tx_hash" validate:"required,ledger_hash"`
}

type ReplyRequest struct {
	ReviewID        uint   `json:"review_id" validate:"required"`
	MerchantAddress string `json:"merchant_address" validate:"required,eth_address"`
	Reply           string `json:"reply" validate:"required,max=2000"`
}

// ReviewWithReply pairs a review with its latest merchant reply, if any.
type ReviewWithReply struct {
	Review models.Review         `json:"review"`
	Reply  *models.MerchantReply `json:"reply,omitempty"`
}

// OrderReview pairs a merchant-side review with the order it correlates to.
// Order is nil when no order matches the triple; the review is still shown.
type OrderReview struct {
	Review models.Review `json:"review"`
	Order  *models.Order `json:"order,omitempty"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// AddReview stores a review, snapshotting the product name at submission
// time so the review survives delisting.
func (s *ReviewService) AddReview(req *AddReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("product %d", req.ProductID)
		}
		return nil, apperrors.Unavailable("add review", err)
	}

	review := &models.Review{
		ProductID:       req.ProductID,
		ProductName:     product.Name,
		ReviewerAddress: req.ReviewerAddress,
		Content:         req.Content,
		ImageHash:       req.ImageHash,
		TxHash:          req.TxHash,
		Timestamp:       time.Now().Unix(),
	}
	if err := s.db.Create(review).Error; err != nil {
		return nil, apperrors.Unavailable("add review", err)
	}
	return review, nil
}

// ListByProduct returns a product's reviews, newest first, each with its
// latest merchant reply.
func (s *ReviewService) ListByProduct(productID uint) ([]ReviewWithReply, error) {
	var reviews []models.Review
	if err := s.db.Where("product_id = ?", productID).
		Order("timestamp DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, apperrors.Unavailable("list reviews", err)
	}
	return s.attachReplies(reviews)
}

// ListByReviewer returns the reviews a buyer has written, newest first.
func (s *ReviewService) ListByReviewer(reviewerAddress string) ([]ReviewWithReply, error) {
	var reviews []models.Review
	if err := s.db.Where("reviewer_address = ?", reviewerAddress).
		Order("timestamp DESC, id DESC").
		Find(&reviews).Error; err != nil {
		return nil, apperrors.Unavailable("list reviews", err)
	}
	return s.attachReplies(reviews)
}

// ReplyToReview appends a merchant reply. Only the owner of the reviewed
// product may reply; replies are append-only, the latest one is displayed.
func (s *ReviewService) ReplyToReview(req *ReplyRequest) (*models.MerchantReply, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review models.Review
	if err := s.db.Where("id = ?", req.ReviewID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("review %d", req.ReviewID)
		}
		return nil, apperrors.Unavailable("reply to review", err)
	}

	var product models.Product
	if err := s.db.Where("id = ?", review.ProductID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Product delisted; ownership can no longer be proven.
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.Unavailable("reply to review", err)
	}
	if product.OwnerAddress != req.MerchantAddress {
		return nil, apperrors.ErrUnauthorized
	}

	reply := &models.MerchantReply{
		ReviewID:  req.ReviewID,
		Reply:     req.Reply,
		Timestamp: time.Now().Unix(),
	}
	if err := s.db.Create(reply).Error; err != nil {
		return nil, apperrors.Unavailable("reply to review", err)
	}
	return reply, nil
}

// MerchantOrdersAndReviews returns the merchant's sold orders alongside the
// reviews left on their products, correlating each review to an order by
// (productId, reviewerAddress, txHash). A review with no matching order is
// returned with a nil order rather than dropped.
func (s *ReviewService) MerchantOrdersAndReviews(sellerAddress string) ([]models.Order, []OrderReview, error) {
	var orders []models.Order
	if err := s.db.Where("seller_address = ?", sellerAddress).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, nil, apperrors.Unavailable("list merchant orders", err)
	}

	var reviews []models.Review
	if err := s.db.
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.owner_address = ?", sellerAddress).
		Order("reviews.timestamp DESC, reviews.id DESC").
		Find(&reviews).Error; err != nil {
		return nil, nil, apperrors.Unavailable("list merchant reviews", err)
	}

	type tripleKey struct {
		productID uint
		buyer     string
		txHash    string
	}
	byTriple := make(map[tripleKey]*models.Order, len(orders))
	for i := range orders {
		o := &orders[i]
		byTriple[tripleKey{o.ProductID, o.BuyerAddress, o.TxHash}] = o
	}

	correlated := make([]OrderReview, 0, len(reviews))
	for _, r := range reviews {
		correlated = append(correlated, OrderReview{
			Review: r,
			Order:  byTriple[tripleKey{r.ProductID, r.ReviewerAddress, r.TxHash}],
		})
	}
	return orders, correlated, nil
}

// attachReplies fetches replies for a batch of reviews and keeps the latest
// per review, ties broken by highest id.
func (s *ReviewService) attachReplies(reviews []models.Review) ([]ReviewWithReply, error) {
	result := make([]ReviewWithReply, 0, len(reviews))
	if len(reviews) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}

	var replies []models.MerchantReply
	if err := s.db.Where("review_id IN ?", ids).
		Order("timestamp DESC, id DESC").
		Find(&replies).Error; err != nil {
		return nil, apperrors.Unavailable("list replies", err)
	}

	latest := make(map[uint]*models.MerchantReply, len(replies))
	for i := range replies {
		rep := &replies[i]
		if _, ok := latest[rep.ReviewID]; !ok {
			latest[rep.ReviewID] = rep
		}
	}

	for _, r := range reviews {
		result = append(result, ReviewWithReply{Review: r, Reply: latest[r.ID]})
	}
	return result, nil
}
