// internal/handlers/review.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/i18n"
	"github.com/chainmarket/backend/internal/services"
	"github.com/chainmarket/backend/internal/utils"
)

type ReviewHandler struct {
	reviewService  *services.ReviewService
	catalogService *services.CatalogService
}

func NewReviewHandler(reviewService *services.ReviewService, catalogService *services.CatalogService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:  reviewService,
		catalogService: catalogService,
	}
}

// POST /reviews
func (h *ReviewHandler) AddReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	req.ReviewerAddress = address

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	review, err := h.reviewService.AddReview(&req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	h.catalogService.Invalidate(c.Request.Context(), req.ProductID)

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewCreated),
		"review":  review,
	})
}

// GET /reviews
//
// The authenticated buyer's own reviews.
func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	reviews, err := h.reviewService.ListByReviewer(address)
	if err != nil {
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		return
	}

	utils.SuccessResponse(c, gin.H{"reviews": reviews})
}

// POST /reviews/:id/reply
func (h *ReviewHandler) ReplyToReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Reply string `json:"reply"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	req := services.ReplyRequest{
		ReviewID:        id,
		MerchantAddress: address,
		Reply:           body.Reply,
	}
	reply, err := h.reviewService.ReplyToReview(&req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			utils.NotFoundResponse(c, "review")
		case errors.Is(err, apperrors.ErrUnauthorized):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthForbidden))
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReviewReplied),
		"reply":   reply,
	})
}
