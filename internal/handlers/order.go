// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chainmarket/backend/internal/i18n"
	"github.com/chainmarket/backend/internal/services"
	"github.com/chainmarket/backend/internal/utils"
)

type OrderHandler struct {
	orderService  *services.OrderService
	reviewService *services.ReviewService
}

func NewOrderHandler(orderService *services.OrderService, reviewService *services.ReviewService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		reviewService: reviewService,
	}
}

// GET /orders
//
// The authenticated buyer's purchase history.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orders, err := h.orderService.ListByBuyer(address)
	if err != nil {
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

// GET /merchants/:address/orders
//
// A merchant's sold orders with correlated reviews. Only the merchant may
// view their own dashboard.
func (h *OrderHandler) GetMerchantOrders(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	if c.Param("address") != address {
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthForbidden))
		return
	}

	orders, reviews, err := h.reviewService.MerchantOrdersAndReviews(address)
	if err != nil {
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"orders":  orders,
		"reviews": reviews,
	})
}
