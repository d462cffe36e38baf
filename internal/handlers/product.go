// internal/handlers/product.go
package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/i18n"
	"github.com/chainmarket/backend/internal/services"
	"github.com/chainmarket/backend/internal/utils"
)

type ProductHandler struct {
	inventoryService *services.InventoryService
	catalogService   *services.CatalogService
	favoriteService  *services.FavoriteService
}

func NewProductHandler(inventoryService *services.InventoryService, catalogService *services.CatalogService, favoriteService *services.FavoriteService) *ProductHandler {
	return &ProductHandler{
		inventoryService: inventoryService,
		catalogService:   catalogService,
		favoriteService:  favoriteService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.ListingFilter{
		Search:   params.Search,
		Owner:    c.Query("owner"),
		Category: c.Query("category"),
	}

	if minStr := c.Query("price_min"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			filter.MinPrice = &min
		}
	}
	if maxStr := c.Query("price_max"); maxStr != "" {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil {
			filter.MaxPrice = &max
		}
	}
	if tags := c.Query("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}
	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			filter.InStock = inStock
		}
	}

	products, total, err := h.inventoryService.QueryPage(filter, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	req.OwnerAddress = address

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.inventoryService.CreateListing(&req)
	if err != nil {
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// GET /products/:id
func (h *ProductHandler) GetProductDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.catalogService.GetDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	resp := gin.H{
		"product":      detail.Product,
		"transactions": detail.Transactions,
		"reviews":      detail.Reviews,
	}
	if address, authed := utils.GetAddressFromContext(c); authed {
		if fav, err := h.favoriteService.IsFavorite(address, id); err == nil {
			resp["is_favorite"] = fav
		}
	}

	utils.SuccessResponse(c, resp)
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
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

	if err := h.inventoryService.Delist(id, address); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, apperrors.ErrUnauthorized):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthForbidden))
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	h.catalogService.Invalidate(c.Request.Context(), id)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDelisted),
	})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return 0, false
	}
	return uint(id), true
}
