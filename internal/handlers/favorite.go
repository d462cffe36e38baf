// internal/handlers/favorite.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/i18n"
	"github.com/chainmarket/backend/internal/services"
	"github.com/chainmarket/backend/internal/utils"
)

type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// POST /favorites/:productId
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseID(c, "productId")
	if !ok {
		return
	}

	if err := h.favoriteService.Add(address, id); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFavoriteAdded),
	})
}

// DELETE /favorites/:productId
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, ok := parseID(c, "productId")
	if !ok {
		return
	}

	if err := h.favoriteService.Remove(address, id); err != nil {
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFavoriteRemoved),
	})
}

// GET /favorites
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	products, err := h.favoriteService.List(address)
	if err != nil {
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		return
	}

	utils.SuccessResponse(c, gin.H{"favorites": products})
}
