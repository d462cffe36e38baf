// internal/handlers/image.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chainmarket/backend/internal/i18n"
	"github.com/chainmarket/backend/internal/services"
	"github.com/chainmarket/backend/internal/utils"
)

type ImageHandler struct {
	storageService *services.StorageService
}

func NewImageHandler(storageService *services.StorageService) *ImageHandler {
	return &ImageHandler{storageService: storageService}
}

// POST /images
//
// Multipart upload under field "image". The response hash is what product
// listings and reviews carry; uploading identical bytes yields the same hash.
func (h *ImageHandler) UploadImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	if _, exists := utils.GetAddressFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "image"), err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadImage(file, header)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyImageUploaded),
		"image":   result,
	})
}
