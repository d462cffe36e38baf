// internal/handlers/purchase.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/i18n"
	"github.com/chainmarket/backend/internal/services"
	"github.com/chainmarket/backend/internal/utils"
)

// PurchaseHandler exposes the reconciliation flow: a ledger-confirmed
// purchase is reported here and mirrored into the relational store.
type PurchaseHandler struct {
	reconcileService *services.ReconcileService
	catalogService   *services.CatalogService
}

func NewPurchaseHandler(reconcileService *services.ReconcileService, catalogService *services.CatalogService) *PurchaseHandler {
	return &PurchaseHandler{
		reconcileService: reconcileService,
		catalogService:   catalogService,
	}
}

// POST /purchases
//
// Idempotent on tx_hash: re-posting the same receipt resumes a partially
// recorded purchase or returns the already-recorded result.
func (h *PurchaseHandler) RecordPurchase(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	// The authenticated wallet is the buyer; the body cannot claim another.
	req.BuyerAddress = address

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.reconcileService.RecordPurchase(&req)
	if err != nil {
		if pre, ok := apperrors.AsPartialReconciliation(err); ok {
			utils.PartialReconciliationResponse(c, pre.TxHash, pre.Step, pre.Err.Error())
			return
		}
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			utils.NotFoundResponse(c, "product")
		case errors.Is(err, apperrors.ErrInvalidReceipt):
			utils.BadRequestResponse(c, err.Error(), nil)
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	h.catalogService.Invalidate(c.Request.Context(), req.ProductID)

	message := i18n.T(lang, i18n.KeyPurchaseRecorded)
	if result.Replayed {
		message = i18n.T(lang, i18n.KeyPurchaseReplayed)
	}

	utils.CreatedResponse(c, gin.H{
		"message":  message,
		"purchase": result,
	})
}

// GET /purchases/:txHash
//
// Operator view of a purchase's reconciliation progress.
func (h *PurchaseHandler) GetPurchaseStatus(c *gin.Context) {
	txHash := c.Param("txHash")

	saga, record, order, err := h.reconcileService.Status(txHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.NotFoundResponse(c, "purchase")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"tx_hash":     saga.TxHash,
		"step":        saga.Step,
		"last_error":  saga.LastError,
		"transaction": record,
		"order":       order,
	})
}
