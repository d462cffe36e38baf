// internal/services/reconcile_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/metrics"
	"github.com/chainmarket/backend/internal/models"
	"github.com/chainmarket/backend/internal/utils"
)

// Step names reported in PartialReconciliation errors and saga rows.
const (
	StepInventory      = "inventory"
	StepTransactionLog = "transaction_log"
	StepOrder          = "order"
)

// ReconcileService drives the off-chain side of a ledger-confirmed purchase:
// decrement inventory, append the transaction log, append the order record.
// The three steps share no transaction; a saga row keyed by txHash marks how
// far the flow got, so a retry with the same txHash resumes instead of
// re-applying earlier steps. The ledger mutation is irreversible, so there is
// no rollback path: failures after step one are reported for operator-driven
// replay, never compensated automatically.
type ReconcileService struct {
	db           *gorm.DB
	inventory    *InventoryService
	transactions *TransactionService
	orders       *OrderService
	ledger       *LedgerService
}

type RecordPurchaseRequest struct {
	ProductID    uint   `json:"product_id" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	TxHash       string `json:"tx_hash" validate:"required,ledger_hash"`
	BlockHash    string `json:"block_hash" validate:"required,ledger_hash"`
	BlockNumber  uint64 `json:"block_number" validate:"required"`
	BuyerAddress string `json:"buyer_address" validate:"required,eth_address"`
}

type PurchaseResult struct {
	Product     *models.Product           `json:"product"`
	Transaction *models.TransactionRecord `json:"transaction"`
	Order       *models.Order             `json:"order"`
	// Replayed is true when the txHash had already been fully reconciled
	// and this call changed nothing.
	Replayed bool `json:"replayed"`
}

func NewReconcileService(db *gorm.DB, inventory *InventoryService, transactions *TransactionService, orders *OrderService, ledger *LedgerService) *ReconcileService {
	return &ReconcileService{
		db:           db,
		inventory:    inventory,
		transactions: transactions,
		orders:       orders,
		ledger:       ledger,
	}
}

// RecordPurchase records a ledger-confirmed purchase off-chain, exactly once
// per txHash. The caller re-invokes with identical arguments after a partial
// failure; completed steps are skipped on replay.
func (s *ReconcileService) RecordPurchase(req *RecordPurchaseRequest) (*PurchaseResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.ledger.ValidateReceipt(&PurchaseReceipt{
		TxHash:      req.TxHash,
		BlockHash:   req.BlockHash,
		BlockNumber: req.BlockNumber,
	}); err != nil {
		return nil, err
	}

	saga, err := s.claimSaga(req)
	if err != nil {
		return nil, err
	}

	if saga.Step == models.SagaStepCompleted {
		metrics.RecordReconciliation("replayed", "")
		return s.loadResult(req, true)
	}

	log := logrus.WithFields(logrus.Fields{
		"tx_hash":    req.TxHash,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
		"buyer":      req.BuyerAddress,
	})

	// Step 1: atomic inventory decrement.
	if saga.Step == models.SagaStepPending {
		if err := s.applyInventory(saga, req); err != nil {
			s.noteFailure(saga, err)
			if pre, ok := apperrors.AsPartialReconciliation(err); ok {
				metrics.RecordReconciliation("partial", pre.Step)
			}
			return nil, err
		}
		log.Info("Inventory decrement applied")
	}

	// Step 2: append the transaction log.
	if saga.Step == models.SagaStepInventoryApplied {
		if err := s.appendTransaction(saga, req); err != nil {
			s.noteFailure(saga, err)
			metrics.RecordReconciliation("partial", StepTransactionLog)
			return nil, err
		}
		log.Info("Transaction record appended")
	}

	// Step 3: append the order record.
	if saga.Step == models.SagaStepLogged {
		if err := s.appendOrder(saga, req); err != nil {
			s.noteFailure(saga, err)
			metrics.RecordReconciliation("partial", StepOrder)
			return nil, err
		}
		log.Info("Order record appended")
	}

	metrics.RecordReconciliation("completed", "")
	log.Info("Purchase reconciliation completed")
	return s.loadResult(req, false)
}

// Status exposes the saga and whatever records exist for a txHash, for
// operator inspection of partially reconciled purchases.
func (s *ReconcileService) Status(txHash string) (*models.PurchaseSaga, *models.TransactionRecord, *models.Order, error) {
	var saga models.PurchaseSaga
	if err := s.db.Where("tx_hash = ?", txHash).First(&saga).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, apperrors.NotFoundf("purchase %s", txHash)
		}
		return nil, nil, nil, apperrors.Unavailable("get purchase status", err)
	}

	record, err := s.transactions.GetByTxHash(txHash)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, nil, err
	}
	order, err := s.orders.GetByTxHash(txHash)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, nil, err
	}

	return &saga, record, order, nil
}

// claimSaga inserts the marker row for this txHash, or fetches the existing
// one on a duplicate. The unique index makes exactly one caller the creator;
// everyone else resumes whatever step the row shows.
func (s *ReconcileService) claimSaga(req *RecordPurchaseRequest) (*models.PurchaseSaga, error) {
	saga := &models.PurchaseSaga{
		TxHash:       req.TxHash,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		BuyerAddress: req.BuyerAddress,
		Step:         models.SagaStepPending,
	}

	if err := s.db.Create(saga).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Unavailable("claim saga", err)
		}
		var existing models.PurchaseSaga
		if err := s.db.Where("tx_hash = ?", req.TxHash).First(&existing).Error; err != nil {
			return nil, apperrors.Unavailable("claim saga", err)
		}
		return &existing, nil
	}

	return saga, nil
}

// applyInventory runs the conditional decrement and the pending→applied step
// transition in one store transaction. The conditional transition fences
// concurrent callers racing on the same txHash: the loser's update matches
// zero rows and the decrement is rolled back with it.
func (s *ReconcileService) applyInventory(saga *models.PurchaseSaga, req *RecordPurchaseRequest) error {
	claimed := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PurchaseSaga{}).
			Where("id = ? AND step = ?", saga.ID, models.SagaStepPending).
			Update("step", models.SagaStepInventoryApplied)
		if res.Error != nil {
			return apperrors.Unavailable("advance saga", res.Error)
		}
		if res.RowsAffected == 0 {
			// Another caller applied this step already.
			return nil
		}
		claimed = true

		if _, err := s.inventory.DecrementQuantity(tx, req.ProductID, req.Quantity); err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			// Nothing was mutated; surface NotFound verbatim.
			return err
		case errors.Is(err, apperrors.ErrInsufficientInventory):
			// The ledger authorized a sale the mirror cannot absorb. The
			// stores have diverged; flag for operator attention.
			return &apperrors.PartialReconciliationError{TxHash: req.TxHash, Step: StepInventory, Err: err}
		default:
			// Nothing committed yet, so the whole call is safely retriable.
			return err
		}
	}

	if !claimed {
		// Reload to learn how far the concurrent caller got.
		if err := s.db.Where("id = ?", saga.ID).First(saga).Error; err != nil {
			return apperrors.Unavailable("reload saga", err)
		}
		return nil
	}

	saga.Step = models.SagaStepInventoryApplied
	return nil
}

func (s *ReconcileService) appendTransaction(saga *models.PurchaseSaga, req *RecordPurchaseRequest) error {
	record := &models.TransactionRecord{
		TxHash:       req.TxHash,
		BuyerAddress: req.BuyerAddress,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		BlockHash:    req.BlockHash,
		BlockNumber:  req.BlockNumber,
		Timestamp:    time.Now().Unix(),
	}

	if err := s.transactions.Append(nil, record); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
		return &apperrors.PartialReconciliationError{TxHash: req.TxHash, Step: StepTransactionLog, Err: err}
	}

	if err := s.advanceSaga(saga, models.SagaStepInventoryApplied, models.SagaStepLogged); err != nil {
		return &apperrors.PartialReconciliationError{TxHash: req.TxHash, Step: StepTransactionLog, Err: err}
	}
	return nil
}

func (s *ReconcileService) appendOrder(saga *models.PurchaseSaga, req *RecordPurchaseRequest) error {
	exists, err := s.orders.ExistsByTxHash(req.TxHash)
	if err != nil {
		return &apperrors.PartialReconciliationError{TxHash: req.TxHash, Step: StepOrder, Err: err}
	}

	if !exists {
		// Snapshot name, price and owner at call time. If the product was
		// delisted between steps, the transaction log stays authoritative and
		// the order is left for operator replay.
		product, err := s.inventory.GetListing(req.ProductID)
		if err != nil {
			return &apperrors.PartialReconciliationError{TxHash: req.TxHash, Step: StepOrder, Err: err}
		}

		order := &models.Order{
			ProductID:     req.ProductID,
			ProductName:   product.Name,
			Price:         product.Price,
			Quantity:      req.Quantity,
			TxHash:        req.TxHash,
			BuyerAddress:  req.BuyerAddress,
			SellerAddress: product.OwnerAddress,
		}
		if err := s.orders.Append(nil, order); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			return &apperrors.PartialReconciliationError{TxHash: req.TxHash, Step: StepOrder, Err: err}
		}
	}

	if err := s.advanceSaga(saga, models.SagaStepLogged, models.SagaStepCompleted); err != nil {
		return &apperrors.PartialReconciliationError{TxHash: req.TxHash, Step: StepOrder, Err: err}
	}
	return nil
}

func (s *ReconcileService) advanceSaga(saga *models.PurchaseSaga, from, to models.SagaStep) error {
	res := s.db.Model(&models.PurchaseSaga{}).
		Where("id = ? AND step = ?", saga.ID, from).
		Updates(map[string]interface{}{"step": to, "last_error": ""})
	if res.Error != nil {
		return apperrors.Unavailable("advance saga", res.Error)
	}
	// Zero rows means a concurrent caller advanced past us; that is fine.
	saga.Step = to
	return nil
}

func (s *ReconcileService) noteFailure(saga *models.PurchaseSaga, cause error) {
	if err := s.db.Model(&models.PurchaseSaga{}).
		Where("id = ?", saga.ID).
		Update("last_error", cause.Error()).Error; err != nil {
		logrus.WithError(err).WithField("tx_hash", saga.TxHash).Warn("Failed to record saga error")
	}
}

func (s *ReconcileService) loadResult(req *RecordPurchaseRequest, replayed bool) (*PurchaseResult, error) {
	record, err := s.transactions.GetByTxHash(req.TxHash)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByTxHash(req.TxHash)
	if err != nil {
		return nil, err
	}
	// The product may have been delisted since; the result still carries the
	// immutable records.
	product, err := s.inventory.GetListing(req.ProductID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return &PurchaseResult{
		Product:     product,
		Transaction: record,
		Order:       order,
		Replayed:    replayed,
	}, nil
}
