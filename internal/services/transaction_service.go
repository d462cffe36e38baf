// internal/services/transaction_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/models"
)

// TransactionService is the durable, append-only, deduplicated-by-txHash log
// of confirmed purchases. Rows are write-once: no update or delete path
// exists.
type TransactionService struct {
	db *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

// Append inserts one record. A duplicate txHash is rejected by the unique
// index and reported as ErrDuplicate; the coordinator treats that as
// already-applied on replay.
func (s *TransactionService) Append(db *gorm.DB, record *models.TransactionRecord) error {
	if db == nil {
		db = s.db
	}

	if err := db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Duplicatef("transaction %s", record.TxHash)
		}
		return apperrors.Unavailable("append transaction", err)
	}
	return nil
}

func (s *TransactionService) GetByTxHash(txHash string) (*models.TransactionRecord, error) {
	var record models.TransactionRecord
	if err := s.db.Where("tx_hash = ?", txHash).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("transaction %s", txHash)
		}
		return nil, apperrors.Unavailable("get transaction", err)
	}
	return &record, nil
}

func (s *TransactionService) ListByProduct(productID uint) ([]models.TransactionRecord, error) {
	var records []models.TransactionRecord
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Unavailable("list transactions", err)
	}
	return records, nil
}
