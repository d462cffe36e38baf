// internal/services/ledger_service.go
package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/utils"
)

// LedgerService is the boundary to the external ledger. The smart contract is
// the source of truth for value transfer and purchase authorization; this
// side only checks that a receipt handed to the coordinator has the shape a
// confirmed transaction would have. It never re-verifies ledger state.
type LedgerService struct {
	config      *config.Config
	blockNumber uint64
}

// PurchaseReceipt is the confirmed-transaction triple returned by the
// contract's purchase call.
type PurchaseReceipt struct {
	TxHash      string `json:"tx_hash"`
	BlockHash   string `json:"block_hash"`
	BlockNumber uint64 `json:"block_number"`
}

var ledgerHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

func NewLedgerService(config *config.Config) *LedgerService {
	return &LedgerService{config: config}
}

// ValidateReceipt rejects malformed receipts before any store access.
func (s *LedgerService) ValidateReceipt(receipt *PurchaseReceipt) error {
	if !ledgerHashPattern.MatchString(receipt.TxHash) {
		return fmt.Errorf("malformed tx hash %q: %w", receipt.TxHash, apperrors.ErrInvalidReceipt)
	}
	if !ledgerHashPattern.MatchString(receipt.BlockHash) {
		return fmt.Errorf("malformed block hash %q: %w", receipt.BlockHash, apperrors.ErrInvalidReceipt)
	}
	if receipt.BlockNumber == 0 {
		return fmt.Errorf("block number must be positive: %w", apperrors.ErrInvalidReceipt)
	}
	return nil
}

// SimulatePurchase produces a receipt with the shape a confirmed contract
// call would return. Used in development and tests where no chain is
// reachable; the RPC-backed client replaces this in production wiring.
func (s *LedgerService) SimulatePurchase(productID uint, quantity int, buyerAddress string) (*PurchaseReceipt, error) {
	nonce, err := utils.GenerateRandomString(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	blockNumber := atomic.AddUint64(&s.blockNumber, 1)

	return &PurchaseReceipt{
		TxHash:      s.generateHash(fmt.Sprintf("purchase:%d:%d:%s:%s", productID, quantity, buyerAddress, nonce)),
		BlockHash:   s.generateHash(fmt.Sprintf("block:%d:%d", blockNumber, time.Now().UnixNano())),
		BlockNumber: blockNumber,
	}, nil
}

func (s *LedgerService) generateHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return "0x" + hex.EncodeToString(hash[:])
}
