// internal/services/ledger_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainmarket/backend/internal/apperrors"
	"github.com/chainmarket/backend/internal/config"
)

func TestValidateReceipt(t *testing.T) {
	service := NewLedgerService(&config.Config{})

	valid := &PurchaseReceipt{
		TxHash:      testTxHash(1),
		BlockHash:   testBlockHash(1),
		BlockNumber: 1,
	}
	assert.NoError(t, service.ValidateReceipt(valid))

	cases := []struct {
		name    string
		receipt PurchaseReceipt
	}{
		{"missing 0x prefix", PurchaseReceipt{TxHash: testTxHash(1)[2:], BlockHash: testBlockHash(1), BlockNumber: 1}},
		{"short tx hash", PurchaseReceipt{TxHash: "0xabc", BlockHash: testBlockHash(1), BlockNumber: 1}},
		{"non-hex tx hash", PurchaseReceipt{TxHash: "0x" + string(make([]byte, 64)), BlockHash: testBlockHash(1), BlockNumber: 1}},
		{"bad block hash", PurchaseReceipt{TxHash: testTxHash(1), BlockHash: "0x12", BlockNumber: 1}},
		{"zero block number", PurchaseReceipt{TxHash: testTxHash(1), BlockHash: testBlockHash(1), BlockNumber: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, service.ValidateReceipt(&tc.receipt), apperrors.ErrInvalidReceipt)
		})
	}
}

func TestSimulatePurchase(t *testing.T) {
	service := NewLedgerService(&config.Config{})

	first, err := service.SimulatePurchase(1, 2, testBuyer)
	require.NoError(t, err)
	assert.NoError(t, service.ValidateReceipt(first))

	second, err := service.SimulatePurchase(1, 2, testBuyer)
	require.NoError(t, err)

	// Distinct calls yield distinct hashes and increasing block numbers.
	assert.NotEqual(t, first.TxHash, second.TxHash)
	assert.Greater(t, second.BlockNumber, first.BlockNumber)
}
