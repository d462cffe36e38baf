// internal/models/transaction.go
package models

// TransactionRecord is the append-only log entry for one confirmed ledger
// purchase. Rows are immutable once written; txHash is the dedup key.
type TransactionRecord struct {
	BaseModel
	TxHash       string `json:"tx_hash" gorm:"uniqueIndex;size:66;not null"`
	BuyerAddress string `json:"buyer_address" gorm:"size:42;not null;index"`
	ProductID    uint   `json:"product_id" gorm:"not null;index"`
	Quantity     int    `json:"quantity" gorm:"not null"`
	BlockHash    string `json:"block_hash" gorm:"size:66;not null"`
	BlockNumber  uint64 `json:"block_number" gorm:"not null"`
	Timestamp    int64  `json:"timestamp" gorm:"not null"`
}

// PurchaseSaga is the resumable-step marker for the three-step reconciliation
// of a single txHash. The unique txHash index fences concurrent duplicates;
// step transitions happen through conditional updates, never read-then-write.
type PurchaseSaga struct {
	BaseModel
	TxHash       string   `json:"tx_hash" gorm:"uniqueIndex;size:66;not null"`
	ProductID    uint     `json:"product_id" gorm:"not null;index"`
	Quantity     int      `json:"quantity" gorm:"not null"`
	BuyerAddress string   `json:"buyer_address" gorm:"size:42;not null"`
	Step         SagaStep `json:"step" gorm:"type:varchar(20);not null;default:'pending';index"`
	LastError    string   `json:"last_error,omitempty" gorm:"type:text"`
}
