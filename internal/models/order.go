// internal/models/order.go
package models

// Order is the buyer-facing record derived from a confirmed purchase. Name,
// price and seller are snapshotted at purchase time and deliberately do not
// follow later product mutations. One order per txHash.
type Order struct {
	BaseModel
	ProductID     uint    `json:"product_id" gorm:"not null;index"`
	ProductName   string  `json:"product_name" gorm:"size:255;not null"`
	Price         float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity      int     `json:"quantity" gorm:"not null"`
	TxHash        string  `json:"tx_hash" gorm:"uniqueIndex;size:66;not null"`
	BuyerAddress  string  `json:"buyer_address" gorm:"size:42;not null;index"`
	SellerAddress string  `json:"seller_address" gorm:"size:42;not null;index"`
}
