// internal/models/review.go
package models

// Review correlates to an Order by the natural triple
// (ProductID, ReviewerAddress, TxHash), not a foreign key. A review whose
// triple matches no order is unattributable and renders without an order.
type Review struct {
	BaseModel
	ProductID       uint   `json:"product_id" gorm:"not null;index"`
	ProductName     string `json:"product_name" gorm:"size:255;not null"`
	ReviewerAddress string `json:"reviewer_address" gorm:"size:42;not null;index"`
	Content         string `json:"content" gorm:"type:text;not null"`
	ImageHash       string `json:"image_hash,omitempty" gorm:"size:64"`
	TxHash          string `json:"tx_hash" gorm:"size:66;not null"`
	Timestamp       int64  `json:"timestamp" gorm:"not null"`
}

// MerchantReply rows may accumulate per review; reads display at most one,
// selected by latest timestamp with ties broken by insertion order.
type MerchantReply struct {
	BaseModel
	ReviewID  uint   `json:"review_id" gorm:"not null;index"`
	Reply     string `json:"reply" gorm:"type:text;not null"`
	Timestamp int64  `json:"timestamp" gorm:"not null"`
}
