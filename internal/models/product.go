// internal/models/product.go
package models

// Product is the off-chain mirror of a sellable listing. Quantity is mutated
// only by the reconciliation flow's conditional decrement; a delist hard
// deletes the row while transaction and order rows keep referencing its id.
type Product struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:255;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	Category    string  `json:"category" gorm:"size:100;index"`
	// Stored as a JSON-encoded array so the column is portable across the
	// postgres and sqlite drivers.
	Tags         []string `json:"tags" gorm:"serializer:json;type:text"`
	Quantity     int      `json:"quantity" gorm:"not null;default:0"`
	ImageHash    string   `json:"image_hash" gorm:"size:64"`
	OwnerAddress string   `json:"owner_address" gorm:"size:42;not null;index"`
}
