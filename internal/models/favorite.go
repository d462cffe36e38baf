// internal/models/favorite.go
package models

// Favorite is a membership row in a per-user set. The store does not enforce
// uniqueness; writes are made idempotent at the service layer and reads dedup
// by product id.
type Favorite struct {
	BaseModel
	UserAddress string `json:"user_address" gorm:"size:42;not null;index:idx_favorites_user_product"`
	ProductID   uint   `json:"product_id" gorm:"not null;index:idx_favorites_user_product"`
}
