// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthForbidden          = "auth.forbidden"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Products
	KeyProductCreated    = "product.created"
	KeyProductDelisted   = "product.delisted"
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"

	// Purchases
	KeyPurchaseRecorded = "purchase.recorded"
	KeyPurchaseReplayed = "purchase.replayed"
	KeyPurchasePartial  = "purchase.partial"
	KeyPurchaseNotFound = "purchase.not_found"

	// Orders
	KeyOrderNotFound = "order.not_found"

	// Reviews
	KeyReviewCreated  = "review.created"
	KeyReviewReplied  = "review.replied"
	KeyReviewNotFound = "review.not_found"

	// Favorites
	KeyFavoriteAdded   = "favorite.added"
	KeyFavoriteRemoved = "favorite.removed"

	// Images
	KeyImageUploaded = "image.uploaded"

	// Validation / infrastructure
	KeyValidationInvalid = "validation.invalid"
	KeyStoreUnavailable  = "store.unavailable"
)
