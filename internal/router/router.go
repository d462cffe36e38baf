// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/chainmarket/backend/internal/config"
	"github.com/chainmarket/backend/internal/handlers"
	"github.com/chainmarket/backend/internal/middleware"
	"github.com/chainmarket/backend/internal/services"
	"github.com/chainmarket/backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	ledgerService := services.NewLedgerService(cfg)

	authService := services.NewAuthService(db, cfg)
	inventoryService := services.NewInventoryService(db)
	transactionService := services.NewTransactionService(db)
	orderService := services.NewOrderService(db)
	reviewService := services.NewReviewService(db)
	favoriteService := services.NewFavoriteService(db)
	catalogService := services.NewCatalogService(cfg, inventoryService, transactionService, reviewService)
	reconcileService := services.NewReconcileService(db, inventoryService, transactionService, orderService, ledgerService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(inventoryService, catalogService, favoriteService)
	purchaseHandler := handlers.NewPurchaseHandler(reconcileService, catalogService)
	orderHandler := handlers.NewOrderHandler(orderService, reviewService)
	reviewHandler := handlers.NewReviewHandler(reviewService, catalogService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	imageHandler := handlers.NewImageHandler(storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.Metrics())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Local image fallback when S3 is not configured
	r.Static("/uploads", "./uploads")

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProductDetail)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", productHandler.CreateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
			}
		}

		// Purchase reconciliation routes
		purchases := v1.Group("/purchases")
		purchases.Use(middleware.AuthRequired())
		{
			purchases.POST("", purchaseHandler.RecordPurchase)
			purchases.GET("/:txHash", purchaseHandler.GetPurchaseStatus)
		}

		// Order routes
		v1.GET("/orders", middleware.AuthRequired(), orderHandler.GetMyOrders)
		v1.GET("/merchants/:address/orders", middleware.AuthRequired(), orderHandler.GetMerchantOrders)

		// Review routes
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.POST("", reviewHandler.AddReview)
			reviews.GET("", reviewHandler.GetMyReviews)
			reviews.POST("/:id/reply", reviewHandler.ReplyToReview)
		}

		// Favorite routes
		favorites := v1.Group("/favorites")
		favorites.Use(middleware.AuthRequired())
		{
			favorites.GET("", favoriteHandler.GetFavorites)
			favorites.POST("/:productId", favoriteHandler.AddFavorite)
			favorites.DELETE("/:productId", favoriteHandler.RemoveFavorite)
		}

		// Image upload
		v1.POST("/images", middleware.AuthRequired(), middleware.UploadRateLimit(), imageHandler.UploadImage)
	}

	return r
}
