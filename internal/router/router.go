// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/scalemarket/scalemarket-backend/internal/config"
	"github.com/scalemarket/scalemarket-backend/internal/handlers"
	"github.com/scalemarket/scalemarket-backend/internal/middleware"
	"github.com/scalemarket/scalemarket-backend/internal/services"
	"github.com/scalemarket/scalemarket-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		panic(err)
	}

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	auctionService := services.NewAuctionService(db, notificationService)
	bidService := services.NewBidService(db, cfg, notificationService)
	offerService := services.NewOfferService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	auctionHandler := handlers.NewAuctionHandler(auctionService, storageService)
	bidHandler := handlers.NewBidHandler(bidService)
	offerHandler := handlers.NewOfferHandler(offerService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	if cfg.Environment != "test" {
		r.Use(middleware.GeneralRateLimit())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		if cfg.Environment != "test" {
			auth.Use(middleware.AuthRateLimit())
		}
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", userHandler.GetUser)

			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/profile", userHandler.GetProfile)
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.PUT("/password", userHandler.ChangePassword)
				protected.POST("/addresses", userHandler.AddAddress)
				protected.PUT("/addresses/:id", userHandler.UpdateAddress)
				protected.DELETE("/addresses/:id", userHandler.DeleteAddress)
			}
		}

		// Auction routes
		auctions := v1.Group("/auctions")
		{
			auctions.GET("", middleware.OptionalAuth(), auctionHandler.GetAuctions)
			auctions.GET("/categories", auctionHandler.GetCategories)
			auctions.GET("/conditions", auctionHandler.GetConditions)
			auctions.GET("/statuses", auctionHandler.GetStatuses)
			auctions.GET("/:id", auctionHandler.GetAuction)
			auctions.GET("/:id/bids", auctionHandler.GetAuctionBids)
			auctions.GET("/:id/winning-bid", auctionHandler.GetWinningBid)

			protected := auctions.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", auctionHandler.CreateAuction)
				protected.PUT("/:id", auctionHandler.UpdateAuction)
				protected.DELETE("/:id", auctionHandler.DeleteAuction)
				protected.POST("/:id/end", auctionHandler.EndAuction)
				protected.POST("/:id/cancel", auctionHandler.CancelAuction)
				protected.POST("/:id/bids", middleware.BidRateLimit(), bidHandler.PlaceBid)
				protected.POST("/:id/offers", offerHandler.CreateOffer)
				protected.GET("/:id/offers", offerHandler.GetAuctionOffers)
				protected.POST("/upload-images", middleware.UploadRateLimit(), auctionHandler.UploadImages)
			}
		}

		// Bid routes
		bids := v1.Group("/bids")
		bids.Use(middleware.AuthRequired())
		{
			bids.GET("/mine", bidHandler.GetMyBids)
			bids.GET("/:id", bidHandler.GetBid)
			bids.DELETE("/:id", bidHandler.WithdrawBid)
		}

		// Offer routes
		offers := v1.Group("/offers")
		offers.Use(middleware.AuthRequired())
		{
			offers.GET("/mine", offerHandler.GetMyOffers)
			offers.GET("/:id", offerHandler.GetOffer)
			offers.POST("/:id/respond", offerHandler.RespondToOffer)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
