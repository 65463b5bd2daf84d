package server

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/config"
	"github.com/nileshpandey4/campusdesk/internal/handlers"
	"github.com/nileshpandey4/campusdesk/internal/middleware"
	"github.com/nileshpandey4/campusdesk/internal/models"
	"github.com/nileshpandey4/campusdesk/internal/storage"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	blobs := storage.NewDiskStore(cfg.UploadDir)

	r := gin.Default()
	r.Use(cors.Default())

	setupRoutes(r, db, blobs)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, blobs storage.BlobStore) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.BlobStoreMiddleware(blobs))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		listingPublic := public.Group("/listings")
		{
			listingPublic.GET("", handlers.ListListings)
			listingPublic.GET("/:id", handlers.GetListing)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)

		listingProtected := protected.Group("/listings")
		listingProtected.Use(middleware.RequireRoles(models.RoleProvider))
		{
			listingProtected.POST("", handlers.CreateListing)
			listingProtected.PUT("/:id", handlers.UpdateListing)
			listingProtected.DELETE("/:id", handlers.DeleteListing)
		}

		bookings := protected.Group("/bookings")
		{
			bookings.POST("", middleware.RequireRoles(models.RoleStudent), handlers.CreateBooking)
			bookings.GET("", handlers.ListBookings)
			bookings.GET("/admin/all", middleware.RequireRoles(models.RoleAdmin), handlers.ListAllBookings)
			bookings.GET("/:id", handlers.GetBooking)
			bookings.PATCH("/:id/status", middleware.RequireRoles(models.RoleProvider, models.RoleAdmin), handlers.UpdateBookingStatus)
			bookings.POST("/:id/payment", handlers.AttachPaymentEvidence)
			bookings.PATCH("/:id/verify-payment", middleware.RequireRoles(models.RoleAdmin), handlers.VerifyPayment)
			bookings.GET("/:id/receipt", handlers.GetReceipt)
			bookings.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), handlers.DeleteBooking)
		}

		settings := protected.Group("/payment-settings")
		{
			settings.GET("", handlers.GetPaymentSettings)
			settings.GET("/qr", handlers.GetPaymentQR)
			settings.PUT("", middleware.RequireRoles(models.RoleAdmin), handlers.UpdatePaymentSettings)
		}
	}
}
