package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/config"
	checkoutControllers "github.com/KvonR/EccomPy/controllers/checkout"
)

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, checkout *checkoutControllers.Handler) {
	// Public auth routes (guest identity issuance)
	SetupAuthRoutes(r, db, cfg)

	// Catalog browsing + admin catalog management
	SetupProductRoutes(r, db, cfg)

	// Cart routes (JWT-protected)
	SetupCartRoutes(r, db, cfg)

	// Checkout + payment redirect callbacks
	SetupCheckoutRoutes(r, checkout, cfg)

	// Order history + live order feed
	SetupOrderRoutes(r, db, cfg)
}
