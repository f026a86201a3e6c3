package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/KvonR/EccomPy/config"
	checkoutControllers "github.com/KvonR/EccomPy/controllers/checkout"
	"github.com/KvonR/EccomPy/middleware"
)

// SetupCheckoutRoutes registers session creation plus the redirect callbacks
// the provider sends the shopper back through.
func SetupCheckoutRoutes(r *gin.Engine, h *checkoutControllers.Handler, cfg *config.Config) {
	r.POST("/checkout", middleware.ValidateToken(cfg.JWTSecret), h.CreateSession)
	r.GET("/success", middleware.ValidateToken(cfg.JWTSecret), h.Success)
	r.GET("/cancel", h.Cancel)
}
