package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/config"
	cartControllers "github.com/KvonR/EccomPy/controllers/cart"
	"github.com/KvonR/EccomPy/middleware"
)

// SetupCartRoutes registers the "/cart/*" endpoints. Requires JWT middleware.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken(cfg.JWTSecret))
	{
		cartGroup.GET("/", cartControllers.GetCart(db))
		cartGroup.POST("/add/:product_id", cartControllers.AddToCart(db))
		cartGroup.POST("/update", cartControllers.UpdateCartItem(db))
		cartGroup.POST("/remove/:cart_item_id", cartControllers.RemoveCartItem(db))
	}
}
