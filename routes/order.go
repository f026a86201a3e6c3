package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/config"
	orderControllers "github.com/KvonR/EccomPy/controllers/order"
	"github.com/KvonR/EccomPy/middleware"
)

// SetupOrderRoutes registers order history and the live order feed.
func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	orders := r.Group("/orders")
	{
		orders.GET("/", middleware.ValidateToken(cfg.JWTSecret), orderControllers.GetUserOrdersHandler(db))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)
	}
}
