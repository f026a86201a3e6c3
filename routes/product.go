package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/config"
	productControllers "github.com/KvonR/EccomPy/controllers/product"
	"github.com/KvonR/EccomPy/middleware"
)

// SetupProductRoutes registers public catalog browsing and the API-key
// protected admin catalog management endpoints.
func SetupProductRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))

	adminGroup := r.Group("/admin/products")
	adminGroup.Use(middleware.ValidateAPIKey(cfg.AdminAPIKey))
	{
		adminGroup.POST("/", productControllers.CreateProduct(db))
		adminGroup.PUT("/:id", productControllers.UpdateProduct(db))
		adminGroup.DELETE("/:id", productControllers.DeleteProduct(db))
	}
}
