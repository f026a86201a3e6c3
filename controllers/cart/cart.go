package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/middleware"
	"github.com/KvonR/EccomPy/models"
)

type UpdateCartInput struct {
	CartItemID uint `json:"cart_item_id" binding:"required"`
	Quantity   int  `json:"quantity"`
}

// POST /cart/add/:product_id
//
// Get-or-increment: a (user, product) pair has at most one cart line. Adding
// an existing product bumps its quantity by one. Responds with the summed
// quantity across all of the user's lines.
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product does not exist"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			}
			return
		}

		var item models.CartItem
		err = db.Where("user_id = ? AND product_id = ?", userID, product.ID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				UserID:    userID,
				ProductID: product.ID,
				Quantity:  1,
				AddedAt:   time.Now(),
			}
			if err := db.Create(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
				return
			}
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
			return
		default:
			item.Quantity++
			item.AddedAt = time.Now()
			if err := db.Save(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
				return
			}
		}

		count, err := CartCount(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count cart items"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart_count": count})
	}
}

// POST /cart/update
//
// Quantity <= 0 deletes the line. Responds with the recomputed cart total and
// the line's new subtotal (0 when deleted).
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input UpdateCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var item models.CartItem
		err := db.Preload("Product").
			Where("id = ? AND user_id = ?", input.CartItemID, userID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
			}
			return
		}

		itemSubtotal := 0.0
		if input.Quantity <= 0 {
			if err := db.Delete(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
				return
			}
		} else {
			item.Quantity = input.Quantity
			if err := db.Save(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
				return
			}
			itemSubtotal = item.Subtotal()
		}

		total, err := CartTotal(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute cart total"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cart_total":    total,
			"item_subtotal": itemSubtotal,
		})
	}
}

// POST /cart/remove/:cart_item_id
func RemoveCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartItemID, err := strconv.Atoi(c.Param("cart_item_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
			return
		}

		result := db.Delete(&models.CartItem{}, cartItemID)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// GET /cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		items, err := CartLines(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		type line struct {
			models.CartItem
			Subtotal float64 `json:"subtotal"`
		}
		lines := make([]line, 0, len(items))
		total := 0.0
		for _, item := range items {
			sub := item.Subtotal()
			total = models.Round2(total + sub)
			lines = append(lines, line{CartItem: item, Subtotal: sub})
		}

		c.JSON(http.StatusOK, gin.H{
			"items":      lines,
			"cart_total": total,
		})
	}
}

// CartLines loads a user's cart lines with products attached.
func CartLines(db *gorm.DB, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.Preload("Product").
		Where("user_id = ?", userID).
		Order("added_at").
		Find(&items).Error
	return items, err
}

// CartCount sums quantities across a user's lines, not the line count.
func CartCount(db *gorm.DB, userID string) (int, error) {
	var count int
	err := db.Model(&models.CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ?", userID).
		Scan(&count).Error
	return count, err
}

// CartTotal is the server-computed grand total for a user's cart.
func CartTotal(db *gorm.DB, userID string) (float64, error) {
	items, err := CartLines(db, userID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, item := range items {
		total = models.Round2(total + item.Subtotal())
	}
	return total, nil
}
