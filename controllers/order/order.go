package orderControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/middleware"
	"github.com/KvonR/EccomPy/models"
)

var ErrNoItems = errors.New("order has no items")

// GenerateOrderRef returns a unique, sortable order reference.
// Example: 20250908130500-<uuid4>
func GenerateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// RecordOrder persists the order header plus its items. The total is always
// computed here from the items; caller-supplied totals are ignored. Run it
// inside the caller's transaction so the order and the cart clearing commit
// together.
func RecordOrder(tx *gorm.DB, userID, customerName, email string, items []models.OrderItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	total := 0.0
	for _, item := range items {
		total = models.Round2(total + models.Round2(item.UnitPrice*float64(item.Quantity)))
	}

	order := models.Order{
		OrderRef:     GenerateOrderRef(),
		UserID:       userID,
		CustomerName: customerName,
		Email:        email,
		TotalAmount:  total,
		Items:        items,
		CreatedAt:    time.Now(),
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GET /orders — the requesting user's order history, newest first.
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}
