package orderControllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}))
	return db
}

func TestRecordOrder_ComputesTotalFromItems(t *testing.T) {
	db := setupDB(t)

	items := []models.OrderItem{
		{ProductID: 1, ProductName: "Widget", UnitPrice: 10.00, Quantity: 2},
		{ProductID: 2, ProductName: "Gadget", UnitPrice: 5.50, Quantity: 1},
	}
	order, err := RecordOrder(db, "u1", "Ada", "ada@example.com", items)
	require.NoError(t, err)

	assert.InDelta(t, 25.50, order.TotalAmount, 0.001)
	assert.NotEmpty(t, order.OrderRef)

	var stored models.Order
	require.NoError(t, db.Preload("Items").First(&stored, order.ID).Error)
	assert.Len(t, stored.Items, 2)
	assert.InDelta(t, 25.50, stored.TotalAmount, 0.001)
}

func TestRecordOrder_RejectsEmptyItems(t *testing.T) {
	db := setupDB(t)

	_, err := RecordOrder(db, "u1", "Ada", "ada@example.com", nil)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestRecordOrder_UniqueRefs(t *testing.T) {
	db := setupDB(t)
	items := []models.OrderItem{{ProductID: 1, ProductName: "Widget", UnitPrice: 1.00, Quantity: 1}}

	a, err := RecordOrder(db, "u1", "", "a@example.com", items)
	require.NoError(t, err)
	b, err := RecordOrder(db, "u1", "", "a@example.com",
		[]models.OrderItem{{ProductID: 1, ProductName: "Widget", UnitPrice: 1.00, Quantity: 1}})
	require.NoError(t, err)

	assert.NotEqual(t, a.OrderRef, b.OrderRef)
}

func TestGetUserOrders_NewestFirstOwnOnly(t *testing.T) {
	db := setupDB(t)
	now := time.Now()

	older := models.Order{OrderRef: "ref-old", UserID: "u1", Email: "a@example.com", TotalAmount: 1, CreatedAt: now.Add(-time.Hour)}
	newer := models.Order{OrderRef: "ref-new", UserID: "u1", Email: "a@example.com", TotalAmount: 2, CreatedAt: now}
	other := models.Order{OrderRef: "ref-other", UserID: "u2", Email: "b@example.com", TotalAmount: 3, CreatedAt: now}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&other).Error)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/orders", func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Next()
	}, GetUserOrdersHandler(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	assert.Equal(t, "ref-new", orders[0].OrderRef)
	assert.Equal(t, "ref-old", orders[1].OrderRef)
}
