package checkoutControllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/config"
	cartControllers "github.com/KvonR/EccomPy/controllers/cart"
	orderControllers "github.com/KvonR/EccomPy/controllers/order"
	"github.com/KvonR/EccomPy/middleware"
	"github.com/KvonR/EccomPy/models"
	"github.com/KvonR/EccomPy/payment"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidSession = errors.New("invalid checkout session")
	ErrOutOfStock     = errors.New("insufficient stock")
)

// PaymentProvider is the hosted-payment-page surface the orchestrator needs.
type PaymentProvider interface {
	CreateCheckoutSession(items []payment.LineItem, successURL, cancelURL string) (*payment.Session, error)
	RetrieveCheckoutSession(id string) (*payment.Session, error)
}

// ConfirmationSender dispatches the post-purchase email. Best-effort only.
type ConfirmationSender interface {
	SendOrderConfirmation(order *models.Order) error
}

type Handler struct {
	db       *gorm.DB
	provider PaymentProvider
	mailer   ConfirmationSender
	cfg      *config.Config
	logger   *zap.Logger
}

func NewHandler(db *gorm.DB, provider PaymentProvider, mailer ConfirmationSender, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{db: db, provider: provider, mailer: mailer, cfg: cfg, logger: logger}
}

// POST /checkout
//
// Reads the cart, creates a provider session and persists a snapshot of the
// charged lines keyed by the session id. No cart mutation happens here; the
// shopper is redirected to the provider's hosted page.
func (h *Handler) CreateSession(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sess, err := h.createSession(userID)
	switch {
	case errors.Is(err, ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
	case errors.Is(err, ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrProvider):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"session_id":   sess.ID,
			"redirect_url": sess.URL,
		})
	}
}

// GET /success?session_id=...
func (h *Handler) Success(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	order, err := h.confirm(sessionID, userID)
	switch {
	case errors.Is(err, ErrInvalidSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment session could not be verified"})
	case errors.Is(err, ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm order"})
	default:
		c.JSON(http.StatusOK, order)
	}
}

// GET /cancel
func (h *Handler) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Payment cancelled"})
}

func (h *Handler) createSession(userID string) (*payment.Session, error) {
	items, err := cartControllers.CartLines(h.db, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lineItems := make([]payment.LineItem, 0, len(items))
	total := 0.0
	for _, item := range items {
		if item.Product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, item.Product.Name)
		}
		lineItems = append(lineItems, payment.LineItem{
			Name:       item.Product.Name,
			UnitAmount: models.Cents(item.Product.Price),
			Quantity:   item.Quantity,
		})
		total = models.Round2(total + item.Subtotal())
	}

	successURL := h.cfg.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"
	sess, err := h.provider.CreateCheckoutSession(lineItems, successURL, h.cfg.CancelURL)
	if err != nil {
		return nil, err
	}

	// Snapshot what was actually sent to the provider. Confirmation reads this
	// snapshot, never the live cart, so the recorded order always matches the
	// charged amount.
	snapshot := models.CheckoutSession{
		SessionID: sess.ID,
		UserID:    userID,
		Amount:    total,
		Currency:  h.cfg.Currency,
		CreatedAt: time.Now(),
	}
	for _, item := range items {
		snapshot.Lines = append(snapshot.Lines, models.CheckoutLine{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
		})
	}
	if err := h.db.Create(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("persisting checkout snapshot: %w", err)
	}

	h.logger.Info("checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID),
		zap.Float64("amount", total))
	return sess, nil
}

func (h *Handler) confirm(sessionID, userID string) (*models.Order, error) {
	sess, err := h.provider.RetrieveCheckoutSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	email := sess.CustomerDetails.Email
	if email == "" {
		return nil, fmt.Errorf("%w: no payer email", ErrInvalidSession)
	}

	var snapshot models.CheckoutSession
	err = h.db.Preload("Lines").
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown session, or one already consumed by an earlier confirm.
			return nil, fmt.Errorf("%w: no snapshot for session", ErrInvalidSession)
		}
		return nil, err
	}

	var order *models.Order
	err = h.db.Transaction(func(tx *gorm.DB) error {
		orderItems := make([]models.OrderItem, 0, len(snapshot.Lines))
		for _, line := range snapshot.Lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrOutOfStock, line.ProductName)
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
			})
		}

		order, err = orderControllers.RecordOrder(tx, userID, sess.CustomerDetails.Name, email, orderItems)
		if err != nil {
			return err
		}

		// Cart clearing commits with the order: a failure anywhere in this
		// transaction leaves both untouched.
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		// Consuming the snapshot here is what rejects a replayed confirm.
		if err := tx.Where("checkout_session_id = ?", snapshot.ID).Delete(&models.CheckoutLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&snapshot).Error
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("order confirmed",
		zap.String("order_ref", order.OrderRef),
		zap.String("user_id", userID),
		zap.Float64("total", order.TotalAmount))

	if h.mailer != nil {
		if err := h.mailer.SendOrderConfirmation(order); err != nil {
			h.logger.Warn("confirmation email failed", zap.String("order_ref", order.OrderRef), zap.Error(err))
		}
	}
	orderControllers.BroadcastNewOrder(order)

	return order, nil
}
