package checkoutControllers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KvonR/EccomPy/config"
	"github.com/KvonR/EccomPy/models"
	"github.com/KvonR/EccomPy/payment"
)

type fakeProvider struct {
	created     []payment.LineItem
	successURL  string
	retrieveErr error
	payerEmail  string
	payerName   string
}

func (f *fakeProvider) CreateCheckoutSession(items []payment.LineItem, successURL, cancelURL string) (*payment.Session, error) {
	f.created = items
	f.successURL = successURL
	sess := &payment.Session{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}
	return sess, nil
}

func (f *fakeProvider) RetrieveCheckoutSession(id string) (*payment.Session, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	sess := &payment.Session{ID: id, PaymentStatus: "paid"}
	sess.CustomerDetails.Email = f.payerEmail
	sess.CustomerDetails.Name = f.payerName
	return sess, nil
}

type fakeMailer struct {
	sent []*models.Order
	err  error
}

func (f *fakeMailer) SendOrderConfirmation(order *models.Order) error {
	f.sent = append(f.sent, order)
	return f.err
}

func setupHandler(t *testing.T) (*Handler, *gorm.DB, *fakeProvider, *fakeMailer) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.CartItem{},
		&models.CheckoutSession{}, &models.CheckoutLine{},
		&models.Order{}, &models.OrderItem{},
	))

	provider := &fakeProvider{payerEmail: "ada@example.com", payerName: "Ada"}
	m := &fakeMailer{}
	cfg := &config.Config{
		Currency:   "usd",
		SuccessURL: "http://localhost:8080/success",
		CancelURL:  "http://localhost:8080/cancel",
	}
	return NewHandler(db, provider, m, cfg, zap.NewNop()), db, provider, m
}

func seedCart(t *testing.T, db *gorm.DB, userID string) (models.Product, models.Product) {
	t.Helper()
	widget := models.Product{Name: "Widget", Price: 10.00, Stock: 5}
	gadget := models.Product{Name: "Gadget", Price: 5.50, Stock: 3}
	require.NoError(t, db.Create(&widget).Error)
	require.NoError(t, db.Create(&gadget).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: userID, ProductID: widget.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: userID, ProductID: gadget.ID, Quantity: 1}).Error)
	return widget, gadget
}

func TestCreateSession_EmptyCart(t *testing.T) {
	h, _, _, _ := setupHandler(t)

	_, err := h.createSession("nobody")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateSession_BuildsMinorUnitLinesAndSnapshot(t *testing.T) {
	h, db, provider, _ := setupHandler(t)
	seedCart(t, db, "u1")

	sess, err := h.createSession("u1")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://pay.example.com/cs_test_1", sess.URL)
	assert.Contains(t, provider.successURL, "session_id={CHECKOUT_SESSION_ID}")

	require.Len(t, provider.created, 2)
	assert.Equal(t, int64(1000), provider.created[0].UnitAmount)
	assert.Equal(t, 2, provider.created[0].Quantity)
	assert.Equal(t, int64(550), provider.created[1].UnitAmount)

	var snapshot models.CheckoutSession
	require.NoError(t, db.Preload("Lines").Where("session_id = ?", "cs_test_1").First(&snapshot).Error)
	assert.Equal(t, "u1", snapshot.UserID)
	assert.InDelta(t, 25.50, snapshot.Amount, 0.001)
	assert.Len(t, snapshot.Lines, 2)

	// Session creation performs no local cart mutation.
	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", "u1").Count(&cartCount)
	assert.EqualValues(t, 2, cartCount)
}

func TestCreateSession_OutOfStock(t *testing.T) {
	h, db, _, _ := setupHandler(t)
	widget := models.Product{Name: "Widget", Price: 10.00, Stock: 1}
	require.NoError(t, db.Create(&widget).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: "u1", ProductID: widget.ID, Quantity: 2}).Error)

	_, err := h.createSession("u1")
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestConfirm_CreatesOrderClearsCartAtomically(t *testing.T) {
	h, db, _, m := setupHandler(t)
	widget, gadget := seedCart(t, db, "u1")

	_, err := h.createSession("u1")
	require.NoError(t, err)

	order, err := h.confirm("cs_test_1", "u1")
	require.NoError(t, err)

	assert.InDelta(t, 25.50, order.TotalAmount, 0.001)
	assert.Equal(t, "ada@example.com", order.Email)
	assert.Equal(t, "Ada", order.CustomerName)
	require.Len(t, order.Items, 2)

	// Exactly one order with N items, N = distinct products in the cart.
	var orderCount, itemCount, cartCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	db.Model(&models.CartItem{}).Where("user_id = ?", "u1").Count(&cartCount)
	assert.EqualValues(t, 1, orderCount)
	assert.EqualValues(t, 2, itemCount)
	assert.EqualValues(t, 0, cartCount)

	// Stock decremented by the charged quantities.
	var w, g models.Product
	require.NoError(t, db.First(&w, widget.ID).Error)
	require.NoError(t, db.First(&g, gadget.ID).Error)
	assert.Equal(t, 3, w.Stock)
	assert.Equal(t, 2, g.Stock)

	// Confirmation mail went out with the recorded order.
	require.Len(t, m.sent, 1)
	assert.Equal(t, order.OrderRef, m.sent[0].OrderRef)
}

func TestConfirm_UsesSnapshotNotLiveCart(t *testing.T) {
	h, db, _, _ := setupHandler(t)
	widget, _ := seedCart(t, db, "u1")

	_, err := h.createSession("u1")
	require.NoError(t, err)

	// Cart changes while the shopper is on the hosted payment page.
	require.NoError(t, db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", "u1", widget.ID).
		Update("quantity", 10).Error)

	order, err := h.confirm("cs_test_1", "u1")
	require.NoError(t, err)

	// The order reflects what was charged, not the edited cart.
	assert.InDelta(t, 25.50, order.TotalAmount, 0.001)
	for _, item := range order.Items {
		if item.ProductID == widget.ID {
			assert.Equal(t, 2, item.Quantity)
		}
	}
}

func TestConfirm_ReplayRejected(t *testing.T) {
	h, db, _, _ := setupHandler(t)
	seedCart(t, db, "u1")

	_, err := h.createSession("u1")
	require.NoError(t, err)
	_, err = h.confirm("cs_test_1", "u1")
	require.NoError(t, err)

	// The snapshot was consumed; a replay must not create a second order.
	_, err = h.confirm("cs_test_1", "u1")
	assert.ErrorIs(t, err, ErrInvalidSession)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.EqualValues(t, 1, orderCount)
}

func TestConfirm_MissingEmailIsInvalidSession(t *testing.T) {
	h, db, provider, _ := setupHandler(t)
	seedCart(t, db, "u1")
	provider.payerEmail = ""

	_, err := h.createSession("u1")
	require.NoError(t, err)
	_, err = h.confirm("cs_test_1", "u1")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestConfirm_UnretrievableSessionIsInvalid(t *testing.T) {
	h, db, provider, _ := setupHandler(t)
	seedCart(t, db, "u1")
	provider.retrieveErr = errors.New("provider down")

	_, err := h.confirm("cs_unknown", "u1")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestConfirm_WrongUserRejected(t *testing.T) {
	h, db, _, _ := setupHandler(t)
	seedCart(t, db, "u1")

	_, err := h.createSession("u1")
	require.NoError(t, err)

	_, err = h.confirm("cs_test_1", "someone-else")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestConfirm_MailFailureDoesNotFailOrder(t *testing.T) {
	h, db, _, m := setupHandler(t)
	seedCart(t, db, "u1")
	m.err = errors.New("smtp down")

	_, err := h.createSession("u1")
	require.NoError(t, err)

	order, err := h.confirm("cs_test_1", "u1")
	require.NoError(t, err)
	assert.NotNil(t, order)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.EqualValues(t, 1, orderCount)
}
