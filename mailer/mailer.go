package mailer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/KvonR/EccomPy/config"
	"github.com/KvonR/EccomPy/models"
)

// Dialer is the part of gomail.Dialer the mailer needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends order confirmation emails. Delivery is best-effort: callers
// log failures and never fail the order on them.
type Mailer struct {
	dialer Dialer
	from   string
	logger *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
		logger: logger,
	}
}

// NewWithDialer is used by tests to substitute the SMTP transport.
func NewWithDialer(d Dialer, from string, logger *zap.Logger) *Mailer {
	return &Mailer{dialer: d, from: from, logger: logger}
}

// SendOrderConfirmation emails an itemized plain-text summary to the payer.
func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	if order.Email == "" {
		return fmt.Errorf("order %s has no recipient email", order.OrderRef)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Order confirmation %s", order.OrderRef))
	msg.SetBody("text/plain", confirmationBody(order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending confirmation for order %s: %w", order.OrderRef, err)
	}
	m.logger.Info("confirmation email sent",
		zap.String("order_ref", order.OrderRef),
		zap.String("to", order.Email))
	return nil
}

func confirmationBody(order *models.Order) string {
	var b strings.Builder
	name := order.CustomerName
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your purchase! Your order %s is confirmed.\n\n", name, order.OrderRef)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s @ %.2f = %.2f\n",
			item.Quantity, item.ProductName, item.UnitPrice,
			models.Round2(item.UnitPrice*float64(item.Quantity)))
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n", order.TotalAmount)
	return b.String()
}
