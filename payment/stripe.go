package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KvonR/EccomPy/config"
)

// ErrProvider wraps any failure talking to the payment provider.
var ErrProvider = errors.New("payment provider error")

// LineItem is one charged line, in minor currency units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// Session is the subset of a Stripe Checkout Session this service reads.
type Session struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	PaymentStatus   string `json:"payment_status"`
	CustomerDetails struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer_details"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Stripe Checkout REST API. The base URL is configurable
// so tests can point it at a local server.
type Client struct {
	apiBase   string
	secretKey string
	currency  string
	http      *http.Client
	logger    *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		apiBase:   strings.TrimRight(cfg.StripeAPIBase, "/"),
		secretKey: cfg.StripeSecretKey,
		currency:  cfg.Currency,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
	}
}

// CreateCheckoutSession requests a hosted payment page for the given lines and
// returns the session id plus the redirect URL.
func (c *Client) CreateCheckoutSession(items []LineItem, successURL, cancelURL string) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", c.currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	var sess Session
	if err := c.do(http.MethodPost, "/v1/checkout/sessions", form, &sess); err != nil {
		return nil, err
	}
	if sess.URL == "" {
		return nil, fmt.Errorf("%w: empty redirect URL", ErrProvider)
	}
	return &sess, nil
}

// RetrieveCheckoutSession fetches a session after the shopper is redirected
// back, primarily for the payer email.
func (c *Client) RetrieveCheckoutSession(id string) (*Session, error) {
	var sess Session
	if err := c.do(http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) do(method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, c.apiBase+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			c.logger.Warn("provider rejected request",
				zap.Int("status", resp.StatusCode),
				zap.String("code", apiErr.Error.Code))
			return fmt.Errorf("%w: %s", ErrProvider, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrProvider, err)
	}
	return nil
}
