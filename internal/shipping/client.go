package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/checkout-ecom/internal/order"
)

var (
	// ErrAuth means the gateway rejected our credentials; retrying with the
	// same credentials cannot help.
	ErrAuth = errors.New("shipping: authentication failed")
	// ErrRejected carries a provider-side validation message for a shipment
	// the gateway refused to create.
	ErrRejected = errors.New("shipping: order rejected by provider")

	errTokenExpired = errors.New("shipping: token rejected")
)

// Status is the live state of a shipment order at the gateway.
type Status struct {
	Status          string          `json:"status"`
	ShippingCharges decimal.Decimal `json:"shipping_charges"`
	PackageCharges  decimal.Decimal `json:"package_charges"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

type Client struct {
	http     *http.Client
	baseURL  string
	email    string
	password string
	tokens   *TokenCache
	tokenTTL time.Duration
	log      *zap.Logger
}

func NewClient(baseURL, email, password string, tokens *TokenCache, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if tokens == nil {
		tokens = NewTokenCache()
	}
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		tokens:   tokens,
		// Provider tokens are valid for days; refreshMargin covers drift.
		tokenTTL: 9 * 24 * time.Hour,
		log:      log,
	}
}

// Token returns the cached access token, logging in through singleflight when
// it is missing or about to expire.
func (c *Client) Token(ctx context.Context) (string, error) {
	if t, ok := c.tokens.get(); ok {
		return t, nil
	}
	v, err, _ := c.tokens.group.Do("login", func() (interface{}, error) {
		// Another caller may have refreshed while we waited for the flight.
		if t, ok := c.tokens.get(); ok {
			return t, nil
		}
		return c.login(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	var token string
	op := func() error {
		body, err := json.Marshal(map[string]string{"email": c.email, "password": c.password})
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/external/auth/login", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("shipping login: %s", res.Status)
		}
		if res.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrAuth, res.Status))
		}
		var out struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("shipping login: decode response: %w", err))
		}
		if out.Token == "" {
			return backoff.Permanent(fmt.Errorf("%w: empty token in response", ErrAuth))
		}
		token = out.Token
		return nil
	}
	if err := backoff.Retry(op, c.retryPolicy(ctx)); err != nil {
		return "", err
	}
	c.tokens.set(token, c.tokenTTL)
	c.log.Info("shipping token refreshed")
	return token, nil
}

// CreateShipment books an adhoc shipment order for a persisted order. A 401
// invalidates the cached token and the attempt is retried with a fresh login;
// provider-side validation errors surface as ErrRejected and are not retried.
func (c *Client) CreateShipment(ctx context.Context, o *order.Order, items []order.Item) (string, error) {
	type shipmentItem struct {
		Name         string `json:"name"`
		SKU          string `json:"sku"`
		Units        int    `json:"units"`
		SellingPrice string `json:"selling_price"`
	}
	sitems := make([]shipmentItem, 0, len(items))
	subTotal := decimal.Zero
	for _, it := range items {
		sitems = append(sitems, shipmentItem{
			Name:         it.Name,
			SKU:          it.ProductID,
			Units:        it.Quantity,
			SellingPrice: it.Price,
		})
		if lt, err := decimal.NewFromString(it.Total); err == nil {
			subTotal = subTotal.Add(lt)
		}
	}
	payload := map[string]interface{}{
		"order_id":              o.OrderID,
		"order_date":            o.CreatedAt.Format("2006-01-02 15:04"),
		"billing_customer_name": o.CustomerName,
		"billing_last_name":     "",
		"billing_address":       o.Address,
		"billing_address_2":     o.Address2,
		"billing_city":          o.City,
		"billing_pincode":       o.Pincode,
		"billing_state":         o.State,
		"billing_country":       o.Country,
		"billing_email":         o.Email,
		"billing_phone":         o.Phone,
		"shipping_is_billing":   true,
		"order_items":           sitems,
		"payment_method":        o.PaymentMethod,
		"shipping_charges":      o.ShippingCharge,
		"sub_total":             subTotal.String(),
		"weight":                o.Weight,
	}

	var out struct {
		OrderID    json.Number `json:"order_id"`
		ShipmentID json.Number `json:"shipment_id"`
		Message    string      `json:"message"`
	}
	op := func() error {
		token, err := c.Token(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		res, err := c.post(ctx, "/v1/external/orders/create/adhoc", token, payload)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		switch {
		case res.StatusCode == http.StatusUnauthorized:
			c.tokens.invalidate(token)
			return errTokenExpired // retry logs in again
		case res.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("shipping create: %s", res.Status)
		case res.StatusCode >= http.StatusBadRequest:
			var body struct {
				Message string `json:"message"`
			}
			_ = json.NewDecoder(res.Body).Decode(&body)
			if body.Message == "" {
				body.Message = res.Status
			}
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrRejected, body.Message))
		}
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("shipping create: decode response: %w", err))
		}
		return nil
	}
	if err := backoff.Retry(op, c.retryPolicy(ctx)); err != nil {
		return "", err
	}
	shipmentID := out.ShipmentID.String()
	c.log.Info("shipment booked",
		zap.String("order_id", o.OrderID),
		zap.String("shipment_id", shipmentID))
	return shipmentID, nil
}

// OrderStatus fetches live status and charges for a shipment order.
func (c *Client) OrderStatus(ctx context.Context, shipmentOrderID string) (*Status, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/external/orders/"+shipmentOrderID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shipping status %s: %s", shipmentOrderID, res.Status)
	}
	var out struct {
		Data Status `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("shipping status: decode response: %w", err)
	}
	return &out.Data, nil
}

// CancelShipment asks the gateway to cancel a shipment order, declaring the
// refund amount computed by the caller.
func (c *Client) CancelShipment(ctx context.Context, shipmentOrderID string, refund decimal.Decimal) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}
	res, err := c.post(ctx, "/v1/external/cancel/order", token, map[string]interface{}{
		"order_id":      shipmentOrderID,
		"refund_amount": json.Number(refund.String()),
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(res.Body).Decode(&out)
	if res.StatusCode >= http.StatusMultipleChoices || out.Status != "success" {
		if out.Message == "" {
			out.Message = res.Status
		}
		return fmt.Errorf("%w: %s", ErrRejected, out.Message)
	}
	c.log.Info("shipment canceled",
		zap.String("order_id", shipmentOrderID),
		zap.String("refund", refund.String()))
	return nil
}

func (c *Client) post(ctx context.Context, path, token string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return c.http.Do(req)
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, 2), ctx)
}
