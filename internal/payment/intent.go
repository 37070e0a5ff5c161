package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Intent is the processor-created order handle the storefront pays against.
// swagger:model PaymentIntent
type Intent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type Client struct {
	rz  *razorpay.Client
	log *zap.Logger
}

func NewClient(keyID, keySecret string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{rz: razorpay.NewClient(keyID, keySecret), log: log}
}

// CreateIntent creates a processor order for the given amount in major
// currency units. The SDK carries no context support; ctx is accepted for
// interface symmetry with the other gateway calls.
func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal) (*Intent, error) {
	_ = ctx
	paise := amount.Mul(decimal.NewFromInt(100)).IntPart()
	receipt := "rcpt_" + uuid.NewString()[:8]

	body, err := c.rz.Order.Create(map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	out := &Intent{Amount: paise, Currency: "INR", Receipt: receipt}
	if id, ok := body["id"].(string); ok {
		out.ID = id
	}
	if cur, ok := body["currency"].(string); ok {
		out.Currency = cur
	}
	c.log.Info("payment intent created",
		zap.String("intent_id", out.ID),
		zap.Int64("amount_minor", paise))
	return out, nil
}
