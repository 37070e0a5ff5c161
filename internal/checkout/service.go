package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/checkout-ecom/internal/order"
	"github.com/MikeMC777/checkout-ecom/internal/shipping"
)

var (
	ErrValidation     = errors.New("checkout: missing required payment fields or cart is empty")
	ErrInvalidPayment = errors.New("checkout: invalid payment signature")
	// ErrPersistence is the reconciliation-gap failure: the processor captured
	// the payment but no local order exists.
	ErrPersistence = errors.New("checkout: failed to store order")
)

type Verifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type Gateway interface {
	CreateShipment(ctx context.Context, o *order.Order, items []order.Item) (string, error)
	OrderStatus(ctx context.Context, shipmentOrderID string) (*shipping.Status, error)
	CancelShipment(ctx context.Context, shipmentOrderID string, refund decimal.Decimal) error
}

type Notifier interface {
	SendOrderConfirmation(o *order.Order, items []order.Item) error
}

// Service drives a verified payment claim through persistence, shipment
// booking and notification, and handles cancellation against the gateway.
type Service struct {
	verifier Verifier
	orders   order.Repository
	gateway  Gateway
	notifier Notifier
	log      *zap.Logger
}

func NewService(verifier Verifier, orders order.Repository, gateway Gateway, notifier Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{verifier: verifier, orders: orders, gateway: gateway, notifier: notifier, log: log}
}

// Result is the consolidated fulfillment outcome. Warnings carry the degraded
// parts (shipment pending, email not sent) of an otherwise accepted order.
type Result struct {
	Order           *order.Order `json:"order"`
	Items           []order.Item `json:"items"`
	ShipmentID      string       `json:"shipment_id,omitempty"`
	AlreadyRecorded bool         `json:"-"`
	Warnings        []string     `json:"warnings,omitempty"`
}

// Fulfill runs the checkout workflow. Verification and persistence failures
// abort with no further side effects; shipment and notification failures
// degrade to warnings because the paid order is already durable.
func (s *Service) Fulfill(ctx context.Context, req *order.CheckoutRequest) (*Result, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" ||
		len(req.CartItems) == 0 || req.UserDetails.Email == "" {
		return nil, ErrValidation
	}

	if !s.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		s.log.Warn("payment signature mismatch",
			zap.String("order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID))
		return nil, ErrInvalidPayment
	}

	o, items := buildOrder(req)
	if !req.TotalAmount.IsZero() && req.TotalAmount.String() != o.TotalAmount {
		// Client-declared total is advisory; the recomputed one is stored.
		s.log.Warn("declared total differs from computed total",
			zap.String("order_id", o.OrderID),
			zap.String("declared", req.TotalAmount.String()),
			zap.String("computed", o.TotalAmount))
	}

	if err := s.orders.Create(ctx, o, items); err != nil {
		if errors.Is(err, order.ErrDuplicate) {
			s.log.Info("duplicate checkout submission ignored",
				zap.String("order_id", o.OrderID))
			return &Result{Order: o, Items: items, AlreadyRecorded: true}, nil
		}
		// Payment is already captured by the processor. Log everything needed
		// for manual reconciliation before surfacing the failure.
		s.log.Error("order persistence failed after captured payment",
			zap.String("order_id", o.OrderID),
			zap.String("payment_id", o.PaymentID),
			zap.String("user_id", o.UserID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	res := &Result{Order: o, Items: items}

	shipmentID, err := s.gateway.CreateShipment(ctx, o, items)
	if err != nil {
		s.log.Error("shipment booking failed, order kept for out-of-band retry",
			zap.String("order_id", o.OrderID),
			zap.Error(err))
		res.Warnings = append(res.Warnings, "shipment booking pending: "+err.Error())
	} else {
		res.ShipmentID = shipmentID
	}

	if err := s.notifier.SendOrderConfirmation(o, items); err != nil {
		s.log.Warn("confirmation email failed",
			zap.String("order_id", o.OrderID),
			zap.Error(err))
		res.Warnings = append(res.Warnings, "confirmation email not sent")
	}

	return res, nil
}

// CancelResult reports a gateway cancellation and the refund it was issued with.
type CancelResult struct {
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Refund  decimal.Decimal `json:"refund_amount"`
}

// Statuses at or past pickup scheduling; logistics cost is already incurred.
var pickupLocked = map[string]bool{
	"Pickup Scheduled": true,
	"Picked Up":        true,
	"Shipped":          true,
	"In Transit":       true,
	"Out For Delivery": true,
	"Delivered":        true,
}

// Cancel fetches live status from the gateway, computes the refundable amount
// and requests cancellation. Before pickup is scheduled the full captured
// amount is refundable; afterwards shipping and package charges are deducted.
// The local order record is not touched; callers that want a local status
// transition use the repository's status update. Cancellation does not
// coordinate with an in-flight checkout for the same order.
func (s *Service) Cancel(ctx context.Context, orderID string) (*CancelResult, error) {
	if orderID == "" {
		return nil, ErrValidation
	}

	st, err := s.gateway.OrderStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch shipment status: %w", err)
	}

	refund := st.TotalAmount
	if pickupLocked[st.Status] {
		refund = st.TotalAmount.Sub(st.ShippingCharges).Sub(st.PackageCharges)
	}

	if err := s.gateway.CancelShipment(ctx, orderID, refund); err != nil {
		return nil, err
	}

	s.log.Info("order canceled",
		zap.String("order_id", orderID),
		zap.String("shipment_status", st.Status),
		zap.String("refund", refund.String()))
	return &CancelResult{OrderID: orderID, Status: st.Status, Refund: refund}, nil
}

// buildOrder turns a verified claim into the persistable order and items.
// Line totals are recomputed as price*quantity; the stored order total is the
// recomputed line sum plus the shipping charge.
func buildOrder(req *order.CheckoutRequest) (*order.Order, []order.Item) {
	country := req.Country
	if country == "" {
		country = "India"
	}
	method := req.PaymentMethod
	if method == "" {
		method = "Prepaid"
	}
	weight := req.Weight
	if weight.IsZero() {
		weight = decimal.RequireFromString("0.5")
	}

	recordID := uuid.NewString()
	items := make([]order.Item, 0, len(req.CartItems))
	lineSum := decimal.Zero
	for _, ci := range req.CartItems {
		qty := ci.Quantity
		if qty < 1 {
			qty = 1
		}
		total := ci.Price.Mul(decimal.NewFromInt(int64(qty)))
		items = append(items, order.Item{
			ID:        uuid.NewString(),
			OrderID:   recordID,
			ProductID: ci.ID,
			Name:      ci.Name,
			Image:     ci.Image,
			Quantity:  qty,
			Price:     ci.Price.String(),
			Total:     total.String(),
		})
		lineSum = lineSum.Add(total)
	}

	o := &order.Order{
		ID:             recordID,
		OrderID:        req.OrderID,
		UserID:         req.UserID,
		CustomerName:   req.UserDetails.Name,
		Email:          req.UserDetails.Email,
		Phone:          req.UserDetails.Phone,
		Address:        req.UserDetails.Address1,
		Address2:       req.UserDetails.Address2,
		City:           req.UserDetails.City,
		State:          req.UserDetails.State,
		Country:        country,
		Pincode:        req.UserDetails.Pincode,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
		PaymentMethod:  method,
		ShippingCharge: req.ShippingCharge.String(),
		TotalAmount:    lineSum.Add(req.ShippingCharge).String(),
		Weight:         weight.String(),
		Status:         order.StatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	return o, items
}
