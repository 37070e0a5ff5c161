package order

import "github.com/shopspring/decimal"

// UserDetails is the shipping contact submitted with a checkout.
// swagger:model UserDetails
type UserDetails struct {
	Name     string `json:"name"     example:"Asha Raman"`
	Email    string `json:"email"    example:"asha@example.com"`
	Phone    string `json:"phone"    example:"9876543210"`
	Address1 string `json:"address1" example:"12 Gandhi Road"`
	Address2 string `json:"address2" example:"2nd floor"`
	City     string `json:"city"     example:"Chennai"`
	State    string `json:"state"    example:"Tamil Nadu"`
	Pincode  string `json:"pincode"  example:"600001"`
}

// CartItem is one submitted cart line.
// swagger:model CartItem
type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"    example:"499.00"`
	Quantity int             `json:"quantity" example:"2"`
}

// CheckoutRequest is the payment claim plus order details. TotalAmount,
// Weight and ShippingCharge are client-declared and advisory only: line
// totals are recomputed server-side and the processor settles whatever it
// actually captured.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	OrderID        string          `json:"order_id"`
	PaymentID      string          `json:"payment_id"`
	Signature      string          `json:"signature"`
	UserDetails    UserDetails     `json:"userDetails"`
	Country        string          `json:"country"`
	PaymentMethod  string          `json:"payment_method"`
	ShippingCharge decimal.Decimal `json:"shipping_charges"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Weight         decimal.Decimal `json:"weight"`
	CartItems      []CartItem      `json:"cartItems"`
	UserID         string          `json:"user"`
}
