package order

import "time"

// Valid local order statuses. Cancellation against the shipment gateway does
// not transition these automatically; callers use the status endpoint.
const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCanceled  = "canceled"
)

type Order struct {
	ID string `json:"id"`
	// OrderID is the processor-assigned payment-order identifier; unique,
	// and the deduplication key for repeated submissions.
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	CustomerName   string    `json:"customer_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	Address2       string    `json:"address2,omitempty"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Country        string    `json:"country"`
	Pincode        string    `json:"pincode"`
	PaymentID      string    `json:"payment_id"`
	Signature      string    `json:"-"`
	PaymentMethod  string    `json:"payment_method"` // Prepaid | COD
	ShippingCharge string    `json:"shipping_charges"`
	TotalAmount    string    `json:"total_amount"` // NUMERIC -> string
	Weight         string    `json:"weight"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Item struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"` // parent order record id
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`        // NUMERIC -> string
	Total     string `json:"total_amount"` // price * quantity
}
