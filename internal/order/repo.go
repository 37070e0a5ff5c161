package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicate means the processor order id was already recorded; the
	// earlier fulfillment stands and nothing was inserted.
	ErrDuplicate = errors.New("order already recorded")
)

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, []Item, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create inserts the order header and all line items in one transaction.
// Header insert is ON CONFLICT DO NOTHING on the processor order id, so a
// retried submission surfaces as ErrDuplicate instead of a second order.
// Items go through a single batch; any failure rolls back everything.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    INSERT INTO orders (
      id, order_id, user_id, customer_name, email, phone,
      address, address2, city, state, country, pincode,
      payment_id, signature, payment_method,
      shipping_charges, total_amount, weight, status,
      created_at, updated_at
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW(),NOW())
    ON CONFLICT (order_id) DO NOTHING
  `, o.ID, o.OrderID, o.UserID, o.CustomerName, o.Email, o.Phone,
		o.Address, o.Address2, o.City, o.State, o.Country, o.Pincode,
		o.PaymentID, o.Signature, o.PaymentMethod,
		o.ShippingCharge, o.TotalAmount, o.Weight, o.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}

	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(`
      INSERT INTO order_items (id, order_id, product_id, name, image, quantity, price, total_amount)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, it.ID, o.ID, it.ProductID, it.Name, it.Image, it.Quantity, it.Price, it.Total)
	}
	br := tx.SendBatch(ctx, b)
	for range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, []Item, error) {
	var o Order
	err := r.db.QueryRow(ctx, `
    SELECT id, order_id, user_id, customer_name, email, phone,
           address, address2, city, state, country, pincode,
           payment_id, payment_method,
           shipping_charges::text, total_amount::text, weight::text, status,
           created_at, updated_at
    FROM orders WHERE id::text=$1 OR order_id=$1
  `, id).Scan(&o.ID, &o.OrderID, &o.UserID, &o.CustomerName, &o.Email, &o.Phone,
		&o.Address, &o.Address2, &o.City, &o.State, &o.Country, &o.Pincode,
		&o.PaymentID, &o.PaymentMethod,
		&o.ShippingCharge, &o.TotalAmount, &o.Weight, &o.Status,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	items, err := r.GetItems(ctx, o.ID)
	if err != nil {
		return nil, nil, err
	}
	return &o, items, nil
}

// ListByUser returns the user's orders, newest first. No orders is a valid
// empty result, never an error.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, user_id, customer_name, email, phone,
           address, address2, city, state, country, pincode,
           payment_id, payment_method,
           shipping_charges::text, total_amount::text, weight::text, status,
           created_at, updated_at
    FROM orders WHERE user_id=$1
    ORDER BY created_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderID, &o.UserID, &o.CustomerName, &o.Email, &o.Phone,
			&o.Address, &o.Address2, &o.City, &o.State, &o.Country, &o.Pincode,
			&o.PaymentID, &o.PaymentMethod,
			&o.ShippingCharge, &o.TotalAmount, &o.Weight, &o.Status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT id, order_id, product_id, name, image, quantity, price::text, total_amount::text
    FROM order_items WHERE order_id=$1
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Image, &it.Quantity, &it.Price, &it.Total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders
    SET status = $2, updated_at = NOW()
    WHERE id::text = $1 OR order_id = $1
  `, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
