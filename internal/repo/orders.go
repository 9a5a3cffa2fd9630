package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Order is the persisted checkout result.
type Order struct {
	ID              int64
	Code            string
	CustomerName    string
	Email           string
	Phone           string
	Address         string
	PostalCode      string
	PaymentMethodID int64
	CouponID        *int64
	Subtotal        int64
	Discount        int64
	ShippingCost    int64
	Total           int64
	Status          string
	CreatedAt       time.Time
}

// OrderLine is one immutable priced line of an order.
type OrderLine struct {
	OrderID   int64
	ProductID int64
	SizeID    int64
	Qty       int
	UnitPrice int64
	Discount  int64
	Subtotal  int64
}

// Orders persists orders and backs the order code generator's reads.
type Orders struct {
	Q Querier
}

// LastCode returns the most recently assigned order code.
func (r Orders) LastCode(ctx context.Context) (string, bool, error) {
	var code string
	err := r.Q.QueryRow(ctx, `SELECT code FROM orders ORDER BY id DESC LIMIT 1`).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

// CodeExists reports whether an order already uses the candidate code.
func (r Orders) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.Q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// Insert persists the order header and returns its id. The code column's
// unique constraint is the hard backstop behind generator collisions.
func (r Orders) Insert(ctx context.Context, o Order) (int64, error) {
	const q = `
		INSERT INTO orders (
			code, customer_name, email, phone, address, postal_code,
			payment_method_id, coupon_id, subtotal, discount, shipping_cost,
			total, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	var id int64
	err := r.Q.QueryRow(ctx, q,
		o.Code, o.CustomerName, o.Email, o.Phone, o.Address, o.PostalCode,
		o.PaymentMethodID, o.CouponID, o.Subtotal, o.Discount, o.ShippingCost,
		o.Total, o.Status,
	).Scan(&id)
	return id, err
}

// InsertLine persists one order line.
func (r Orders) InsertLine(ctx context.Context, l OrderLine) error {
	const q = `
		INSERT INTO order_lines (
			order_id, product_id, size_id, quantity, unit_price, discount, subtotal
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.Q.Exec(ctx, q,
		l.OrderID, l.ProductID, l.SizeID, l.Qty, l.UnitPrice, l.Discount, l.Subtotal,
	)
	return err
}

// GetByCode loads an order header with its lines, for the order lookup
// endpoint.
func (r Orders) GetByCode(ctx context.Context, code string) (Order, []OrderLine, bool, error) {
	const q = `
		SELECT id, code, customer_name, email, phone, address, postal_code,
		       payment_method_id, coupon_id, subtotal, discount, shipping_cost,
		       total, status, created_at
		FROM orders WHERE code = $1`
	var o Order
	err := r.Q.QueryRow(ctx, q, code).Scan(
		&o.ID, &o.Code, &o.CustomerName, &o.Email, &o.Phone, &o.Address, &o.PostalCode,
		&o.PaymentMethodID, &o.CouponID, &o.Subtotal, &o.Discount, &o.ShippingCost,
		&o.Total, &o.Status, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, nil, false, nil
	}
	if err != nil {
		return Order{}, nil, false, err
	}

	rows, err := r.Q.Query(ctx, `
		SELECT order_id, product_id, size_id, quantity, unit_price, discount, subtotal
		FROM order_lines WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return Order{}, nil, false, err
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.SizeID, &l.Qty, &l.UnitPrice, &l.Discount, &l.Subtotal); err != nil {
			return Order{}, nil, false, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return Order{}, nil, false, err
	}
	return o, lines, true, nil
}
