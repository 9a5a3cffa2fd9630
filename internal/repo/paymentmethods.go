package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// PaymentMethod is an active payment option. Its name drives the
// payment-method discount.
type PaymentMethod struct {
	ID     int64
	Name   string
	Active bool
}

// PaymentMethods reads the payment method catalog.
type PaymentMethods struct {
	Q Querier
}

// Get resolves a payment method by id.
func (r PaymentMethods) Get(ctx context.Context, id int64) (PaymentMethod, bool, error) {
	var m PaymentMethod
	err := r.Q.QueryRow(ctx,
		`SELECT id, name, active FROM payment_methods WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaymentMethod{}, false, nil
	}
	if err != nil {
		return PaymentMethod{}, false, err
	}
	return m, true, nil
}

// ListActive returns every active payment method, for the public listing
// endpoint.
func (r PaymentMethods) ListActive(ctx context.Context) ([]PaymentMethod, error) {
	rows, err := r.Q.Query(ctx, `SELECT id, name, active FROM payment_methods WHERE active = TRUE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []PaymentMethod
	for rows.Next() {
		var m PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Active); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}
