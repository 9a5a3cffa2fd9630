package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lauritienda/backend-tienda/internal/stock"
)

// Stock reads and mutates stock-by-size rows.
type Stock struct {
	Q Querier
}

// Get returns the stock record for a (product, size) pair with the display
// names needed for error reporting.
func (r Stock) Get(ctx context.Context, productID, sizeID int64) (stock.Record, bool, error) {
	const q = `
		SELECT s.product_id, s.size_id, p.name, z.name, s.quantity
		FROM stock s
		JOIN products p ON p.id = s.product_id
		JOIN sizes z ON z.id = s.size_id
		WHERE s.product_id = $1 AND s.size_id = $2`
	var rec stock.Record
	err := r.Q.QueryRow(ctx, q, productID, sizeID).Scan(
		&rec.ProductID, &rec.SizeID, &rec.ProductName, &rec.SizeName, &rec.Quantity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return stock.Record{}, false, nil
	}
	if err != nil {
		return stock.Record{}, false, err
	}
	return rec, true, nil
}

// Decrement subtracts qty from a stock row, refusing to go negative. Called
// by the order approval flow, never by checkout.
func (r Stock) Decrement(ctx context.Context, productID, sizeID int64, qty int) error {
	const q = `
		UPDATE stock SET quantity = quantity - $3
		WHERE product_id = $1 AND size_id = $2 AND quantity >= $3`
	tag, err := r.Q.Exec(ctx, q, productID, sizeID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &stock.InsufficientStockError{ProductID: productID, SizeID: sizeID, Requested: qty}
	}
	return nil
}
