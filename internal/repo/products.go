package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// PricedProduct is the catalog view checkout and shipping need: the current
// effective price snapshot plus category for discount and parcel heuristics.
type PricedProduct struct {
	ID           int64
	Name         string
	Price        int64
	CategoryID   int64
	CategoryName string
}

// Products reads the catalog collaborator's product data.
type Products struct {
	Q Querier
}

// Get returns the priced product, reporting absence instead of erroring so
// callers can decide whether a missing reference is fatal.
func (r Products) Get(ctx context.Context, productID int64) (PricedProduct, bool, error) {
	const q = `
		SELECT p.id, p.name, p.price, p.category_id, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	var p PricedProduct
	err := r.Q.QueryRow(ctx, q, productID).Scan(&p.ID, &p.Name, &p.Price, &p.CategoryID, &p.CategoryName)
	if errors.Is(err, pgx.ErrNoRows) {
		return PricedProduct{}, false, nil
	}
	if err != nil {
		return PricedProduct{}, false, err
	}
	return p, true, nil
}
