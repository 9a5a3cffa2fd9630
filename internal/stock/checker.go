package stock

import (
	"context"
	"errors"
	"fmt"
)

// ErrInsufficientStock is the sentinel matched by errors.Is for any
// InsufficientStockError.
var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError names the product and size that could not cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID   int64
	SizeID      int64
	ProductName string
	SizeName    string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	product := e.ProductName
	if product == "" {
		product = fmt.Sprintf("product %d", e.ProductID)
	}
	size := e.SizeName
	if size == "" {
		size = fmt.Sprintf("size %d", e.SizeID)
	}
	return fmt.Sprintf("insufficient stock: %s (%s) requested %d, available %d",
		product, size, e.Requested, e.Available)
}

// Is matches the package sentinel so callers can branch without type asserts.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Record is the stock-by-size row for one (product, size) pair.
type Record struct {
	ProductID   int64
	SizeID      int64
	ProductName string
	SizeName    string
	Quantity    int
}

// Repo reads stock records. Decrement exists for the approval collaborator;
// checkout never calls it.
type Repo interface {
	Get(ctx context.Context, productID, sizeID int64) (Record, bool, error)
	Decrement(ctx context.Context, productID, sizeID int64, qty int) error
}

// Checker validates requested quantities against current stock. Read-only:
// stock is decremented later, when an order is approved.
type Checker struct {
	Repo Repo
}

// Ensure confirms the (product, size) pair has at least qty units free. A
// missing record counts as zero availability.
func (c Checker) Ensure(ctx context.Context, productID, sizeID int64, qty int) error {
	rec, found, err := c.Repo.Get(ctx, productID, sizeID)
	if err != nil {
		return err
	}
	if !found {
		return &InsufficientStockError{
			ProductID: productID,
			SizeID:    sizeID,
			Requested: qty,
		}
	}
	if rec.Quantity < qty {
		return &InsufficientStockError{
			ProductID:   productID,
			SizeID:      sizeID,
			ProductName: rec.ProductName,
			SizeName:    rec.SizeName,
			Requested:   qty,
			Available:   rec.Quantity,
		}
	}
	return nil
}
