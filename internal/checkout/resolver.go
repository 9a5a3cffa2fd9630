package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/lauritienda/backend-tienda/internal/promo"
	"github.com/lauritienda/backend-tienda/internal/repo"
	"github.com/lauritienda/backend-tienda/internal/shipping"
)

// ProductReader resolves a product's current price and category.
type ProductReader interface {
	Get(ctx context.Context, id int64) (repo.PricedProduct, bool, error)
}

// PromotionReader lists the active non-coupon promotions.
type PromotionReader interface {
	Active(ctx context.Context, now time.Time) ([]promo.Promotion, error)
}

// CartLoader resolves client cart references against the catalog so the
// shipping quoter works with trusted prices and categories. It also flags
// lines covered by an active free-shipping promotion.
type CartLoader struct {
	Products ProductReader
	Promos   PromotionReader
	Now      func() time.Time
}

func (l CartLoader) ResolveLines(ctx context.Context, refs []shipping.LineRef) ([]shipping.Line, error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}

	promos, err := l.Promos.Active(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("load promotions: %w", err)
	}

	lines := make([]shipping.Line, 0, len(refs))
	for _, ref := range refs {
		p, found, err := l.Products.Get(ctx, ref.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", ref.ProductID, err)
		}
		if !found {
			// Unknown references only abort checkout proper; for weight
			// estimation the line is dropped.
			continue
		}

		free := false
		item := promo.Item{ProductID: p.ID, CategoryID: p.CategoryID}
		for _, pr := range promo.Resolve(item, promos, now) {
			if pr.FreeShipping {
				free = true
				break
			}
		}

		lines = append(lines, shipping.Line{
			ProductID:    p.ID,
			Qty:          ref.Qty,
			CategoryName: p.CategoryName,
			UnitPrice:    p.Price,
			FreeShipping: free,
		})
	}
	return lines, nil
}
