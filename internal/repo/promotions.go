package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lauritienda/backend-tienda/internal/promo"
)

// Promotions reads the promotion catalog and mutates coupon usage counters,
// the only write the pricing engine performs on promotions.
type Promotions struct {
	Q Querier
}

const promotionColumns = `
	pr.id, pr.scope, pr.kind, pr.value, pr.buy_n, pr.pay_m, pr.active,
	pr.starts_at, pr.ends_at, pr.free_shipping,
	pr.is_coupon, pr.code, pr.max_uses, pr.uses, pr.minimum_spend`

// Active returns every non-coupon promotion whose window covers now, with
// product and category scope lists attached.
func (r Promotions) Active(ctx context.Context, now time.Time) ([]promo.Promotion, error) {
	q := `
		SELECT ` + promotionColumns + `
		FROM promotions pr
		WHERE pr.is_coupon = FALSE
		  AND pr.active = TRUE
		  AND pr.starts_at <= $1
		  AND (pr.ends_at IS NULL OR pr.ends_at >= $1)
		ORDER BY pr.id`
	rows, err := r.Q.Query(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []promo.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range promos {
		if err := r.attachScopes(ctx, &promos[i]); err != nil {
			return nil, err
		}
	}
	return promos, nil
}

// FindByCode resolves a coupon promotion by its unique code.
func (r Promotions) FindByCode(ctx context.Context, code string) (promo.Promotion, bool, error) {
	q := `
		SELECT ` + promotionColumns + `
		FROM promotions pr
		WHERE pr.is_coupon = TRUE AND pr.code = $1`
	row := r.Q.QueryRow(ctx, q, code)
	p, err := scanPromotion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return promo.Promotion{}, false, nil
	}
	if err != nil {
		return promo.Promotion{}, false, err
	}
	if err := r.attachScopes(ctx, &p); err != nil {
		return promo.Promotion{}, false, err
	}
	return p, true, nil
}

// IncrementUsage bumps a coupon's usage counter. Runs inside the checkout
// transaction so a rollback undoes it.
func (r Promotions) IncrementUsage(ctx context.Context, promotionID int64) error {
	_, err := r.Q.Exec(ctx, `UPDATE promotions SET uses = uses + 1 WHERE id = $1`, promotionID)
	return err
}

func (r Promotions) attachScopes(ctx context.Context, p *promo.Promotion) error {
	switch p.Scope {
	case promo.ScopeProduct:
		ids, err := r.scopeIDs(ctx, `SELECT product_id FROM promotion_products WHERE promotion_id = $1`, p.ID)
		if err != nil {
			return err
		}
		p.ProductIDs = ids
	case promo.ScopeCategory:
		ids, err := r.scopeIDs(ctx, `SELECT category_id FROM promotion_categories WHERE promotion_id = $1`, p.ID)
		if err != nil {
			return err
		}
		p.CategoryIDs = ids
	}
	return nil
}

func (r Promotions) scopeIDs(ctx context.Context, q string, promotionID int64) ([]int64, error) {
	rows, err := r.Q.Query(ctx, q, promotionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanPromotion(row pgx.Row) (promo.Promotion, error) {
	var (
		p       promo.Promotion
		endsAt  *time.Time
		code    *string
		maxUses *int32
	)
	err := row.Scan(
		&p.ID, &p.Scope, &p.Kind, &p.Value, &p.BuyN, &p.PayM, &p.Active,
		&p.StartsAt, &endsAt, &p.FreeShipping,
		&p.IsCoupon, &code, &maxUses, &p.Uses, &p.MinimumSpend,
	)
	if err != nil {
		return promo.Promotion{}, err
	}
	if endsAt != nil {
		p.EndsAt = *endsAt
	}
	if code != nil {
		p.Code = *code
	}
	p.MaxUses = maxUses
	return p, nil
}
