package promo

import "time"

// Money is a monetary amount in centavos.
type Money = int64

// Scope determines how broadly a promotion applies.
type Scope string

const (
	ScopeProduct  Scope = "product"
	ScopeCategory Scope = "category"
	ScopeStore    Scope = "store"
)

// Kind is the discount formula of a promotion.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
	KindBuyNPayM   Kind = "buy_n_pay_m"
)

// Promotion captures the runtime attributes of an automatic promotion or coupon.
type Promotion struct {
	ID           int64
	Scope        Scope
	Kind         Kind
	Value        int64 // percentage points or fixed centavos, depending on Kind
	BuyN         int
	PayM         int
	Active       bool
	StartsAt     time.Time
	EndsAt       time.Time
	FreeShipping bool

	ProductIDs  []int64
	CategoryIDs []int64

	// Coupon-only fields.
	IsCoupon     bool
	Code         string
	MaxUses      *int32 // nil means unlimited
	Uses         int32
	MinimumSpend Money
}

// ActiveAt reports whether the promotion window covers the given instant.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if now.Before(p.StartsAt) {
		return false
	}
	if !p.EndsAt.IsZero() && now.After(p.EndsAt) {
		return false
	}
	return true
}

// AppliesTo reports whether the promotion's scope covers the given product.
func (p Promotion) AppliesTo(productID, categoryID int64) bool {
	switch p.Scope {
	case ScopeStore:
		return true
	case ScopeProduct:
		for _, id := range p.ProductIDs {
			if id == productID {
				return true
			}
		}
	case ScopeCategory:
		for _, id := range p.CategoryIDs {
			if id == categoryID {
				return true
			}
		}
	}
	return false
}

// Item identifies a catalog item for promotion resolution.
type Item struct {
	ProductID  int64
	CategoryID int64
}

// Resolve returns the active non-coupon promotions whose scope matches the
// item, deduplicated by promotion identity. Coupons are handled separately.
func Resolve(item Item, promos []Promotion, now time.Time) []Promotion {
	seen := make(map[int64]bool, len(promos))
	matched := make([]Promotion, 0, len(promos))
	for _, p := range promos {
		if p.IsCoupon || !p.ActiveAt(now) {
			continue
		}
		if seen[p.ID] {
			continue
		}
		if p.AppliesTo(item.ProductID, item.CategoryID) {
			seen[p.ID] = true
			matched = append(matched, p)
		}
	}
	return matched
}
