package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/lauritienda/backend-tienda/internal/coupon"
	"github.com/lauritienda/backend-tienda/internal/promo"
)

// Money is a monetary amount in centavos.
type Money = promo.Money

// CartLine is one priced cart entry with the catalog attributes the discount
// chain needs. UnitPrice is the effective price snapshot at request time.
type CartLine struct {
	ProductID    int64
	SizeID       int64
	Qty          int
	UnitPrice    Money
	CategoryID   int64
	CategoryName string
}

// Input is everything a single pricing pass consumes. ShippingCost is the
// figure the client picked from a previous quote; the engine only overrides it
// when a free-shipping promotion or coupon applies.
type Input struct {
	Lines         []CartLine
	Promotions    []promo.Promotion
	CouponCode    string
	PaymentMethod string
	ShippingCost  Money
	Now           time.Time
}

// QuotedLine is the per-line outcome: accumulated discount and the resulting
// line subtotal.
type QuotedLine struct {
	ProductID int64
	SizeID    int64
	Qty       int
	UnitPrice Money
	Discount  Money
	Subtotal  Money
}

// Quote is the full pricing outcome for one cart.
type Quote struct {
	Lines        []QuotedLine
	Subtotal     Money
	Discount     Money
	ShippingCost Money
	Total        Money
	FreeShipping bool
	CouponID     int64
}

// Engine runs the discount chain: automatic promotions per line, the
// quantity-tier discount cart-wide, then coupon and payment-method discounts
// on top. Discounts stack additively without a cap; the order total is floored
// at zero.
type Engine struct {
	Coupons coupon.Applier
}

// Price computes the quote for one cart snapshot. It mutates nothing except
// the coupon usage counter, and only when a coupon code validates.
func (e Engine) Price(ctx context.Context, in Input) (Quote, error) {
	lines := make([]promo.Line, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = promo.Line{
			ProductID:  l.ProductID,
			CategoryID: l.CategoryID,
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
		}
	}

	promo.ApplyAutomatic(lines, in.Promotions, in.Now)
	promo.ApplyTier(lines)

	var gross Money
	for i := range lines {
		gross += lines[i].Gross()
	}

	q := Quote{Subtotal: gross, ShippingCost: in.ShippingCost}

	for i := range lines {
		q.Discount += lines[i].Discount
	}

	if in.CouponCode != "" {
		res, err := e.Coupons.Apply(ctx, in.CouponCode, lines, gross, in.Now)
		if err != nil {
			return Quote{}, err
		}
		q.Discount += res.Discount
		q.CouponID = res.PromotionID
		if res.FreeShipping {
			q.FreeShipping = true
		}
	}

	q.Discount += paymentMethodDiscount(in.PaymentMethod, in.Lines, lines)

	if !q.FreeShipping && allLinesFreeShipping(lines, in.Promotions, in.Now) {
		q.FreeShipping = true
	}
	if q.FreeShipping {
		q.ShippingCost = 0
	}

	q.Lines = make([]QuotedLine, len(lines))
	for i, l := range lines {
		q.Lines[i] = QuotedLine{
			ProductID: l.ProductID,
			SizeID:    in.Lines[i].SizeID,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Subtotal:  l.Gross() - l.Discount,
		}
	}

	q.Total = q.Subtotal + q.ShippingCost - q.Discount
	if q.Total < 0 {
		q.Total = 0
	}
	return q, nil
}

const (
	shortsPaymentPct = 10
	otherPaymentPct  = 15
)

// paymentMethodDiscount applies the cash/transfer discount to each line's net
// value. Shipping is never part of the base. Lines in a shorts category get
// the lower rate.
func paymentMethodDiscount(method string, carts []CartLine, lines []promo.Line) Money {
	if !paymentMethodEligible(method) {
		return 0
	}
	var total Money
	for i := range lines {
		net := lines[i].Gross() - lines[i].Discount
		if net <= 0 {
			continue
		}
		pct := Money(otherPaymentPct)
		if isShortsCategory(carts[i].CategoryName) {
			pct = shortsPaymentPct
		}
		total += net * pct / 100
	}
	return total
}

func paymentMethodEligible(method string) bool {
	m := strings.ToLower(method)
	for _, s := range []string{"cash", "efectivo", "transfer", "transferencia"} {
		if strings.Contains(m, s) {
			return true
		}
	}
	return false
}

func isShortsCategory(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "short") || strings.Contains(n, "bermuda")
}

// allLinesFreeShipping reports whether every line is covered by an active
// promotion flagged free-shipping.
func allLinesFreeShipping(lines []promo.Line, promos []promo.Promotion, now time.Time) bool {
	if len(lines) == 0 {
		return false
	}
	for i := range lines {
		covered := false
		for _, p := range promos {
			if p.IsCoupon || !p.FreeShipping || !p.ActiveAt(now) {
				continue
			}
			if p.AppliesTo(lines[i].ProductID, lines[i].CategoryID) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}
