package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/lauritienda/backend-tienda/internal/coupon"
	"github.com/lauritienda/backend-tienda/internal/promo"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type couponRepo struct {
	byCode     map[string]promo.Promotion
	increments int
}

func (r *couponRepo) FindByCode(_ context.Context, code string) (promo.Promotion, bool, error) {
	c, ok := r.byCode[code]
	return c, ok, nil
}

func (r *couponRepo) IncrementUsage(context.Context, int64) error {
	r.increments++
	return nil
}

func engineWith(coupons map[string]promo.Promotion) (Engine, *couponRepo) {
	repo := &couponRepo{byCode: coupons}
	return Engine{Coupons: coupon.Applier{Repo: repo}}, repo
}

func TestPriceNoDiscounts(t *testing.T) {
	e, _ := engineWith(nil)
	q, err := e.Price(context.Background(), Input{
		Lines:        []CartLine{{ProductID: 1, SizeID: 1, Qty: 1, UnitPrice: 1000, CategoryName: "Remeras"}},
		ShippingCost: 500,
		Now:          now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Subtotal != 1000 || q.Discount != 0 || q.Total != 1500 {
		t.Fatalf("got subtotal=%d discount=%d total=%d", q.Subtotal, q.Discount, q.Total)
	}
}

func TestPricePaymentMethodSplit(t *testing.T) {
	// Cash order: shorts line gets 10%, shirt line gets 15%, shipping excluded.
	e, _ := engineWith(nil)
	q, err := e.Price(context.Background(), Input{
		Lines: []CartLine{
			{ProductID: 1, SizeID: 1, Qty: 1, UnitPrice: 1000, CategoryID: 1, CategoryName: "Shorts de baño"},
		},
		PaymentMethod: "Efectivo",
		ShippingCost:  700,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Discount != 100 {
		t.Fatalf("shorts cash discount = %d, want 100", q.Discount)
	}

	q, err = e.Price(context.Background(), Input{
		Lines: []CartLine{
			{ProductID: 2, SizeID: 1, Qty: 1, UnitPrice: 1000, CategoryID: 2, CategoryName: "Remeras"},
		},
		PaymentMethod: "bank-transfer",
		ShippingCost:  700,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Discount != 150 {
		t.Fatalf("shirt transfer discount = %d, want 150", q.Discount)
	}
	if q.Total != 1000-150+700 {
		t.Fatalf("total = %d, want %d", q.Total, 1000-150+700)
	}
}

func TestPricePaymentDiscountOnNetValue(t *testing.T) {
	// A 50% promotion halves the line first; the payment discount then sees
	// the net 500, not the gross 1000.
	e, _ := engineWith(nil)
	p := promo.Promotion{
		ID: 1, Scope: promo.ScopeStore, Kind: promo.KindPercentage, Value: 50,
		Active: true, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour),
	}
	q, err := e.Price(context.Background(), Input{
		Lines:         []CartLine{{ProductID: 1, SizeID: 1, Qty: 1, UnitPrice: 1000, CategoryName: "Remeras"}},
		Promotions:    []promo.Promotion{p},
		PaymentMethod: "cash",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 500 promo + 75 payment (15% of 500).
	if q.Discount != 575 {
		t.Fatalf("discount = %d, want 575", q.Discount)
	}
}

func TestPriceCouponOnNetAndCounterIncrement(t *testing.T) {
	c := promo.Promotion{
		ID: 9, Scope: promo.ScopeStore, Kind: promo.KindPercentage, Value: 10,
		Active: true, IsCoupon: true, Code: "DIEZ",
		StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour),
	}
	e, repo := engineWith(map[string]promo.Promotion{"DIEZ": c})
	q, err := e.Price(context.Background(), Input{
		Lines:      []CartLine{{ProductID: 1, SizeID: 1, Qty: 2, UnitPrice: 1000, CategoryName: "Remeras"}},
		CouponCode: "DIEZ",
		Now:        now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Tier (2 units, 10%) discounts 200 first; coupon sees net 1800.
	if q.Discount != 200+180 {
		t.Fatalf("discount = %d, want 380", q.Discount)
	}
	if q.CouponID != 9 {
		t.Fatalf("coupon id = %d, want 9", q.CouponID)
	}
	if repo.increments != 1 {
		t.Fatalf("usage incremented %d times, want 1", repo.increments)
	}
}

func TestPriceInvalidCouponAborts(t *testing.T) {
	e, repo := engineWith(map[string]promo.Promotion{})
	_, err := e.Price(context.Background(), Input{
		Lines:      []CartLine{{ProductID: 1, SizeID: 1, Qty: 1, UnitPrice: 1000}},
		CouponCode: "NOPE",
		Now:        now,
	})
	if err == nil {
		t.Fatal("expected invalid coupon error")
	}
	if repo.increments != 0 {
		t.Fatalf("usage incremented %d times on failure", repo.increments)
	}
}

func TestPriceFreeShippingByPromotionCoverage(t *testing.T) {
	e, _ := engineWith(nil)
	p := promo.Promotion{
		ID: 3, Scope: promo.ScopeStore, Kind: promo.KindPercentage, Value: 0,
		FreeShipping: true, Active: true,
		StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour),
	}
	q, err := e.Price(context.Background(), Input{
		Lines:        []CartLine{{ProductID: 1, SizeID: 1, Qty: 1, UnitPrice: 1000}},
		Promotions:   []promo.Promotion{p},
		ShippingCost: 800,
		Now:          now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.FreeShipping || q.ShippingCost != 0 {
		t.Fatalf("expected free shipping, got freeShipping=%v cost=%d", q.FreeShipping, q.ShippingCost)
	}
}

func TestPriceTotalFlooredAtZero(t *testing.T) {
	// Stacked discounts can nominally exceed the cart value; the total never
	// goes negative.
	e, _ := engineWith(nil)
	p1 := promo.Promotion{
		ID: 1, Scope: promo.ScopeStore, Kind: promo.KindPercentage, Value: 90,
		Active: true, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour),
	}
	p2 := promo.Promotion{
		ID: 2, Scope: promo.ScopeStore, Kind: promo.KindFixed, Value: 500,
		Active: true, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour),
	}
	q, err := e.Price(context.Background(), Input{
		Lines:      []CartLine{{ProductID: 1, SizeID: 1, Qty: 1, UnitPrice: 1000}},
		Promotions: []promo.Promotion{p1, p2},
		Now:        now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Total != 0 {
		t.Fatalf("total = %d, want 0", q.Total)
	}
}

func TestPriceRoundTripInvariant(t *testing.T) {
	e, _ := engineWith(nil)
	q, err := e.Price(context.Background(), Input{
		Lines: []CartLine{
			{ProductID: 1, SizeID: 1, Qty: 2, UnitPrice: 1200, CategoryName: "Remeras"},
			{ProductID: 2, SizeID: 2, Qty: 1, UnitPrice: 900, CategoryName: "Shorts"},
		},
		PaymentMethod: "efectivo",
		ShippingCost:  650,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := q.Subtotal + q.ShippingCost - q.Discount
	if want < 0 {
		want = 0
	}
	if q.Total != want {
		t.Fatalf("total = %d, want subtotal+shipping-discount = %d", q.Total, want)
	}
	var lineSum Money
	for _, l := range q.Lines {
		if l.Subtotal != l.UnitPrice*Money(l.Qty)-l.Discount {
			t.Fatalf("line subtotal %d != gross-discount", l.Subtotal)
		}
		lineSum += l.Subtotal
	}
}
