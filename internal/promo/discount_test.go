package promo

import (
	"testing"
	"time"
)

var window = struct {
	start, end time.Time
}{
	start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	end:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
}

func activePromo(kind Kind, value int64) Promotion {
	return Promotion{
		ID:       1,
		Scope:    ScopeStore,
		Kind:     kind,
		Value:    value,
		Active:   true,
		StartsAt: window.start,
		EndsAt:   window.end,
	}
}

func TestPercentageDiscount(t *testing.T) {
	lines := []Line{{ProductID: 1, Qty: 2, UnitPrice: 1000}}
	ApplyAutomatic(lines, []Promotion{activePromo(KindPercentage, 20)}, window.start.Add(time.Hour))
	if lines[0].Discount != 400 {
		t.Fatalf("expected discount 400, got %d", lines[0].Discount)
	}
}

func TestFixedDiscountCappedAtGross(t *testing.T) {
	lines := []Line{{ProductID: 1, Qty: 3, UnitPrice: 50}}
	ApplyAutomatic(lines, []Promotion{activePromo(KindFixed, 80)}, window.start.Add(time.Hour))
	if lines[0].Discount != 150 {
		t.Fatalf("expected discount capped at gross 150, got %d", lines[0].Discount)
	}
}

func TestThreeForTwoSingleLine(t *testing.T) {
	// P=100, Q=7 under 3-for-2: floor(7/3)=2 free units worth 200.
	p := activePromo(KindBuyNPayM, 0)
	p.BuyN, p.PayM = 3, 2
	lines := []Line{{ProductID: 1, Qty: 7, UnitPrice: 100}}
	ApplyAutomatic(lines, []Promotion{p}, window.start.Add(time.Hour))
	if lines[0].Discount != 200 {
		t.Fatalf("expected discount 200, got %d", lines[0].Discount)
	}
	if net := lines[0].Gross() - lines[0].Discount; net != 500 {
		t.Fatalf("expected net payable 500, got %d", net)
	}
}

func TestTwoForOneMixedLines(t *testing.T) {
	// Units [300,300,100] sorted descending; index 1 is free, so the
	// discount is a 300 unit, not the cheap 100 one.
	p := activePromo(KindBuyNPayM, 0)
	p.BuyN, p.PayM = 2, 1
	lines := []Line{
		{ProductID: 1, Qty: 2, UnitPrice: 300},
		{ProductID: 2, Qty: 1, UnitPrice: 100},
	}
	ApplyAutomatic(lines, []Promotion{p}, window.start.Add(time.Hour))
	if lines[0].Discount != 300 {
		t.Fatalf("expected line A discount 300, got %d", lines[0].Discount)
	}
	if lines[1].Discount != 0 {
		t.Fatalf("expected line B discount 0, got %d", lines[1].Discount)
	}
}

func TestBuyNPayMBelowGroupSize(t *testing.T) {
	p := activePromo(KindBuyNPayM, 0)
	p.BuyN, p.PayM = 3, 2
	lines := []Line{{ProductID: 1, Qty: 2, UnitPrice: 100}}
	ApplyAutomatic(lines, []Promotion{p}, window.start.Add(time.Hour))
	if lines[0].Discount != 0 {
		t.Fatalf("expected no discount for 2 units under 3-for-2, got %d", lines[0].Discount)
	}
}

func TestInactivePromotionIgnored(t *testing.T) {
	p := activePromo(KindPercentage, 50)
	p.Active = false
	lines := []Line{{ProductID: 1, Qty: 1, UnitPrice: 1000}}
	ApplyAutomatic(lines, []Promotion{p}, window.start.Add(time.Hour))
	if lines[0].Discount != 0 {
		t.Fatalf("expected inactive promotion to be skipped, got %d", lines[0].Discount)
	}
}

func TestTierPercentages(t *testing.T) {
	cases := []struct {
		units int
		want  int64
	}{
		{1, 0},
		{2, 10},
		{3, 15},
		{7, 15},
	}
	for _, tc := range cases {
		if got := TierPercent(tc.units); got != tc.want {
			t.Fatalf("TierPercent(%d) = %d, want %d", tc.units, got, tc.want)
		}
	}
}

func TestApplyTierProportional(t *testing.T) {
	lines := []Line{
		{ProductID: 1, Qty: 1, UnitPrice: 1000},
		{ProductID: 2, Qty: 1, UnitPrice: 3000},
	}
	ApplyTier(lines)
	if lines[0].Discount != 100 || lines[1].Discount != 300 {
		t.Fatalf("expected 10%% per line (100, 300), got (%d, %d)", lines[0].Discount, lines[1].Discount)
	}
}

func TestResolveDeduplicatesAndFilters(t *testing.T) {
	now := window.start.Add(time.Hour)
	product := Promotion{ID: 1, Scope: ScopeProduct, ProductIDs: []int64{7}, Active: true, StartsAt: window.start, EndsAt: window.end}
	category := Promotion{ID: 2, Scope: ScopeCategory, CategoryIDs: []int64{3}, Active: true, StartsAt: window.start, EndsAt: window.end}
	store := Promotion{ID: 3, Scope: ScopeStore, Active: true, StartsAt: window.start, EndsAt: window.end}
	coupon := Promotion{ID: 4, Scope: ScopeStore, IsCoupon: true, Active: true, StartsAt: window.start, EndsAt: window.end}
	other := Promotion{ID: 5, Scope: ScopeProduct, ProductIDs: []int64{99}, Active: true, StartsAt: window.start, EndsAt: window.end}

	got := Resolve(Item{ProductID: 7, CategoryID: 3}, []Promotion{product, category, store, coupon, other, store}, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 matched promotions, got %d", len(got))
	}
	for _, p := range got {
		if p.IsCoupon {
			t.Fatalf("coupon promotions must not be resolved automatically")
		}
	}
}
