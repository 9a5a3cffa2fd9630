package promo

import (
	"sort"
	"time"
)

// Line is a priced cart line participating in discount calculation. Discount
// accumulates contributions from every applicable source.
type Line struct {
	ProductID  int64
	CategoryID int64
	Qty        int
	UnitPrice  Money
	Discount   Money
}

// Gross returns the line value before any discount.
func (l Line) Gross() Money {
	return l.UnitPrice * Money(l.Qty)
}

// ApplyAutomatic accumulates every matching promotion's discount onto the
// lines. Percentage and fixed formulas are evaluated per line; buy-N-pay-M
// promotions pool the units of every matching line so the shopper always
// keeps the most expensive units.
func ApplyAutomatic(lines []Line, promos []Promotion, now time.Time) {
	for _, p := range promos {
		if p.IsCoupon || !p.ActiveAt(now) {
			continue
		}
		switch p.Kind {
		case KindPercentage, KindFixed:
			for i := range lines {
				if !p.AppliesTo(lines[i].ProductID, lines[i].CategoryID) {
					continue
				}
				lines[i].Discount += lineDiscount(p, lines[i].Qty, lines[i].UnitPrice)
			}
		case KindBuyNPayM:
			applyBuyNPayM(lines, p)
		}
	}
}

// lineDiscount evaluates a per-line formula. Fixed discounts never exceed the
// line's gross value.
func lineDiscount(p Promotion, qty int, unitPrice Money) Money {
	gross := unitPrice * Money(qty)
	switch p.Kind {
	case KindPercentage:
		return gross * p.Value / 100
	case KindFixed:
		d := p.Value * Money(qty)
		if d > gross {
			d = gross
		}
		return d
	}
	return 0
}

// unit is one physical item expanded out of a cart line.
type unit struct {
	line  int
	price Money
}

// applyBuyNPayM expands every unit across matching lines, sorts them by price
// descending and marks each N-th unit free, refunding its price to the line
// it came from.
func applyBuyNPayM(lines []Line, p Promotion) {
	n := p.BuyN
	if n < 2 {
		return
	}
	var units []unit
	for i := range lines {
		if !p.AppliesTo(lines[i].ProductID, lines[i].CategoryID) {
			continue
		}
		for q := 0; q < lines[i].Qty; q++ {
			units = append(units, unit{line: i, price: lines[i].UnitPrice})
		}
	}
	if len(units) < n {
		return
	}
	sort.SliceStable(units, func(a, b int) bool {
		return units[a].price > units[b].price
	})
	for i, u := range units {
		if (i+1)%n == 0 {
			lines[u.line].Discount += u.price
		}
	}
}

// Quantity tier thresholds are fixed: two units in the cart earn 10%, three
// or more earn 15%.
const (
	tierTwoPercent      = 10
	tierThreePlusPct    = 15
	tierTwoUnits        = 2
	tierThreePlusLowest = 3
)

// TierPercent returns the cart-wide discount percentage for a total unit count.
func TierPercent(totalUnits int) int64 {
	switch {
	case totalUnits >= tierThreePlusLowest:
		return tierThreePlusPct
	case totalUnits == tierTwoUnits:
		return tierTwoPercent
	default:
		return 0
	}
}

// ApplyTier adds the quantity-tier discount to each line, proportional to the
// line's own gross value. Independent of and additive with promotions.
func ApplyTier(lines []Line) {
	total := 0
	for i := range lines {
		total += lines[i].Qty
	}
	pct := TierPercent(total)
	if pct == 0 {
		return
	}
	for i := range lines {
		lines[i].Discount += lines[i].Gross() * pct / 100
	}
}
