package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/lauritienda/backend-tienda/internal/promo"
)

var (
	// ErrInvalidCoupon is the umbrella sentinel for every coupon rejection.
	ErrInvalidCoupon = errors.New("invalid coupon")
	// ErrNotFound is returned when the code does not resolve to an active coupon.
	ErrNotFound = errors.New("coupon not found or inactive")
	// ErrMinimumSpend indicates the cart subtotal is below the coupon requirement.
	ErrMinimumSpend = errors.New("coupon minimum spend not met")
	// ErrUsageExhausted indicates the coupon reached its usage cap.
	ErrUsageExhausted = errors.New("coupon usage limit reached")
	// ErrNotApplicable indicates no cart line falls under the coupon's scope.
	ErrNotApplicable = errors.New("coupon does not apply to any item in the cart")
)

// Reason distinguishes rejection causes for API consumers.
type Reason string

const (
	ReasonNotFound       Reason = "not_found"
	ReasonMinimumSpend   Reason = "below_minimum"
	ReasonUsageExhausted Reason = "usage_exhausted"
	ReasonNotApplicable  Reason = "not_applicable"
)

// Error wraps a rejection reason so handlers can surface it without string
// matching.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Is matches the umbrella sentinel in addition to the wrapped cause.
func (e *Error) Is(target error) bool { return target == ErrInvalidCoupon }

func reject(reason Reason, err error) error {
	return &Error{Reason: reason, Err: err}
}

// Repo resolves coupon codes and records successful redemptions.
type Repo interface {
	FindByCode(ctx context.Context, code string) (promo.Promotion, bool, error)
	IncrementUsage(ctx context.Context, promotionID int64) error
}

// Result reports what a successfully applied coupon contributed.
type Result struct {
	PromotionID  int64
	Discount     promo.Money
	FreeShipping bool
}

// Applier validates and applies a single cart-level coupon.
type Applier struct {
	Repo Repo
}

// Apply validates the code and computes its discount against the subtotal of
// the lines its scope covers, net of promotion and tier discounts. The gross
// subtotal gates the minimum-spend rule. A coupon whose scope matches no line
// is rejected. Usage is incremented exactly once, only on success; a rejected
// coupon mutates nothing.
func (a Applier) Apply(ctx context.Context, code string, lines []promo.Line, grossSubtotal promo.Money, now time.Time) (Result, error) {
	c, found, err := a.Repo.FindByCode(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if !found || !c.IsCoupon || !c.ActiveAt(now) {
		return Result{}, reject(ReasonNotFound, ErrNotFound)
	}
	if grossSubtotal < c.MinimumSpend {
		return Result{}, reject(ReasonMinimumSpend, ErrMinimumSpend)
	}
	if c.MaxUses != nil && c.Uses >= *c.MaxUses {
		return Result{}, reject(ReasonUsageExhausted, ErrUsageExhausted)
	}

	var net promo.Money
	matched := false
	for _, l := range lines {
		if !c.AppliesTo(l.ProductID, l.CategoryID) {
			continue
		}
		matched = true
		net += l.Gross() - l.Discount
	}
	if !matched {
		return Result{}, reject(ReasonNotApplicable, ErrNotApplicable)
	}
	if net < 0 {
		net = 0
	}

	var discount promo.Money
	switch c.Kind {
	case promo.KindPercentage:
		discount = net * c.Value / 100
	case promo.KindFixed:
		discount = c.Value
		if discount > net {
			discount = net
		}
	}
	if discount < 0 {
		discount = 0
	}

	if err := a.Repo.IncrementUsage(ctx, c.ID); err != nil {
		return Result{}, err
	}
	return Result{PromotionID: c.ID, Discount: discount, FreeShipping: c.FreeShipping}, nil
}

// Validate runs the gating checks without applying or mutating anything. Used
// by the public coupon validation endpoint.
func (a Applier) Validate(ctx context.Context, code string, grossSubtotal promo.Money, now time.Time) (promo.Promotion, error) {
	c, found, err := a.Repo.FindByCode(ctx, code)
	if err != nil {
		return promo.Promotion{}, err
	}
	if !found || !c.IsCoupon || !c.ActiveAt(now) {
		return promo.Promotion{}, reject(ReasonNotFound, ErrNotFound)
	}
	if grossSubtotal < c.MinimumSpend {
		return promo.Promotion{}, reject(ReasonMinimumSpend, ErrMinimumSpend)
	}
	if c.MaxUses != nil && c.Uses >= *c.MaxUses {
		return promo.Promotion{}, reject(ReasonUsageExhausted, ErrUsageExhausted)
	}
	return c, nil
}
