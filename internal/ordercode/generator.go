package ordercode

import (
	"context"
	"fmt"
	"time"
)

// First is the code assigned to the very first order.
const First = "AA0000"

// Store exposes the order-code reads the generator needs. Both queries race
// against concurrent checkouts, so candidates are re-checked and the storage
// layer keeps a uniqueness constraint as the hard backstop.
type Store interface {
	LastCode(ctx context.Context) (string, bool, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generator produces sequential order codes of the form AA0000..ZZ9999.
// Uniqueness here is best effort: bounded retries against stale reads, then a
// time-derived fallback.
type Generator struct {
	Store      Store
	MaxRetries int

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time

	// Optional observation hooks.
	OnRetry    func()
	OnFallback func()
}

// Next increments a code: digits roll first, then the second letter, then the
// first (AZ9999 -> BA0000). ZZ9999 wraps to AA0000. Malformed input restarts
// the sequence.
func Next(code string) string {
	if !valid(code) {
		return First
	}
	l0, l1 := code[0], code[1]
	var digits int
	fmt.Sscanf(code[2:], "%d", &digits)

	digits++
	if digits > 9999 {
		digits = 0
		l1++
		if l1 > 'Z' {
			l1 = 'A'
			l0++
			if l0 > 'Z' {
				l0 = 'A'
			}
		}
	}
	return fmt.Sprintf("%c%c%04d", l0, l1, digits)
}

func valid(code string) bool {
	if len(code) != 6 {
		return false
	}
	if code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return false
	}
	for i := 2; i < 6; i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Generate returns the next free order code. Each attempt re-reads the last
// persisted code and re-checks the candidate for collisions; after MaxRetries
// stale reads it falls back to a time-derived code instead of failing the
// checkout.
func (g Generator) Generate(ctx context.Context) (string, error) {
	retries := g.MaxRetries
	if retries <= 0 {
		retries = 5
	}
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 && g.OnRetry != nil {
			g.OnRetry()
		}
		last, found, err := g.Store.LastCode(ctx)
		if err != nil {
			return "", err
		}
		candidate := First
		if found {
			candidate = Next(last)
		}
		taken, err := g.Store.CodeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	if g.OnFallback != nil {
		g.OnFallback()
	}
	return g.fallback(), nil
}

// fallback derives a same-shaped code from the current time. Not sequential,
// just collision-improbable.
func (g Generator) fallback() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	n := now().UnixNano()
	letters := n / 10000 % 676
	return fmt.Sprintf("%c%c%04d", byte('A'+letters/26), byte('A'+letters%26), n%10000)
}
