package ordercode

import (
	"context"
	"testing"
	"time"
)

func TestNextRollsDigitsFirst(t *testing.T) {
	cases := []struct{ in, want string }{
		{"AA0000", "AA0001"},
		{"AA0009", "AA0010"},
		{"AA9999", "AB0000"},
		{"AZ9999", "BA0000"},
		{"BZ9999", "CA0000"},
		{"ZZ9999", "AA0000"},
	}
	for _, tc := range cases {
		if got := Next(tc.in); got != tc.want {
			t.Fatalf("Next(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestNextMalformedRestarts(t *testing.T) {
	for _, in := range []string{"", "A1", "aa0000", "AAXXXX", "AA00001"} {
		if got := Next(in); got != First {
			t.Fatalf("Next(%q) = %s, want %s", in, got, First)
		}
	}
}

type fakeStore struct {
	last  string
	taken map[string]bool
}

func (f *fakeStore) LastCode(context.Context) (string, bool, error) {
	return f.last, f.last != "", nil
}

func (f *fakeStore) CodeExists(_ context.Context, code string) (bool, error) {
	return f.taken[code], nil
}

func TestGenerateFirstOrder(t *testing.T) {
	g := Generator{Store: &fakeStore{taken: map[string]bool{}}}
	code, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != First {
		t.Fatalf("first code = %s, want %s", code, First)
	}
}

func TestGenerateNeverRepeatsBackToBack(t *testing.T) {
	store := &fakeStore{last: "AA0041", taken: map[string]bool{}}
	g := Generator{Store: store}

	first, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.taken[first] = true
	store.last = first

	second, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatalf("generated %s twice in a row", first)
	}
}

func TestGenerateFallbackAfterExhaustedRetries(t *testing.T) {
	// A store stuck on a stale last code with every successor taken forces
	// the time-derived fallback.
	store := &fakeStore{last: "AA0001", taken: map[string]bool{"AA0002": true}}
	retries, fallbacks := 0, 0
	g := Generator{
		Store:      store,
		MaxRetries: 3,
		Now:        func() time.Time { return time.Unix(0, 1234567890123456789) },
		OnRetry:    func() { retries++ },
		OnFallback: func() { fallbacks++ },
	}

	code, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code == "AA0002" {
		t.Fatal("fallback returned the colliding candidate")
	}
	if !valid(code) {
		t.Fatalf("fallback code %q is not AA0000-shaped", code)
	}
	if retries != 2 || fallbacks != 1 {
		t.Fatalf("retries=%d fallbacks=%d, want 2 and 1", retries, fallbacks)
	}
}
