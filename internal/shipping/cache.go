package shipping

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuoteCache keeps recent quote results in Redis so repeated postal-code
// lookups from the same cart skip the carrier round trips.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteCache constructs the cache. A nil client disables caching.
func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, ttl: ttl}
}

// Get returns the cached rates for the postal/cart pair if present. Errors
// are treated as misses; the quote path never fails on cache trouble.
func (c *QuoteCache) Get(ctx context.Context, postal string, lines []Line) ([]Rate, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(postal, lines)).Bytes()
	if err != nil {
		return nil, false
	}
	var rates []Rate
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, false
	}
	return rates, true
}

// Set stores the rates under the postal/cart key with the configured TTL.
func (c *QuoteCache) Set(ctx context.Context, postal string, lines []Line, rates []Rate) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(rates)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(postal, lines), data, c.ttl).Err()
}

func (c *QuoteCache) key(postal string, lines []Line) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|", postal)
	for _, l := range lines {
		fmt.Fprintf(h, "%d:%d:%s:%d:%t|", l.ProductID, l.Qty, l.CategoryName, l.UnitPrice, l.FreeShipping)
	}
	return "shipquote:" + hex.EncodeToString(h.Sum(nil)[:16])
}
