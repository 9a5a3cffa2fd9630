package shipping

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lauritienda/backend-tienda/internal/obs"
)

const pickupOptionID = "retiro_local"

// Service aggregates carrier quotes: concurrent provider fan-out with
// per-call timeouts, static fallback substitution, the always-present pickup
// option and the free-shipping rule.
type Service struct {
	Providers []Provider
	Timeout   time.Duration
	// FreeShippingThreshold is the gross cart subtotal, in centavos, at
	// which shipping is waived.
	FreeShippingThreshold Money
	Cache                 *QuoteCache
	Log                   zerolog.Logger
}

// Quote returns the available shipping options for a destination, sorted
// ascending by final cost. Provider failures never fail the quote; the
// carrier's static fallback table is substituted instead.
func (s *Service) Quote(ctx context.Context, postal string, lines []Line) ([]Rate, error) {
	if s.Cache != nil {
		if rates, ok := s.Cache.Get(ctx, postal, lines); ok {
			return rates, nil
		}
	}

	parcel := Estimate(lines)
	req := RateReq{DestinationPostal: postal, Parcel: parcel}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var (
		mu    sync.Mutex
		rates []Rate
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.Providers {
		p := p
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			got, err := p.Rates(callCtx, req)
			if err != nil || len(got) == 0 {
				if err != nil {
					s.Log.Warn().Err(err).Str("carrier", p.Carrier()).Msg("carrier quote failed, using fallback rates")
				}
				s.countQuote(p.Carrier(), err)
				got = FallbackRates(p.Carrier(), postal)
				if len(got) > 0 && obs.CarrierFallbackTotal != nil {
					obs.CarrierFallbackTotal.WithLabelValues(p.Carrier()).Inc()
				}
			} else {
				s.countQuote(p.Carrier(), nil)
			}

			mu.Lock()
			rates = append(rates, got...)
			mu.Unlock()
			return nil
		})
	}
	// Providers swallow their own failures, so Wait cannot return an error.
	_ = g.Wait()

	rates = append(rates, Rate{
		OptionID:    pickupOptionID,
		DisplayName: "Retiro en Local (Gratis)",
		Cost:        0,
		ETA:         "Inmediato",
		Carrier:     "retiro",
	})

	if reason, free := s.freeShipping(lines); free {
		for i := range rates {
			if rates[i].Cost == 0 {
				continue
			}
			rates[i].WaivedDiscount = rates[i].Cost
			rates[i].Cost = 0
		}
		if obs.FreeShippingTotal != nil {
			obs.FreeShippingTotal.WithLabelValues(reason).Inc()
		}
	}

	sort.SliceStable(rates, func(a, b int) bool {
		return rates[a].Cost < rates[b].Cost
	})

	if s.Cache != nil {
		s.Cache.Set(ctx, postal, lines, rates)
	}
	return rates, nil
}

// freeShipping reports whether the whole quote is waived: the cart's
// base-price subtotal meets the threshold, or every line carries a
// free-shipping promotion.
func (s *Service) freeShipping(lines []Line) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	var subtotal Money
	allFlagged := true
	for _, l := range lines {
		subtotal += l.UnitPrice * Money(l.Qty)
		if !l.FreeShipping {
			allFlagged = false
		}
	}
	if s.FreeShippingThreshold > 0 && subtotal >= s.FreeShippingThreshold {
		return "threshold", true
	}
	if allFlagged {
		return "promotion", true
	}
	return "", false
}

func (s *Service) countQuote(carrier string, err error) {
	if obs.CarrierQuoteTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.CarrierQuoteTotal.WithLabelValues(carrier, result).Inc()
}
