package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCreatedTotal counts persisted checkout orders.
	OrdersCreatedTotal prometheus.Counter
	// CouponRedemptionsTotal counts coupon application outcomes by reason.
	CouponRedemptionsTotal *prometheus.CounterVec
	// OrderCodeRetriesTotal counts order code candidates discarded due to collision.
	OrderCodeRetriesTotal prometheus.Counter
	// OrderCodeFallbackTotal counts orders that fell back to a time-derived code.
	OrderCodeFallbackTotal prometheus.Counter
	// CarrierQuoteTotal counts carrier rate requests by carrier and result.
	CarrierQuoteTotal *prometheus.CounterVec
	// CarrierFallbackTotal counts substitutions of the static rate table.
	CarrierFallbackTotal *prometheus.CounterVec
	// FreeShippingTotal counts quotes where shipping was waived, by reason.
	FreeShippingTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Number of orders persisted through checkout.",
		})
		CouponRedemptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_redemptions_total",
			Help:      "Coupon application outcomes.",
		}, []string{"result"})
		OrderCodeRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_code_retries_total",
			Help:      "Order code candidates discarded because they were already taken.",
		})
		OrderCodeFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_code_fallback_total",
			Help:      "Orders issued a time-derived fallback code after retry exhaustion.",
		})
		CarrierQuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carrier_quote_total",
			Help:      "Carrier rate requests by outcome.",
		}, []string{"carrier", "result"})
		CarrierFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carrier_fallback_total",
			Help:      "Static fallback rates substituted for an unavailable carrier.",
		}, []string{"carrier"})
		FreeShippingTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "free_shipping_total",
			Help:      "Shipping quotes with all costs waived, by qualifying reason.",
		}, []string{"reason"})

		registerCounter(reg, &OrdersCreatedTotal)
		registerCounterVec(reg, &CouponRedemptionsTotal)
		registerCounter(reg, &OrderCodeRetriesTotal)
		registerCounter(reg, &OrderCodeFallbackTotal)
		registerCounterVec(reg, &CarrierQuoteTotal)
		registerCounterVec(reg, &CarrierFallbackTotal)
		registerCounterVec(reg, &FreeShippingTotal)
	})
}
