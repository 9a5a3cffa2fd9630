package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lauritienda/backend-tienda/internal/promo"
	"github.com/lauritienda/backend-tienda/internal/repo"
	"github.com/lauritienda/backend-tienda/internal/shipping"
)

type fakeProducts map[int64]repo.PricedProduct

func (f fakeProducts) Get(_ context.Context, id int64) (repo.PricedProduct, bool, error) {
	p, ok := f[id]
	return p, ok, nil
}

type fakePromos []promo.Promotion

func (f fakePromos) Active(context.Context, time.Time) ([]promo.Promotion, error) {
	return f, nil
}

func TestCartLoaderResolvesPricedLines(t *testing.T) {
	t.Parallel()

	loader := CartLoader{
		Products: fakeProducts{
			1: {ID: 1, Name: "Remera lisa", Price: 5000_00, CategoryID: 10, CategoryName: "Remeras"},
			2: {ID: 2, Name: "Bermuda cargo", Price: 7000_00, CategoryID: 20, CategoryName: "Bermudas"},
		},
		Promos: fakePromos{
			{ID: 9, Scope: promo.ScopeCategory, Kind: promo.KindPercentage, Value: 10,
				Active: true, FreeShipping: true, CategoryIDs: []int64{20}},
		},
	}

	lines, err := loader.ResolveLines(context.Background(), []shipping.LineRef{
		{ProductID: 1, Qty: 2},
		{ProductID: 2, Qty: 1},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	require.Equal(t, shipping.Line{ProductID: 1, Qty: 2, CategoryName: "Remeras", UnitPrice: 5000_00}, lines[0])
	require.True(t, lines[1].FreeShipping, "category-scoped free shipping promotion must flag the line")
	require.Equal(t, shipping.Money(7000_00), lines[1].UnitPrice)
}

func TestCartLoaderSkipsUnknownProducts(t *testing.T) {
	t.Parallel()

	loader := CartLoader{
		Products: fakeProducts{1: {ID: 1, Price: 100_00, CategoryName: "Remeras"}},
		Promos:   fakePromos{},
	}

	lines, err := loader.ResolveLines(context.Background(), []shipping.LineRef{
		{ProductID: 1, Qty: 1},
		{ProductID: 99, Qty: 5},
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, int64(1), lines[0].ProductID)
}

func TestCartLoaderIgnoresInactiveAndCouponPromotions(t *testing.T) {
	t.Parallel()

	loader := CartLoader{
		Products: fakeProducts{1: {ID: 1, Price: 100_00, CategoryID: 10, CategoryName: "Remeras"}},
		Promos: fakePromos{
			{ID: 1, Scope: promo.ScopeStore, Active: false, FreeShipping: true},
			{ID: 2, Scope: promo.ScopeStore, Active: true, FreeShipping: true, IsCoupon: true, Code: "ENVIOGRATIS"},
		},
	}

	lines, err := loader.ResolveLines(context.Background(), []shipping.LineRef{{ProductID: 1, Qty: 1}})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.False(t, lines[0].FreeShipping, "inactive or coupon promotions must not waive shipping")
}
