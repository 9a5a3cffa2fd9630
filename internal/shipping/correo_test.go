package shipping

import (
	"context"
	"testing"
)

func correoRates(t *testing.T, postal string, p Parcel) []Rate {
	t.Helper()
	rates, err := Correo{}.Rates(context.Background(), RateReq{DestinationPostal: postal, Parcel: p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected sucursal and domicilio, got %d rates", len(rates))
	}
	return rates
}

func TestCorreoWeightRanges(t *testing.T) {
	cases := []struct {
		grams int
		want  Money
	}{
		{800, 4800_00},
		{3000, 6200_00},
		{9000, 8500_00},
		{15000, 12000_00},
	}
	for _, tc := range cases {
		rates := correoRates(t, "5800", Parcel{WeightGrams: tc.grams, LengthCM: 10, WidthCM: 10, HeightCM: 10})
		if rates[0].Cost != tc.want {
			t.Fatalf("sucursal cost for %dg = %d, want %d", tc.grams, rates[0].Cost, tc.want)
		}
	}
}

func TestCorreoDistanceFactor(t *testing.T) {
	p := Parcel{WeightGrams: 800, LengthCM: 10, WidthCM: 10, HeightCM: 10}

	cordoba := correoRates(t, "5000", p)
	if cordoba[0].Cost != 4800_00 {
		t.Fatalf("córdoba cost = %d, want 480000", cordoba[0].Cost)
	}

	buenosAires := correoRates(t, "1425", p)
	want := Money(float64(4800_00) * 1.3)
	if buenosAires[0].Cost != want {
		t.Fatalf("long-haul cost = %d, want %d", buenosAires[0].Cost, want)
	}
}

func TestCorreoDomicilioPremium(t *testing.T) {
	rates := correoRates(t, "5800", Parcel{WeightGrams: 800, LengthCM: 10, WidthCM: 10, HeightCM: 10})
	if rates[1].Cost != rates[0].Cost*125/100 {
		t.Fatalf("domicilio = %d, want 25%% over sucursal %d", rates[1].Cost, rates[0].Cost)
	}
}

func TestCorreoVolumetricWeight(t *testing.T) {
	// 60x50x40 at factor 6000 is 20kg volumetric: overweight tariff.
	rates := correoRates(t, "5800", Parcel{WeightGrams: 500, LengthCM: 60, WidthCM: 50, HeightCM: 40})
	if rates[0].Cost != 12000_00 {
		t.Fatalf("volumetric sucursal cost = %d, want 1200000", rates[0].Cost)
	}
}
