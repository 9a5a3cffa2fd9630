package shipping

import "context"

// Money is a monetary amount in centavos.
type Money = int64

// Parcel is the billable package estimated from a cart: additive weight and
// the largest dimension per axis.
type Parcel struct {
	WeightGrams int
	LengthCM    int
	WidthCM     int
	HeightCM    int
}

// RateReq describes a shipping rate request to one carrier.
type RateReq struct {
	DestinationPostal string
	Parcel            Parcel
}

// Rate is one returned shipping option. WaivedDiscount is set when free
// shipping zeroes the cost, recording what the carrier would have charged.
type Rate struct {
	OptionID       string `json:"id"`
	DisplayName    string `json:"nombre"`
	Cost           Money  `json:"costo"`
	ETA            string `json:"tiempo_estimado"`
	WaivedDiscount Money  `json:"descuento_bonificado,omitempty"`
	Carrier        string `json:"-"`
}

// Provider quotes rates for a single carrier. Implementations must tolerate a
// short per-call timeout and may return zero rates without error.
type Provider interface {
	Carrier() string
	Rates(ctx context.Context, req RateReq) ([]Rate, error)
}

// BillableWeightKG returns the greater of actual and volumetric weight, in
// kilograms. Carriers divide the volume by their own factor (Andreani 5000,
// Correo Argentino 6000).
func BillableWeightKG(p Parcel, factor float64) float64 {
	actual := float64(p.WeightGrams) / 1000
	volumetric := float64(p.LengthCM*p.WidthCM*p.HeightCM) / factor
	if volumetric > actual {
		return volumetric
	}
	return actual
}
