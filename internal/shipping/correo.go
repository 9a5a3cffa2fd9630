package shipping

import (
	"context"
	"strconv"
)

const (
	correoCarrier          = "correo_argentino"
	correoVolumetricFactor = 6000
)

// Weight-range base tariffs in centavos, origin Río Cuarto (Córdoba).
var correoWeightTable = []struct {
	maxKG float64
	price Money
}{
	{1, 4800_00},
	{5, 6200_00},
	{10, 8500_00},
}

const correoOverweightPrice Money = 12000_00

// Correo quotes Correo Argentino from a local tariff table: a weight-range
// base price scaled by a distance factor, with home delivery at a 25%
// premium over branch pickup.
type Correo struct{}

func (Correo) Carrier() string { return correoCarrier }

func (Correo) Rates(_ context.Context, req RateReq) ([]Rate, error) {
	weight := BillableWeightKG(req.Parcel, correoVolumetricFactor)

	base := correoOverweightPrice
	for _, row := range correoWeightTable {
		if weight <= row.maxKG {
			base = row.price
			break
		}
	}

	sucursal := Money(float64(base) * distanceFactor(req.DestinationPostal))
	domicilio := sucursal * 125 / 100

	return []Rate{
		{
			OptionID:    "correo_argentino_sucursal",
			DisplayName: "Correo Argentino (Sucursal)",
			Cost:        sucursal,
			ETA:         "3 a 6 días hábiles",
			Carrier:     correoCarrier,
		},
		{
			OptionID:    "correo_argentino_domicilio",
			DisplayName: "Correo Argentino (Domicilio)",
			Cost:        domicilio,
			ETA:         "4 a 8 días hábiles",
			Carrier:     correoCarrier,
		},
	}, nil
}

// distanceFactor scales the tariff by destination: postal codes 5000-5999
// stay inside Córdoba, everything else pays the long-haul factor.
func distanceFactor(postal string) float64 {
	cp, err := strconv.Atoi(postal)
	if err == nil && cp >= 5000 && cp < 6000 {
		return 1.0
	}
	return 1.3
}
