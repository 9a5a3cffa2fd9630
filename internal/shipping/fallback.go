package shipping

import "strconv"

// Static fallback tariffs in centavos, used when a carrier's provider errors
// out or returns nothing. Near/far split at postal code 2000.
var fallbackRates = map[string][]struct {
	optionID  string
	name      string
	eta       string
	nearPrice Money
	farPrice  Money
}{
	correoCarrier: {
		{
			optionID:  "correo_argentino_sucursal",
			name:      "Correo Argentino (Sucursal)",
			eta:       "3 a 5 días hábiles",
			nearPrice: 3500_00,
			farPrice:  4800_00,
		},
	},
	andreaniCarrier: {
		{
			optionID:  "andreani_domicilio",
			name:      "Andreani (Domicilio)",
			eta:       "2 a 3 días hábiles",
			nearPrice: 5200_00,
			farPrice:  7500_00,
		},
	},
}

// FallbackRates returns the static tariff for one carrier so the customer
// always sees at least one paid option per known carrier.
func FallbackRates(carrier, postal string) []Rate {
	rows, ok := fallbackRates[carrier]
	if !ok {
		return nil
	}
	cp, _ := strconv.Atoi(postal)
	rates := make([]Rate, 0, len(rows))
	for _, row := range rows {
		cost := row.farPrice
		if cp > 0 && cp < 2000 {
			cost = row.nearPrice
		}
		rates = append(rates, Rate{
			OptionID:    row.optionID,
			DisplayName: row.name,
			Cost:        cost,
			ETA:         row.eta,
			Carrier:     carrier,
		})
	}
	return rates
}
