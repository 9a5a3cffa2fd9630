package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lauritienda/backend-tienda/internal/resilience"
)

const (
	andreaniCarrier          = "andreani"
	andreaniVolumetricFactor = 5000
	// Safety margin over the quoted tariff.
	andreaniMarginPct = 3

	defaultContratoSucursal  = "400006709"
	defaultContratoDomicilio = "400006710"
)

// Andreani quotes the Andreani tarifas API, once per contract (sucursal and
// domicilio).
type Andreani struct {
	HTTP              resilience.HTTPClient
	BaseURL           string
	CredentialID      string
	ClientCode        string
	ContratoSucursal  string
	ContratoDomicilio string
}

func (a *Andreani) Carrier() string { return andreaniCarrier }

type andreaniTariff struct {
	TarifaConIva struct {
		Total json.Number `json:"total"`
	} `json:"tarifaConIva"`
}

// Rates queries one tariff per contract. Without a credential the provider
// returns no rates, which pushes the aggregator onto the fallback table.
func (a *Andreani) Rates(ctx context.Context, req RateReq) ([]Rate, error) {
	if a.CredentialID == "" {
		return nil, nil
	}
	contracts := []struct {
		optionID string
		name     string
		contrato string
	}{
		{"andreani_sucursal", "Andreani (Sucursal)", a.contratoOr(a.ContratoSucursal, defaultContratoSucursal)},
		{"andreani_domicilio", "Andreani (Domicilio)", a.contratoOr(a.ContratoDomicilio, defaultContratoDomicilio)},
	}

	kilos := BillableWeightKG(req.Parcel, andreaniVolumetricFactor)
	volumeM3 := float64(req.Parcel.LengthCM*req.Parcel.WidthCM*req.Parcel.HeightCM) / 1_000_000

	var rates []Rate
	for _, c := range contracts {
		cost, err := a.tariff(ctx, req.DestinationPostal, c.contrato, kilos, volumeM3)
		if err != nil {
			return rates, fmt.Errorf("andreani %s: %w", c.optionID, err)
		}
		if cost <= 0 {
			continue
		}
		rates = append(rates, Rate{
			OptionID:    c.optionID,
			DisplayName: c.name,
			Cost:        cost,
			ETA:         "2 a 4 días hábiles",
			Carrier:     andreaniCarrier,
		})
	}
	return rates, nil
}

func (a *Andreani) tariff(ctx context.Context, postal, contrato string, kilos, volumeM3 float64) (Money, error) {
	q := url.Values{}
	q.Set("cpDestino", postal)
	q.Set("contrato", contrato)
	q.Set("cliente", a.ClientCode)
	q.Set("bultos[0][valorDeclarado]", "5000")
	q.Set("bultos[0][volumen]", fmt.Sprintf("%g", volumeM3))
	q.Set("bultos[0][kilos]", fmt.Sprintf("%.2f", kilos))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/v1/tarifas?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Authorization-Id", a.CredentialID)

	resp, err := a.HTTP.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("tarifas returned %s", resp.Status)
	}
	var body andreaniTariff
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	totalPesos, err := body.TarifaConIva.Total.Float64()
	if err != nil {
		return 0, err
	}
	cents := Money(totalPesos * 100)
	return cents * (100 + andreaniMarginPct) / 100, nil
}

func (a *Andreani) contratoOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
