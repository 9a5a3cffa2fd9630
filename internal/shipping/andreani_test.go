package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lauritienda/backend-tienda/internal/resilience"
)

func andreaniTestServer(t *testing.T, total string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tarifas", r.URL.Path)
		require.Equal(t, "cred-123", r.Header.Get("X-Authorization-Id"))
		require.Equal(t, "5800", r.URL.Query().Get("cpDestino"))
		require.NotEmpty(t, r.URL.Query().Get("contrato"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tarifaConIva":{"total":` + total + `}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAndreaniRatesAppliesMargin(t *testing.T) {
	srv := andreaniTestServer(t, "10000")
	a := &Andreani{
		HTTP:         resilience.HTTPClient{Client: srv.Client()},
		BaseURL:      srv.URL,
		CredentialID: "cred-123",
		ClientCode:   "CL0003750",
	}

	rates, err := a.Rates(context.Background(), RateReq{
		DestinationPostal: "5800",
		Parcel:            Parcel{WeightGrams: 500, LengthCM: 25, WidthCM: 20, HeightCM: 10},
	})
	require.NoError(t, err)
	require.Len(t, rates, 2)
	// 10000 pesos + 3% margin, in centavos.
	require.Equal(t, Money(1030000), rates[0].Cost)
	require.Equal(t, "andreani_sucursal", rates[0].OptionID)
	require.Equal(t, "andreani_domicilio", rates[1].OptionID)
}

func TestAndreaniZeroTariffSkipped(t *testing.T) {
	srv := andreaniTestServer(t, "0")
	a := &Andreani{
		HTTP:         resilience.HTTPClient{Client: srv.Client()},
		BaseURL:      srv.URL,
		CredentialID: "cred-123",
	}

	rates, err := a.Rates(context.Background(), RateReq{DestinationPostal: "5800"})
	require.NoError(t, err)
	require.Empty(t, rates)
}

func TestAndreaniWithoutCredentialReturnsNothing(t *testing.T) {
	a := &Andreani{}
	rates, err := a.Rates(context.Background(), RateReq{DestinationPostal: "5800"})
	require.NoError(t, err)
	require.Empty(t, rates)
}

func TestAndreaniServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	a := &Andreani{
		HTTP:         resilience.HTTPClient{Client: srv.Client()},
		BaseURL:      srv.URL,
		CredentialID: "cred-123",
	}

	_, err := a.Rates(context.Background(), RateReq{DestinationPostal: "5800"})
	require.Error(t, err)
}
