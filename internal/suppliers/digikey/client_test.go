package digikey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/partbridge/partbridge/internal/suppliers"
)

const detailsFixture = `{
	"ProductDescription": "RES 10K OHM 1% 1/10W 0603",
	"ManufacturerName": "Yageo",
	"ManufacturerPartNumber": "RC0603FR-0710KL",
	"DigiKeyPartNumber": "311-10.0KHRCT-ND",
	"ProductUrl": "https://www.digikey.com/en/products/detail/311-10.0KHRCT-ND",
	"PrimaryDatasheet": "https://www.yageo.com/datasheet.pdf",
	"PrimaryPhoto": {"Href": "https://media.digikey.com/photos/rc0603.jpg"},
	"QuantityAvailable": 250000,
	"Categories": [{"Name": "Resistors"}, {"Name": "Chip Resistor - Surface Mount"}],
	"LeadTime": {"Value": 12},
	"StandardPricing": [
		{"BreakQuantity": 1, "Price": 0.10, "Currency": "USD"},
		{"BreakQuantity": 10, "Price": 0.042, "Currency": "USD"}
	],
	"ProductAttributes": [
		{"Parameter": "Resistance", "Value": "10 kOhms"},
		{"Parameter": "Tolerance", "Value": "±1%"}
	]
}`

// testEnv wires a fake token endpoint and a fake product-details endpoint
// into one client.
type testEnv struct {
	client    *Client
	tokens    *TokenSource
	refreshes int32
	fetches   int32
}

func newTestEnv(t *testing.T, details http.HandlerFunc) (*testEnv, func()) {
	env := &testEnv{}

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&env.refreshes, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + string(rune('0'+n)),
			"expires_in":   600,
		})
	}))

	detailsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&env.fetches, 1)
		details(w, r)
	}))

	env.tokens = NewTokenSource("client-id", "client-secret", tokenServer.URL, 0)
	env.client = NewClient(Config{
		ClientID:          "client-id",
		ClientSecret:      "client-secret",
		CompanyID:         9,
		DefaultCurrency:   "EUR",
		ProductDetailsURL: detailsServer.URL,
	}, env.tokens)

	cleanup := func() {
		tokenServer.Close()
		detailsServer.Close()
	}
	return env, cleanup
}

func TestFetchNormalizesProduct(t *testing.T) {
	env, cleanup := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-DIGIKEY-Client-Id") != "client-id" {
			t.Errorf("X-DIGIKEY-Client-Id = %q", r.Header.Get("X-DIGIKEY-Client-Id"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(detailsFixture))
	})
	defer cleanup()

	part, err := env.client.Fetch(context.Background(), "RC0603FR-0710KL")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if part.MPN != "RC0603FR-0710KL" {
		t.Errorf("MPN = %q", part.MPN)
	}
	if part.SupplierSKU != "311-10.0KHRCT-ND" {
		t.Errorf("SupplierSKU = %q", part.SupplierSKU)
	}
	if part.SupplierCompanyID != 9 {
		t.Errorf("SupplierCompanyID = %d", part.SupplierCompanyID)
	}
	if len(part.CategoryHint) != 2 || part.CategoryHint[0] != "Resistors" {
		t.Errorf("CategoryHint = %v", part.CategoryHint)
	}
	if part.Stock == nil || *part.Stock != 250000 {
		t.Errorf("Stock = %v", part.Stock)
	}
	if part.ImageURL != "https://media.digikey.com/photos/rc0603.jpg" {
		t.Errorf("ImageURL = %q", part.ImageURL)
	}
	if part.LeadTimeWeeks == nil || *part.LeadTimeWeeks != 12 {
		t.Errorf("LeadTimeWeeks = %v", part.LeadTimeWeeks)
	}
	if len(part.Parameters) != 2 || part.Parameters[0].Name != "Resistance" {
		t.Errorf("Parameters = %v", part.Parameters)
	}
	if len(part.PriceBreaks) != 2 {
		t.Fatalf("PriceBreaks = %v", part.PriceBreaks)
	}
	if !part.PriceBreaks[1].Price.Equal(decimal.RequireFromString("0.042")) {
		t.Errorf("price = %s", part.PriceBreaks[1].Price)
	}
	if part.PriceBreaks[0].Currency != "USD" {
		t.Errorf("Currency = %q", part.PriceBreaks[0].Currency)
	}
}

func TestFetchRetriesOnceOnRejectedToken(t *testing.T) {
	var calls int32
	env, cleanup := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") != "Bearer token-2" {
			t.Errorf("retry did not carry a fresh token: %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(detailsFixture))
	})
	defer cleanup()

	part, err := env.client.Fetch(context.Background(), "RC0603FR-0710KL")
	if err != nil {
		t.Fatalf("Fetch failed after token refresh: %v", err)
	}
	if part.MPN != "RC0603FR-0710KL" {
		t.Errorf("MPN = %q", part.MPN)
	}
	if env.fetches != 2 {
		t.Errorf("expected exactly 2 product calls, got %d", env.fetches)
	}
	if env.refreshes != 2 {
		t.Errorf("expected a token refresh after the rejection, got %d refreshes", env.refreshes)
	}
}

func TestFetchRetriesOnlyOnce(t *testing.T) {
	env, cleanup := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer cleanup()

	_, err := env.client.Fetch(context.Background(), "RC0603FR-0710KL")
	if !suppliers.IsUnavailable(err) {
		t.Errorf("expected UnavailableError, got %v", err)
	}
	if env.fetches != 2 {
		t.Errorf("expected exactly 2 product calls, got %d", env.fetches)
	}
}

func TestFetchNotFound(t *testing.T) {
	env, cleanup := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer cleanup()

	_, err := env.client.Fetch(context.Background(), "DOES-NOT-EXIST")
	if !errors.Is(err, suppliers.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchServerErrorIsUnavailable(t *testing.T) {
	env, cleanup := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer cleanup()

	_, err := env.client.Fetch(context.Background(), "RC0603FR-0710KL")
	if !suppliers.IsUnavailable(err) {
		t.Errorf("expected UnavailableError, got %v", err)
	}
}

func TestFetchMissingCredentialsIsMisconfigured(t *testing.T) {
	client := NewClient(Config{}, NewTokenSource("", "", "", 0))
	_, err := client.Fetch(context.Background(), "RC0603FR-0710KL")
	if !suppliers.IsMisconfigured(err) {
		t.Errorf("expected MisconfiguredError, got %v", err)
	}
}
