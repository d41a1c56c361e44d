// Package digikey implements the Digi-Key supplier adapter. Product lookups
// use the product-details endpoint and authenticate with an OAuth2
// client-credentials bearer token cached process-wide by TokenSource.
package digikey

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/suppliers"
)

const defaultTimeout = 30 * time.Second

// Config carries the adapter configuration.
type Config struct {
	ClientID          string
	ClientSecret      string
	CompanyID         int // destination company id for supplier links
	DefaultCurrency   string
	TokenURL          string
	ProductDetailsURL string
	Timeout           time.Duration
}

// Client interfaces with the Digi-Key product details API.
type Client struct {
	cfg        Config
	tokens     *TokenSource
	httpClient *http.Client
}

var _ suppliers.Adapter = (*Client)(nil)

// NewClient creates a new Digi-Key adapter sharing the given token source.
func NewClient(cfg Config, tokens *TokenSource) *Client {
	if cfg.ProductDetailsURL == "" {
		cfg.ProductDetailsURL = "https://api.digikey.com/services/products/v4/productdetails"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) Name() entities.Supplier {
	return entities.SupplierDigiKey
}

func (c *Client) DisplayName() string {
	return entities.SupplierDigiKey.DisplayName()
}

type productDetails struct {
	ProductDescription     string `json:"ProductDescription"`
	ManufacturerName       string `json:"ManufacturerName"`
	ManufacturerPartNumber string `json:"ManufacturerPartNumber"`
	DigiKeyPartNumber      string `json:"DigiKeyPartNumber"`
	ProductURL             string `json:"ProductUrl"`
	PrimaryDatasheet       string `json:"PrimaryDatasheet"`
	PrimaryPhoto           struct {
		Href string `json:"Href"`
	} `json:"PrimaryPhoto"`
	QuantityAvailable *int `json:"QuantityAvailable"`
	Categories        []struct {
		Name string `json:"Name"`
	} `json:"Categories"`
	LeadTime struct {
		Value *float64 `json:"Value"`
	} `json:"LeadTime"`
	StandardPricing []struct {
		BreakQuantity int             `json:"BreakQuantity"`
		Price         decimal.Decimal `json:"Price"`
		Currency      string          `json:"Currency"`
	} `json:"StandardPricing"`
	ProductAttributes []struct {
		Parameter string `json:"Parameter"`
		Value     string `json:"Value"`
	} `json:"ProductAttributes"`
}

// Fetch retrieves and normalizes the part with the given part number. An
// expired cached token is refreshed transparently: the first 401 invalidates
// the cache and the call is retried exactly once with a fresh token.
func (c *Client) Fetch(ctx context.Context, partNumber string) (*entities.CanonicalPart, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil, &suppliers.MisconfiguredError{
			Supplier: entities.SupplierDigiKey,
			Reason:   "DIGIKEY_CLIENT_ID and DIGIKEY_CLIENT_SECRET are required",
		}
	}

	details, retriable, err := c.fetchOnce(ctx, partNumber)
	if retriable {
		details, _, err = c.fetchOnce(ctx, partNumber)
	}
	if err != nil {
		return nil, err
	}
	return c.normalize(details), nil
}

// fetchOnce performs a single product-details call. The second return value
// is true when the bearer token was rejected and the caller may retry once
// after the cache invalidation already done here.
func (c *Client) fetchOnce(ctx context.Context, partNumber string) (*productDetails, bool, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, false, err
	}

	endpoint := c.cfg.ProductDetailsURL + "/" + url.PathEscape(partNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", c.cfg.ClientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, &suppliers.UnavailableError{Supplier: entities.SupplierDigiKey, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.tokens.Invalidate(token)
		return nil, true, &suppliers.UnavailableError{Supplier: entities.SupplierDigiKey, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, suppliers.ErrNotFound
	case resp.StatusCode >= 500:
		return nil, false, &suppliers.UnavailableError{Supplier: entities.SupplierDigiKey, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("unexpected Digi-Key status %d: %s", resp.StatusCode, string(body))
	}

	var details productDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, false, fmt.Errorf("failed to decode Digi-Key response: %w", err)
	}
	return &details, false, nil
}

func (c *Client) normalize(details *productDetails) *entities.CanonicalPart {
	canonical := &entities.CanonicalPart{
		Description:       details.ProductDescription,
		Manufacturer:      details.ManufacturerName,
		MPN:               details.ManufacturerPartNumber,
		Supplier:          entities.SupplierDigiKey,
		SupplierCompanyID: c.cfg.CompanyID,
		SupplierSKU:       details.DigiKeyPartNumber,
		SupplierLink:      details.ProductURL,
		DatasheetURL:      details.PrimaryDatasheet,
		ImageURL:          details.PrimaryPhoto.Href,
		Stock:             details.QuantityAvailable,
		LeadTimeWeeks:     details.LeadTime.Value,
	}

	for _, category := range details.Categories {
		if category.Name != "" {
			canonical.CategoryHint = append(canonical.CategoryHint, category.Name)
		}
	}

	for _, attr := range details.ProductAttributes {
		if attr.Parameter == "" || attr.Value == "" {
			continue
		}
		canonical.Parameters = append(canonical.Parameters, entities.Parameter{
			Name:  attr.Parameter,
			Value: attr.Value,
		})
	}

	for _, pricing := range details.StandardPricing {
		if pricing.BreakQuantity <= 0 {
			continue
		}
		currency := pricing.Currency
		if currency == "" {
			currency = c.cfg.DefaultCurrency
		}
		canonical.PriceBreaks = append(canonical.PriceBreaks, entities.PriceBreak{
			Quantity: pricing.BreakQuantity,
			Price:    pricing.Price,
			Currency: currency,
		})
	}

	return canonical
}
