// Package mouser implements the Mouser supplier adapter using the
// search-by-part-number endpoint of the Mouser API.
package mouser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/suppliers"
)

const defaultTimeout = 30 * time.Second

// Config carries the adapter configuration.
type Config struct {
	APIKey          string
	CompanyID       int    // destination company id for supplier links
	Locale          string // storefront host for product links, e.g. "www.mouser.com"
	DefaultCurrency string
	SearchURL       string
	Timeout         time.Duration
}

// Client interfaces with the Mouser search API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ suppliers.Adapter = (*Client)(nil)

// NewClient creates a new Mouser adapter.
func NewClient(cfg Config) *Client {
	if cfg.SearchURL == "" {
		cfg.SearchURL = "https://api.mouser.com/api/v1/search/partnumber"
	}
	if cfg.Locale == "" {
		cfg.Locale = "www.mouser.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) Name() entities.Supplier {
	return entities.SupplierMouser
}

func (c *Client) DisplayName() string {
	return entities.SupplierMouser.DisplayName()
}

type searchRequest struct {
	SearchByPartNumberRequest struct {
		MouserPartNumber string `json:"mouserPartNumber"`
	} `json:"SearchByPartNumberRequest"`
}

type searchResponse struct {
	Errors []struct {
		Message string `json:"Message"`
	} `json:"Errors"`
	SearchResults struct {
		NumberOfResult int          `json:"NumberOfResult"`
		Parts          []mouserPart `json:"Parts"`
	} `json:"SearchResults"`
}

type mouserPart struct {
	Description            string   `json:"Description"`
	Manufacturer           string   `json:"Manufacturer"`
	ManufacturerPartNumber string   `json:"ManufacturerPartNumber"`
	MouserPartNumber       string   `json:"MouserPartNumber"`
	ProductDetailURL       string   `json:"ProductDetailUrl"`
	Category               string   `json:"Category"`
	DataSheetURL           string   `json:"DataSheetUrl"`
	ImagePath              string   `json:"ImagePath"`
	Availability           string   `json:"Availability"`
	LeadTimeWeeks          *float64 `json:"LeadTimeWeeks"`
	LeadTime               string   `json:"LeadTime"`
	PriceBreaks            []struct {
		Quantity int    `json:"Quantity"`
		Price    string `json:"Price"`
		Currency string `json:"Currency"`
	} `json:"PriceBreaks"`
	ProductAttributes []struct {
		Name  string `json:"Name"`
		Value string `json:"Value"`
	} `json:"ProductAttributes"`
}

// Fetch retrieves and normalizes the part with the given part number.
func (c *Client) Fetch(ctx context.Context, partNumber string) (*entities.CanonicalPart, error) {
	if c.cfg.APIKey == "" {
		return nil, &suppliers.MisconfiguredError{
			Supplier: entities.SupplierMouser,
			Reason:   "MOUSER_API_KEY is not set",
		}
	}

	var reqBody searchRequest
	reqBody.SearchByPartNumberRequest.MouserPartNumber = partNumber

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	endpoint := c.cfg.SearchURL + "?apiKey=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &suppliers.UnavailableError{Supplier: entities.SupplierMouser, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &suppliers.MisconfiguredError{
			Supplier: entities.SupplierMouser,
			Reason:   fmt.Sprintf("API key rejected (HTTP %d)", resp.StatusCode),
		}
	case resp.StatusCode >= 500:
		return nil, &suppliers.UnavailableError{Supplier: entities.SupplierMouser, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected Mouser status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Mouser response: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("mouser API error: %s", result.Errors[0].Message)
	}
	if len(result.SearchResults.Parts) == 0 {
		return nil, suppliers.ErrNotFound
	}

	part := selectPart(result.SearchResults.Parts, partNumber)
	return c.normalize(part), nil
}

// productLink falls back to a storefront URL built from the configured
// locale when the API omits the detail link.
func (c *Client) productLink(part mouserPart) string {
	if part.ProductDetailURL != "" {
		return part.ProductDetailURL
	}
	if part.MouserPartNumber == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/ProductDetail/%s", c.cfg.Locale, url.PathEscape(part.MouserPartNumber))
}

// selectPart prefers the candidate whose SKU or MPN equals the query
// exactly (case-insensitive); searches by part number occasionally return
// related parts first.
func selectPart(candidates []mouserPart, query string) mouserPart {
	for _, candidate := range candidates {
		if strings.EqualFold(candidate.MouserPartNumber, query) || strings.EqualFold(candidate.ManufacturerPartNumber, query) {
			return candidate
		}
	}
	return candidates[0]
}

func (c *Client) normalize(part mouserPart) *entities.CanonicalPart {
	canonical := &entities.CanonicalPart{
		Description:       part.Description,
		Manufacturer:      part.Manufacturer,
		MPN:               part.ManufacturerPartNumber,
		Supplier:          entities.SupplierMouser,
		SupplierCompanyID: c.cfg.CompanyID,
		SupplierSKU:       part.MouserPartNumber,
		SupplierLink:      c.productLink(part),
		CategoryHint:      splitCategory(part.Category),
		DatasheetURL:      part.DataSheetURL,
		ImageURL:          part.ImagePath,
		Stock:             parseStock(part.Availability),
		LeadTimeWeeks:     leadTimeWeeks(part),
	}

	for _, attr := range part.ProductAttributes {
		if attr.Name == "" || attr.Value == "" {
			continue
		}
		canonical.Parameters = append(canonical.Parameters, entities.Parameter{
			Name:  attr.Name,
			Value: attr.Value,
		})
	}

	for _, pb := range part.PriceBreaks {
		if pb.Quantity <= 0 {
			continue
		}
		price, err := parsePrice(pb.Price)
		if err != nil {
			continue
		}
		currency := pb.Currency
		if currency == "" {
			currency = c.cfg.DefaultCurrency
		}
		canonical.PriceBreaks = append(canonical.PriceBreaks, entities.PriceBreak{
			Quantity: pb.Quantity,
			Price:    price,
			Currency: currency,
		})
	}

	return canonical
}

// splitCategory turns Mouser's "Passive Components -> Resistors" strings
// into path segments.
func splitCategory(category string) []string {
	if category == "" {
		return nil
	}
	var segments []string
	for _, segment := range strings.Split(category, "->") {
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return segments
}

var digitsPattern = regexp.MustCompile(`\d+`)

// parseStock extracts the leading integer from availability strings like
// "15,000 In Stock". Returns nil when no stock figure is reported.
func parseStock(availability string) *int {
	if availability == "" {
		return nil
	}
	match := digitsPattern.FindString(strings.ReplaceAll(availability, ",", ""))
	if match == "" {
		return nil
	}
	var stock int
	if _, err := fmt.Sscanf(match, "%d", &stock); err != nil {
		return nil
	}
	return &stock
}

// leadTimeWeeks prefers the numeric LeadTimeWeeks field; responses that only
// carry the display LeadTime string fall back to parsing it.
func leadTimeWeeks(part mouserPart) *float64 {
	if part.LeadTimeWeeks != nil && *part.LeadTimeWeeks >= 0 {
		return part.LeadTimeWeeks
	}
	return parseLeadTimeWeeks(part.LeadTime)
}

// parseLeadTimeWeeks converts lead time strings like "84 Days" or "12 Weeks"
// into weeks. Returns nil when the unit is unknown.
func parseLeadTimeWeeks(leadTime string) *float64 {
	match := digitsPattern.FindString(leadTime)
	if match == "" {
		return nil
	}
	var value float64
	if _, err := fmt.Sscanf(match, "%f", &value); err != nil {
		return nil
	}

	lower := strings.ToLower(leadTime)
	switch {
	case strings.Contains(lower, "week"):
		return &value
	case strings.Contains(lower, "day"):
		weeks := value / 7
		return &weeks
	default:
		return nil
	}
}

// parsePrice handles Mouser's localized price strings ("0,10 €", "$1.05",
// "1.234,56 €", "1,234.56"). The right-most of "." and "," is the decimal
// separator; everything else is a thousands separator.
func parsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, raw)

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	if lastComma > lastDot {
		// EU locale: dots group thousands, the comma is the decimal
		// separator. Several commas with no dot are thousands groups.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		if strings.Count(cleaned, ",") == 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	return decimal.NewFromString(cleaned)
}
