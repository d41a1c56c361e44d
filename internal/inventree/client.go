// Package inventree is a minimal REST client for the InvenTree endpoints the
// import pipeline writes to: category listing/creation, parts, supplier
// parts, parameters and internal price breaks.
package inventree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 30 * time.Second

// Category is one node of the destination category tree.
type Category struct {
	ID         int    `json:"pk"`
	Name       string `json:"name"`
	Parent     *int   `json:"parent"`
	PathString string `json:"pathstring"`
}

// CreatePartRequest carries the fields of a new base part record.
type CreatePartRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	CategoryID   int    `json:"category"`
	Purchaseable bool   `json:"purchaseable"`
	Trackable    bool   `json:"trackable"`
	Link         string `json:"link,omitempty"`
}

// CreateSupplierPartRequest carries the fields of a new supplier link.
type CreateSupplierPartRequest struct {
	PartID            int    `json:"part"`
	SupplierCompanyID int    `json:"supplier"`
	SKU               string `json:"SKU"`
	MPN               string `json:"MPN,omitempty"`
	Link              string `json:"link,omitempty"`
}

// Client talks to one InvenTree instance using token authentication.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a destination client. Returns ErrMisconfigured when the
// base URL or token is absent.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	if baseURL == "" || token == "" {
		return nil, ErrMisconfigured
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Categories lists the full destination category tree.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.get(ctx, "/api/part/category/", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates one category under the given parent (nil for a
// top-level category).
func (c *Client) CreateCategory(ctx context.Context, name string, parent *int) (Category, error) {
	payload := map[string]any{
		"name":   name,
		"parent": parent,
	}
	var created Category
	if err := c.post(ctx, "/api/part/category/", payload, &created); err != nil {
		return Category{}, err
	}
	return created, nil
}

type createdRecord struct {
	PK int `json:"pk"`
	ID int `json:"id"`
}

func (r createdRecord) identifier() int {
	if r.PK != 0 {
		return r.PK
	}
	return r.ID
}

// CreatePart creates the base part record and returns its identifier.
func (c *Client) CreatePart(ctx context.Context, req CreatePartRequest) (int, error) {
	var created createdRecord
	if err := c.post(ctx, "/api/part/", req, &created); err != nil {
		return 0, err
	}
	return created.identifier(), nil
}

// CreateSupplierPart creates the supplier link and returns its identifier.
func (c *Client) CreateSupplierPart(ctx context.Context, req CreateSupplierPartRequest) (int, error) {
	var created createdRecord
	if err := c.post(ctx, "/api/company/part/", req, &created); err != nil {
		return 0, err
	}
	return created.identifier(), nil
}

// CreateParameter attaches one parameter record to a part.
func (c *Client) CreateParameter(ctx context.Context, partID int, name, value string) (int, error) {
	payload := map[string]any{
		"part": partID,
		"name": name,
		"data": value,
	}
	var created createdRecord
	if err := c.post(ctx, "/api/part/parameter/", payload, &created); err != nil {
		return 0, err
	}
	return created.identifier(), nil
}

// CreateInternalPrice attaches one internal price break to a part.
func (c *Client) CreateInternalPrice(ctx context.Context, partID, quantity int, price decimal.Decimal) (int, error) {
	payload := map[string]any{
		"part":     partID,
		"quantity": quantity,
		"price":    price,
	}
	var created createdRecord
	if err := c.post(ctx, "/api/part/internal-price/", payload, &created); err != nil {
		return 0, err
	}
	return created.identifier(), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &UnavailableError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
