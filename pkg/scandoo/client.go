package scandoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors mapped from API response codes.
var (
	// ErrNotFound means no product matches the requested code.
	ErrNotFound = errors.New("product not found")
	// ErrInvalid means the server rejected the input (HTTP 400).
	ErrInvalid = errors.New("invalid input")
)

// Product is the wire shape of a catalog record.
type Product struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Code  string  `json:"code"`
	Price float64 `json:"price"`
}

// APIError carries the server's error body for non-2xx responses that are
// not covered by a sentinel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Client is a minimal HTTP client for the scandoo product API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient constructs a new Client with sane defaults.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// GetProduct fetches the product with the given code. Returns ErrNotFound
// when no record matches and ErrInvalid for an empty/rejected code.
func (c *Client) GetProduct(ctx context.Context, code string) (*Product, error) {
	var p Product
	path := "/products/" + url.PathEscape(code)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a new product record.
func (c *Client) CreateProduct(ctx context.Context, title, code string, price float64) (*Product, error) {
	body := Product{Title: title, Code: code, Price: price}
	var p Product
	if err := c.doRequest(ctx, http.MethodPost, "/products", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces the fields of the record currently holding code.
func (c *Client) UpdateProduct(ctx context.Context, code, title, newCode string, price float64) (*Product, error) {
	body := Product{Title: title, Code: newCode, Price: price}
	var p Product
	path := "/products/" + url.PathEscape(code)
	if err := c.doRequest(ctx, http.MethodPut, path, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// doRequest performs an HTTP request with a JSON payload and decodes the
// JSON response into result. Error bodies ({"error": "..."}) are mapped to
// sentinels where possible, otherwise to *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, result any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := fmt.Sprintf("server error (%d)", resp.StatusCode)
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrInvalid, msg)
		default:
			return &APIError{Status: resp.StatusCode, Message: msg}
		}
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
