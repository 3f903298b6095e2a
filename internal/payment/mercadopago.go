package payment

import (
	"bytes"         // Request body buffer
	"context"       // Request-scoped cancellation
	"encoding/json" // JSON encoding/decoding
	"errors"        // Sentinel errors
	"fmt"           // Error formatting
	"io"            // Response body reading
	"net/http"      // HTTP client

	"shop_system/internal/domain" // Order and line item models
)

// ErrMissingToken is returned when no access token is configured; the caller
// must not reach the network in that case.
var ErrMissingToken = errors.New("payment provider access token missing")

// Item is one line of the manifest submitted to the provider
type Item struct {
	Title     string  `json:"title"`      // Product name
	Quantity  int     `json:"quantity"`   // Units purchased
	UnitPrice float64 `json:"unit_price"` // Price per unit
}

// BackURLs are where the provider redirects the buyer after payment
type BackURLs struct {
	Success string `json:"success"` // Payment approved
	Failure string `json:"failure"` // Payment rejected
	Pending string `json:"pending"` // Payment still processing
}

// preferenceRequest is the payload sent to the preference endpoint
type preferenceRequest struct {
	Items             []Item   `json:"items"`              // Line item manifest
	BackURLs          BackURLs `json:"back_urls"`          // Redirect targets
	ExternalReference string   `json:"external_reference"` // Our order reference
}

// Preference is the provider's response to a created preference
type Preference struct {
	ID        string `json:"id"`         // Provider-side preference ID
	InitPoint string `json:"init_point"` // Checkout URL to redirect the buyer to
}

// Client talks to the Mercado Pago preference API
type Client struct {
	AccessToken string       // Bearer credential
	APIURL      string       // Preference endpoint
	HTTPClient  *http.Client // Injectable for tests
}

// NewClient builds a preference client with the default HTTP client
func NewClient(accessToken, apiURL string) *Client {
	return &Client{AccessToken: accessToken, APIURL: apiURL, HTTPClient: http.DefaultClient}
}

// ManifestFromOrder converts an order's line items into the provider manifest
func ManifestFromOrder(order *domain.Order) []Item {
	items := make([]Item, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, Item{
			Title:     it.Product.Name,  // Product name as the item title
			Quantity:  it.Quantity,      // Units purchased
			UnitPrice: it.Product.Price, // Price per unit
		})
	}
	return items
}

// CreatePreference submits a manifest to the provider and returns the created
// payment session. A non-2xx response is returned as an error carrying the
// provider's response body.
func (c *Client) CreatePreference(ctx context.Context, items []Item, backURLs BackURLs, externalRef string) (*Preference, error) {
	if c.AccessToken == "" {
		return nil, ErrMissingToken // Never touch the network without a credential
	}
	payload := preferenceRequest{
		Items:             items,       // Line item manifest
		BackURLs:          backURLs,    // Redirect targets
		ExternalReference: externalRef, // Our order reference
	}
	body, err := json.Marshal(payload) // Encode the payload
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken) // Bearer credential
	req.Header.Set("Content-Type", "application/json")       // JSON payload

	resp, err := c.HTTPClient.Do(req) // Blocking synchronous call
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body) // Read body for both parse and error paths
	// The preference endpoint answers 200 or 201 on success
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, string(respBody))
	}
	var pref Preference // Parse the created preference
	if err := json.Unmarshal(respBody, &pref); err != nil {
		return nil, fmt.Errorf("failed to parse payment provider response: %w", err)
	}
	if pref.InitPoint == "" {
		return nil, errors.New("payment provider returned empty checkout URL")
	}
	return &pref, nil
}
