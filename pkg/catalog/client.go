// Package catalog talks to the external inventory service that owns stock levels.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

const (
	restockPath              = "/api/v1/inventory/restock"
	errorBodyReadLimit int64 = 1024
)

// Client posts restock requests on behalf of a tenant.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a catalog client. The base URL may be empty when every
// tenant credential carries its own override.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Credentials identify the tenant to the inventory service.
type Credentials struct {
	APIKey   string
	ClientID string
	BaseURL  string
}

// Item is one SKU quantity to put back in stock.
type Item struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// RestockRequest is the body of a restock call. WebhookID is always sent as null.
type RestockRequest struct {
	OrderID   string  `json:"orderId"`
	Items     []Item  `json:"items"`
	Reason    string  `json:"reason"`
	WebhookID *string `json:"webhookId"`
}

// RestockResult reports what the inventory service applied.
type RestockResult struct {
	Success       bool   `json:"success"`
	RestoredItems []Item `json:"restoredItems"`
	Message       string `json:"message,omitempty"`
}

// Restock asks the inventory service to return items to stock. The order id
// doubles as the Idempotency-Key so a retried deletion cannot restock twice.
func (c *Client) Restock(ctx context.Context, creds Credentials, req RestockRequest) (*RestockResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	if strings.TrimSpace(creds.APIKey) == "" || strings.TrimSpace(creds.ClientID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog credentials are incomplete")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items to restock")
	}
	base := strings.TrimSpace(creds.BaseURL)
	if base == "" {
		base = c.baseURL
	}
	if base == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog base url not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal restock request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(base, "/")+restockPath, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build restock request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", creds.APIKey)
	httpReq.Header.Set("X-Client-Id", creds.ClientID)
	httpReq.Header.Set("Idempotency-Key", req.OrderID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute restock request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "restock request failed")
	}

	var result RestockResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode restock response")
	}
	if !result.Success {
		msg := strings.TrimSpace(result.Message)
		if msg == "" {
			msg = "restock not applied"
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%s", msg), "restock rejected")
	}
	if len(result.RestoredItems) == 0 {
		result.RestoredItems = req.Items
	}
	return &result, nil
}
