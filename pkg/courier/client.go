// Package courier is the HTTP client for the Delhivery shipment API.
package courier

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

	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://track.delhivery.com"
	createPath                 = "/api/cmu/create.json"
	editPath                   = "/api/p/edit"
	responseReadLimit    int64 = 64 * 1024
	errorBodyReadLimit   int64 = 1024
	packageStatusSuccess       = "Success"
)

var errTokenRequired = errors.New("delhivery api token is required")

// Client wraps the Delhivery create and edit endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
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

// WithBaseURL overrides the Delhivery base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a Delhivery client authenticated with the account token.
func NewClient(token string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, errTokenRequired
	}
	client := &Client{
		token:      trimmed,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Shipment is one consignment in a create request. Weight is in grams.
type Shipment struct {
	Name         string `json:"name"`
	Address      string `json:"add"`
	Pin          string `json:"pin"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Order        string `json:"order"`
	PaymentMode  string `json:"payment_mode"`
	CODAmount    string `json:"cod_amount"`
	TotalAmount  string `json:"total_amount"`
	ProductsDesc string `json:"products_desc"`
	Quantity     string `json:"quantity"`
	Weight       string `json:"weight"`
	SellerName   string `json:"seller_name,omitempty"`
	SellerGSTTIN string `json:"seller_gst_tin,omitempty"`
	ReturnAdd    string `json:"return_add,omitempty"`
	ReturnPin    string `json:"return_pin,omitempty"`
	ReturnCity   string `json:"return_city,omitempty"`
	ReturnState  string `json:"return_state,omitempty"`
	ReturnPhone  string `json:"return_phone,omitempty"`
}

// PickupLocation names the registered warehouse.
type PickupLocation struct {
	Name string `json:"name"`
}

// CreateRequest is the data document posted to the create endpoint.
type CreateRequest struct {
	Shipments      []Shipment     `json:"shipments"`
	PickupLocation PickupLocation `json:"pickup_location"`
}

// CreateResult is the normalized booking outcome.
type CreateResult struct {
	Waybill string
	OrderID string
	Status  string
}

// CancelResult is the normalized cancellation outcome.
type CancelResult struct {
	Status  bool
	Message string
}

type createResponse struct {
	Success  bool   `json:"success"`
	Remark   string `json:"rmk"`
	Error    any    `json:"error"`
	Packages []struct {
		Status  string `json:"status"`
		Waybill string `json:"waybill"`
		RefNum  string `json:"refnum"`
		Remarks any    `json:"remarks"`
	} `json:"packages"`
}

// CreateShipment books the shipment. A response that is not an explicit success
// is returned as an error carrying the upstream remark.
func (c *Client) CreateShipment(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "delhivery client not configured")
	}
	if len(req.Shipments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one shipment is required")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal delhivery create request")
	}
	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(data))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(createPath), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build delhivery create request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authorize(httpReq)

	body, err := c.do(httpReq, "create")
	if err != nil {
		return nil, err
	}

	var parsed createResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode delhivery create response")
	}
	if !parsed.Success || len(parsed.Packages) == 0 || parsed.Packages[0].Status != packageStatusSuccess {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New(createFailureDetail(parsed)), "delhivery rejected shipment")
	}
	pkg := parsed.Packages[0]
	if strings.TrimSpace(pkg.Waybill) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "delhivery returned no waybill")
	}
	return &CreateResult{
		Waybill: pkg.Waybill,
		OrderID: pkg.RefNum,
		Status:  pkg.Status,
	}, nil
}

type editRequest struct {
	Waybill      string `json:"waybill"`
	Cancellation string `json:"cancellation"`
}

type editResponse struct {
	Status  bool   `json:"status"`
	Remark  string `json:"remark"`
	Error   string `json:"error"`
	Waybill string `json:"waybill"`
	OrderID string `json:"order_id"`
}

// CancelShipment asks Delhivery to cancel a manifested waybill.
func (c *Client) CancelShipment(ctx context.Context, waybill string) (*CancelResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "delhivery client not configured")
	}
	trimmed := strings.TrimSpace(waybill)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waybill is required")
	}

	payload, err := json.Marshal(editRequest{Waybill: trimmed, Cancellation: "true"})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal delhivery cancel request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(editPath), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build delhivery cancel request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	body, err := c.do(httpReq, "cancel")
	if err != nil {
		return nil, err
	}

	var parsed editResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode delhivery cancel response")
	}
	message := strings.TrimSpace(parsed.Remark)
	if message == "" {
		message = strings.TrimSpace(parsed.Error)
	}
	if !parsed.Status {
		if message == "" {
			message = "cancellation rejected"
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New(message), "delhivery rejected cancellation")
	}
	return &CancelResult{Status: true, Message: message}, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute delhivery "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "delhivery "+op+" request failed")
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read delhivery "+op+" response")
	}
	return body, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) buildURL(path string) string {
	return strings.TrimRight(c.baseURL, "/") + path
}

func createFailureDetail(resp createResponse) string {
	if len(resp.Packages) > 0 {
		if detail := remarkText(resp.Packages[0].Remarks); detail != "" {
			return detail
		}
	}
	if detail := strings.TrimSpace(resp.Remark); detail != "" {
		return detail
	}
	if detail := remarkText(resp.Error); detail != "" {
		return detail
	}
	return "booking not confirmed"
}

// remarkText flattens the string or list forms Delhivery uses for remarks.
func remarkText(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// UpstreamDetail returns the innermost upstream message carried by a client error.
func UpstreamDetail(err error) string {
	if err == nil {
		return ""
	}
	if typed := pkgerrors.As(err); typed != nil && errors.Unwrap(typed) != nil {
		return errors.Unwrap(typed).Error()
	}
	return err.Error()
}
