package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
)

// EventOrderCreated is sent after an order is persisted.
const EventOrderCreated = "order.created"

const (
	HeaderSignature = "X-Shipdesk-Signature"
	HeaderEvent     = "X-Shipdesk-Event"
	HeaderDelivery  = "X-Shipdesk-Delivery"

	defaultTimeout = 10 * time.Second
)

type endpointSource interface {
	ActiveEndpoints(ctx context.Context, clientID int64) ([]models.WebhookEndpoint, error)
}

// Dispatcher delivers signed event callbacks at most once, off the request path.
type Dispatcher struct {
	endpoints  endpointSource
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	logg       *logger.Logger

	wg sync.WaitGroup
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(d *Dispatcher) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

func NewDispatcher(endpoints endpointSource, logg *logger.Logger, opts ...Option) (*Dispatcher, error) {
	if endpoints == nil {
		return nil, fmt.Errorf("endpoint source required")
	}
	d := &Dispatcher{
		endpoints:  endpoints,
		httpClient: &http.Client{},
		userAgent:  "shipdesk-webhooks/1.0",
		timeout:    defaultTimeout,
		logg:       logg,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Dispatch serialises payload immediately and delivers it in the background.
// The caller's cancellation does not stop delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, clientID int64, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logError(ctx, "webhook payload encode failed", err)
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliverAll(detached, clientID, event, body)
	}()
}

// Wait blocks until every in-flight delivery finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliverAll(ctx context.Context, clientID int64, event string, body []byte) {
	if d.logg != nil {
		ctx = d.logg.WithClientID(ctx, clientID)
	}
	endpoints, err := d.endpoints.ActiveEndpoints(ctx, clientID)
	if err != nil {
		d.logError(ctx, "load webhook endpoints failed", err)
		return
	}
	for _, endpoint := range endpoints {
		if !endpoint.Subscribes(event) {
			continue
		}
		status, err := d.deliver(ctx, endpoint, event, body)
		if d.logg == nil {
			continue
		}
		epCtx := d.logg.WithFields(ctx, map[string]any{
			"webhook_endpoint_id": endpoint.ID,
			"event":               event,
			"status":              status,
		})
		if err != nil {
			d.logg.Error(epCtx, "webhook delivery failed", err)
			continue
		}
		d.logg.Debug(epCtx, "webhook delivered")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, endpoint models.WebhookEndpoint, event string, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set(HeaderEvent, event)
	req.Header.Set(HeaderDelivery, uuid.NewString())
	req.Header.Set(HeaderSignature, Sign(endpoint.Secret, body))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, fmt.Errorf("endpoint responded %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func (d *Dispatcher) logError(ctx context.Context, msg string, err error) {
	if d.logg != nil {
		d.logg.Error(ctx, msg, err)
	}
}
