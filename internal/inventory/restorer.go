package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/shipdesk-backend/pkg/catalog"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
)

// RestockReason tags every restock triggered by an order deletion.
const RestockReason = "order_deletion"

const (
	msgNoCredentials = "catalog credentials not configured"
	msgNoItems       = "no restorable items"
)

type restockAPI interface {
	Restock(ctx context.Context, creds catalog.Credentials, req catalog.RestockRequest) (*catalog.RestockResult, error)
}

type credentialSource interface {
	FindByClientID(ctx context.Context, clientID int64) (*models.CatalogCredential, error)
}

// Outcome is the per-order restoration result reported to the caller.
type Outcome struct {
	OrderID       int64          `json:"orderId"`
	Success       bool           `json:"success"`
	RestoredItems []catalog.Item `json:"restoredItems,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Restorer returns reserved stock to the catalog when orders are deleted.
type Restorer struct {
	api       restockAPI
	creds     credentialSource
	namespace string
	logg      *logger.Logger
}

func NewRestorer(api restockAPI, creds credentialSource, namespace string, logg *logger.Logger) (*Restorer, error) {
	if api == nil {
		return nil, fmt.Errorf("catalog api required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credential source required")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "shipdesk"
	}
	return &Restorer{api: api, creds: creds, namespace: namespace, logg: logg}, nil
}

// ScopedOrderID is the order id shared with the catalog; it also keys restock idempotency.
func ScopedOrderID(namespace string, orderID int64) string {
	return fmt.Sprintf("%s_order_%d", namespace, orderID)
}

// Restore never returns an error; failures are reported in the Outcome.
func (r *Restorer) Restore(ctx context.Context, order models.Order) Outcome {
	out := Outcome{OrderID: order.ID}
	if r.logg != nil {
		ctx = r.logg.WithOrderID(ctx, order.ID)
	}

	items := order.Products.Restorable()
	if len(items) == 0 {
		out.Error = msgNoItems
		r.warn(ctx, msgNoItems)
		return out
	}

	cred, err := r.creds.FindByClientID(ctx, order.ClientID)
	if err != nil {
		out.Error = fmt.Sprintf("load catalog credentials: %v", err)
		r.warn(ctx, out.Error)
		return out
	}
	if cred == nil {
		out.Error = msgNoCredentials
		r.warn(ctx, msgNoCredentials)
		return out
	}

	req := catalog.RestockRequest{
		OrderID: ScopedOrderID(r.namespace, order.ID),
		Items:   make([]catalog.Item, 0, len(items)),
		Reason:  RestockReason,
	}
	for _, line := range items {
		req.Items = append(req.Items, catalog.Item{SKU: strings.TrimSpace(line.SKU), Quantity: line.Quantity})
	}
	creds := catalog.Credentials{APIKey: cred.APIKey, ClientID: cred.CatalogClientID}
	if cred.BaseURL != nil {
		creds.BaseURL = *cred.BaseURL
	}

	result, err := r.api.Restock(ctx, creds, req)
	if err != nil {
		out.Error = err.Error()
		if r.logg != nil {
			r.logg.Error(ctx, "inventory restore failed", err)
		}
		return out
	}
	out.Success = true
	out.RestoredItems = result.RestoredItems
	return out
}

func (r *Restorer) warn(ctx context.Context, msg string) {
	if r.logg != nil {
		r.logg.Warn(ctx, "inventory restore skipped: "+msg)
	}
}
