package orders

import (
	"fmt"
	"time"

	"github.com/angelmondragon/shipdesk-backend/internal/courier"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/metrics"
)

// Options wires the orchestrators to their collaborators. Analytics, Webhooks,
// Users, Metrics and Logger are optional.
type Options struct {
	Repo       Repository
	Tx         txRunner
	Outbox     outboxPublisher
	Credits    CreditLedger
	Tenants    TenantSettings
	Users      SubGroupResolver
	Gateway    courier.Gateway
	Inventory  InventoryRestorer
	Analytics  AnalyticsRecorder
	Webhooks   WebhookDispatcher
	References *ReferenceGenerator
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

// Service runs order creation and bulk deletion for tenant users.
type Service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	credits    CreditLedger
	tenants    TenantSettings
	users      SubGroupResolver
	gateway    courier.Gateway
	inventory  InventoryRestorer
	analytics  AnalyticsRecorder
	webhooks   WebhookDispatcher
	references *ReferenceGenerator
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService validates the required collaborators.
func NewService(opts Options) (*Service, error) {
	switch {
	case opts.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case opts.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case opts.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case opts.Credits == nil:
		return nil, fmt.Errorf("credit ledger required")
	case opts.Tenants == nil:
		return nil, fmt.Errorf("tenant settings required")
	case opts.Gateway == nil:
		return nil, fmt.Errorf("courier gateway required")
	case opts.Inventory == nil:
		return nil, fmt.Errorf("inventory restorer required")
	}
	svc := &Service{
		repo:       opts.Repo,
		tx:         opts.Tx,
		outbox:     opts.Outbox,
		credits:    opts.Credits,
		tenants:    opts.Tenants,
		users:      opts.Users,
		gateway:    opts.Gateway,
		inventory:  opts.Inventory,
		analytics:  opts.Analytics,
		webhooks:   opts.Webhooks,
		references: opts.References,
		metrics:    opts.Metrics,
		logg:       opts.Logger,
		now:        opts.Now,
	}
	if svc.references == nil {
		svc.references = NewReferenceGenerator()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}
