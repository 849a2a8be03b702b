package orders

import (
	"context"

	"gorm.io/gorm"

	analyticspayloads "github.com/angelmondragon/shipdesk-backend/internal/analytics/payloads"
	"github.com/angelmondragon/shipdesk-backend/internal/inventory"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shipdesk-backend/pkg/pagination"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, clientID, orderID int64) (*models.Order, error)
	FindScoped(ctx context.Context, scope visibility.Scope, orderID int64) (*models.Order, error)
	FindByIDsScoped(ctx context.Context, scope visibility.Scope, ids []int64) ([]models.Order, error)
	CountInTenant(ctx context.Context, clientID int64, ids []int64) (int64, error)
	ReferenceExists(ctx context.Context, clientID int64, reference string) (bool, error)
	ListScoped(ctx context.Context, scope visibility.Scope, params pagination.Params) (*OrderList, error)
	DeleteByIDs(ctx context.Context, clientID int64, ids []int64) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreditLedger gates and charges order creation.
type CreditLedger interface {
	OrderCreditCost(ctx context.Context, clientID int64) (int, error)
	HasSufficientCredits(ctx context.Context, clientID int64, cost int) (bool, error)
	DeductOrderCredits(ctx context.Context, clientID, userID, orderID int64) error
	RecordDebitOwed(ctx context.Context, owed outbox.CreditDebitOwed) error
}

// TenantSettings resolves the per-client configuration and the courier
// service catalogue.
type TenantSettings interface {
	Settings(ctx context.Context, clientID int64) (*models.Client, error)
	CourierServices(ctx context.Context) ([]models.CourierService, error)
}

// SubGroupResolver returns the sub-group label of a user, or "" when none.
type SubGroupResolver interface {
	SubGroup(ctx context.Context, userID int64) (string, error)
}

// AnalyticsRecorder receives order telemetry without blocking.
type AnalyticsRecorder interface {
	RecordOrderCreated(ctx context.Context, event analyticspayloads.OrderCreatedEvent)
}

// WebhookDispatcher notifies tenant endpoints asynchronously.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, clientID int64, event string, payload any)
}

// InventoryRestorer returns catalog stock for a deleted order.
type InventoryRestorer interface {
	Restore(ctx context.Context, order models.Order) inventory.Outcome
}
