package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	analyticspayloads "github.com/angelmondragon/shipdesk-backend/internal/analytics/payloads"
	"github.com/angelmondragon/shipdesk-backend/internal/courier"
	"github.com/angelmondragon/shipdesk-backend/internal/credits"
	"github.com/angelmondragon/shipdesk-backend/internal/inventory"
	"github.com/angelmondragon/shipdesk-backend/pkg/catalog"
	"github.com/angelmondragon/shipdesk-backend/pkg/db"
	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shipdesk-backend/pkg/enums"
	"github.com/angelmondragon/shipdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shipdesk-backend/pkg/types"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

const (
	testClientID int64 = 7
	otherClient  int64 = 8
	adminUserID  int64 = 100
	childUserID  int64 = 101
)

type fakeGateway struct {
	mu        sync.Mutex
	booking   *courier.Booking
	createErr error
	cancelErr error
	// per-waybill failures and panics, checked before cancelErr
	cancelErrs  map[string]error
	cancelPanic map[string]bool
	created     []models.Order
	cancelled   []string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, draft models.Order) (*courier.Booking, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, draft)
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.booking == nil {
		return &courier.Booking{Waybill: "WB123", OrderID: draft.ReferenceNumber, Status: "Success"}, nil
	}
	return g.booking, nil
}

func (g *fakeGateway) CancelOrder(ctx context.Context, trackingID, pickupLocation string, clientID int64) (*courier.Cancellation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = append(g.cancelled, trackingID)
	if g.cancelPanic[trackingID] {
		panic("gateway client bug")
	}
	if err := g.cancelErrs[trackingID]; err != nil {
		return nil, err
	}
	if g.cancelErr != nil {
		return nil, g.cancelErr
	}
	return &courier.Cancellation{Message: "cancelled"}, nil
}

func (g *fakeGateway) createCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.created)
}

func (g *fakeGateway) cancelCalls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.cancelled...)
}

type fakeTenants struct {
	client   models.Client
	couriers []models.CourierService
	err      error
}

func (f fakeTenants) CourierServices(ctx context.Context) ([]models.CourierService, error) {
	return f.couriers, nil
}

func (f fakeTenants) Settings(ctx context.Context, clientID int64) (*models.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	client := f.client
	client.ID = clientID
	return &client, nil
}

type fakeUsers struct {
	group string
	err   error
}

func (f fakeUsers) SubGroup(ctx context.Context, userID int64) (string, error) {
	return f.group, f.err
}

type fakeInventory struct {
	mu    sync.Mutex
	fail  map[int64]bool
	calls []int64
}

func (f *fakeInventory) Restore(ctx context.Context, order models.Order) inventory.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, order.ID)
	if f.fail[order.ID] {
		return inventory.Outcome{OrderID: order.ID, Error: "catalog unavailable"}
	}
	items := make([]catalog.Item, 0, len(order.Products))
	for _, line := range order.Products {
		items = append(items, catalog.Item{SKU: line.SKU, Quantity: line.Quantity})
	}
	return inventory.Outcome{OrderID: order.ID, Success: true, RestoredItems: items}
}

func (f *fakeInventory) restoreCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []analyticspayloads.OrderCreatedEvent
}

func (f *fakeRecorder) RecordOrderCreated(ctx context.Context, event analyticspayloads.OrderCreatedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type dispatched struct {
	clientID int64
	event    string
	payload  any
}

type fakeWebhooks struct {
	mu    sync.Mutex
	calls []dispatched
}

func (f *fakeWebhooks) Dispatch(ctx context.Context, clientID int64, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatched{clientID: clientID, event: event, payload: payload})
}

// failingDebits wraps the real ledger but refuses every debit.
type failingDebits struct {
	*credits.Ledger
}

func (f failingDebits) DeductOrderCredits(ctx context.Context, clientID, userID, orderID int64) error {
	return errors.New("ledger offline")
}

type harness struct {
	conn      *gorm.DB
	svc       *Service
	ledger    *credits.Ledger
	gateway   *fakeGateway
	inventory *fakeInventory
	recorder  *fakeRecorder
	webhooks  *fakeWebhooks
}

type harnessOption func(*Options, *harness)

func withUsers(u SubGroupResolver) harnessOption {
	return func(o *Options, _ *harness) { o.Users = u }
}

func withReferences(g *ReferenceGenerator) harnessOption {
	return func(o *Options, _ *harness) { o.References = g }
}

// failingOutbox refuses every emit, failing the surrounding transaction.
type failingOutbox struct{}

func (failingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return errors.New("outbox unavailable")
}

func withFailingOutbox() harnessOption {
	return func(o *Options, _ *harness) { o.Outbox = failingOutbox{} }
}

// racyRepo hides existing references from the pre-check, as a concurrent
// insert between check and insert would.
type racyRepo struct {
	Repository
}

func (racyRepo) ReferenceExists(ctx context.Context, clientID int64, reference string) (bool, error) {
	return false, nil
}

func withRacyReferences() harnessOption {
	return func(o *Options, _ *harness) { o.Repo = racyRepo{o.Repo} }
}

func withFailingDebits() harnessOption {
	return func(o *Options, h *harness) { o.Credits = failingDebits{h.ledger} }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Order{},
		&models.CreditBalance{},
		&models.CreditTransaction{},
		&models.OutboxEvent{},
	))

	tenants := fakeTenants{client: models.Client{
		CompanyName:            "Acme Retail",
		Name:                   "Acme Ops",
		Email:                  "ops@acme.test",
		OrderCreditCost:        1,
		ReferencePrefixEnabled: true,
		ReferencePrefix:        "REF",
	}, couriers: []models.CourierService{
		{Name: "Delhivery", Code: "delhivery", Active: true},
		{Name: "BlueDart", Code: "bluedart", Active: true},
		{Name: "Ekart", Code: "ekart", Active: false},
	}}
	outboxRepo := outbox.NewRepository(conn)
	outboxSvc := outbox.NewService(outboxRepo, nil)
	ledger, err := credits.NewLedger(credits.Options{
		DB:         conn,
		Tx:         db.Wrap(conn),
		Settings:   tenants,
		Outbox:     outboxSvc,
		OutboxRepo: outboxRepo,
	})
	require.NoError(t, err)

	h := &harness{
		conn:      conn,
		ledger:    ledger,
		gateway:   &fakeGateway{},
		inventory: &fakeInventory{fail: map[int64]bool{}},
		recorder:  &fakeRecorder{},
		webhooks:  &fakeWebhooks{},
	}
	o := Options{
		Repo:      NewRepository(conn),
		Tx:        db.Wrap(conn),
		Outbox:    outboxSvc,
		Credits:   ledger,
		Tenants:   tenants,
		Gateway:   h.gateway,
		Inventory: h.inventory,
		Analytics: h.recorder,
		Webhooks:  h.webhooks,
	}
	for _, opt := range opts {
		opt(&o, h)
	}
	h.svc, err = NewService(o)
	require.NoError(t, err)
	return h
}

func (h *harness) grant(t *testing.T, amount int) {
	t.Helper()
	_, err := h.ledger.GrantCredits(context.Background(), testClientID, adminUserID, amount)
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T) int {
	t.Helper()
	balance, err := h.ledger.Balance(context.Background(), testClientID)
	require.NoError(t, err)
	return balance
}

func (h *harness) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&count).Error)
	return count
}

func (h *harness) seedOrder(t *testing.T, o models.Order) models.Order {
	t.Helper()
	if o.ClientID == 0 {
		o.ClientID = testClientID
	}
	if o.CreatedBy == 0 {
		o.CreatedBy = adminUserID
	}
	if o.ReferenceNumber == "" {
		o.ReferenceNumber = fmt.Sprintf("SEED-%d-%s", o.ClientID, o.Name)
	}
	if o.CourierService == "" {
		o.CourierService = "BlueDart"
	}
	if o.TrackingStatus == "" {
		o.TrackingStatus = enums.TrackingStatusPending
	}
	o.Mobile = "9876543210"
	o.Address = "12 MG Road"
	o.City = "Bengaluru"
	o.State = "KA"
	o.Country = "India"
	o.Pincode = "560001"
	o.PickupLocation = "Main Warehouse"
	o.Weight = decimal.RequireFromString("0.5")
	o.PackageValue = decimal.RequireFromString("100")
	o.TotalItems = 1
	require.NoError(t, h.conn.Create(&o).Error)
	return o
}

func adminActor() visibility.Actor {
	return visibility.Actor{UserID: adminUserID, ClientID: testClientID, Role: enums.UserRoleClientAdmin}
}

func childActor(group string) visibility.Actor {
	return visibility.Actor{UserID: childUserID, ClientID: testClientID, Role: enums.UserRoleChildUser, SubGroup: group}
}

func strPtr(v string) *string { return &v }

type productLine = types.ProductLine

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
