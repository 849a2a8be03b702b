package clients

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
)

// Provider resolves tenant configuration for the order workflows.
type Provider interface {
	Settings(ctx context.Context, clientID int64) (*models.Client, error)
	PickupLocation(ctx context.Context, clientID int64, name string) (*models.PickupLocation, error)
	CourierServices(ctx context.Context) ([]models.CourierService, error)
}

type source interface {
	FindByID(ctx context.Context, clientID int64) (*models.Client, error)
	ListPickupLocations(ctx context.Context, clientID int64) ([]models.PickupLocation, error)
	ListCourierServices(ctx context.Context) ([]models.CourierService, error)
}

type tenantEntry struct {
	client    *models.Client
	pickups   []models.PickupLocation
	clientAt  time.Time
	pickupsAt time.Time
}

// CachedProvider serves tenant configuration from memory and refreshes entries
// older than ttl on the next read.
type CachedProvider struct {
	src source
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	tenants   map[int64]*tenantEntry
	couriers  []models.CourierService
	courierAt time.Time
}

// CacheOption customises a CachedProvider.
type CacheOption func(*CachedProvider)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(p *CachedProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewCachedProvider wraps src with a TTL cache. A non-positive ttl disables caching.
func NewCachedProvider(src source, ttl time.Duration, opts ...CacheOption) *CachedProvider {
	p := &CachedProvider{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		tenants: map[int64]*tenantEntry{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CachedProvider) fresh(at time.Time) bool {
	if at.IsZero() || p.ttl <= 0 {
		return false
	}
	return p.now().Sub(at) < p.ttl
}

func (p *CachedProvider) entry(clientID int64) *tenantEntry {
	e, ok := p.tenants[clientID]
	if !ok {
		e = &tenantEntry{}
		p.tenants[clientID] = e
	}
	return e
}

func (p *CachedProvider) Settings(ctx context.Context, clientID int64) (*models.Client, error) {
	p.mu.Lock()
	e := p.entry(clientID)
	if e.client != nil && p.fresh(e.clientAt) {
		client := *e.client
		p.mu.Unlock()
		return &client, nil
	}
	p.mu.Unlock()

	client, err := p.src.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	e = p.entry(clientID)
	cached := *client
	e.client = &cached
	e.clientAt = p.now()
	p.mu.Unlock()
	return client, nil
}

func (p *CachedProvider) PickupLocation(ctx context.Context, clientID int64, name string) (*models.PickupLocation, error) {
	p.mu.Lock()
	e := p.entry(clientID)
	if e.pickups != nil && p.fresh(e.pickupsAt) {
		rows := e.pickups
		p.mu.Unlock()
		return findPickup(rows, name)
	}
	p.mu.Unlock()

	rows, err := p.src.ListPickupLocations(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.PickupLocation{}
	}

	p.mu.Lock()
	e = p.entry(clientID)
	e.pickups = rows
	e.pickupsAt = p.now()
	p.mu.Unlock()
	return findPickup(rows, name)
}

func (p *CachedProvider) CourierServices(ctx context.Context) ([]models.CourierService, error) {
	p.mu.Lock()
	if p.couriers != nil && p.fresh(p.courierAt) {
		out := append([]models.CourierService(nil), p.couriers...)
		p.mu.Unlock()
		return out, nil
	}
	p.mu.Unlock()

	rows, err := p.src.ListCourierServices(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.CourierService{}
	}

	p.mu.Lock()
	p.couriers = rows
	p.courierAt = p.now()
	p.mu.Unlock()
	return append([]models.CourierService(nil), rows...), nil
}
