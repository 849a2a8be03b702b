package courier

import (
	"context"
	"strings"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
)

// GatewayName is the only courier service booked through an integration.
const GatewayName = "delhivery"

// IsGatewayCourier reports whether orders for the courier are booked through the gateway.
func IsGatewayCourier(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), GatewayName)
}

// Booking is a confirmed shipment.
type Booking struct {
	Waybill string
	OrderID string
	Status  string
}

// Cancellation is an accepted cancellation.
type Cancellation struct {
	Message string
}

// Gateway books and cancels shipments with the external courier.
type Gateway interface {
	CreateOrder(ctx context.Context, draft models.Order) (*Booking, error)
	CancelOrder(ctx context.Context, trackingID, pickupLocation string, clientID int64) (*Cancellation, error)
}
