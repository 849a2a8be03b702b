package payloads

import "github.com/angelmondragon/shipdesk-backend/pkg/enums"

// OrderCreatedEvent is the telemetry recorded after an order is persisted.
type OrderCreatedEvent struct {
	OrderID         int64              `json:"orderId"`
	ClientID        int64              `json:"clientId"`
	UserID          int64              `json:"userId"`
	ActorRole       string             `json:"actorRole"`
	Pattern         enums.OrderPattern `json:"pattern"`
	ReferenceNumber string             `json:"referenceNumber"`
	CourierService  string             `json:"courierService"`
	TrackingID      string             `json:"trackingId,omitempty"`
	TotalItems      int                `json:"totalItems"`
	PackageValue    string             `json:"packageValue"`
	IsCOD           bool               `json:"isCod"`
}
