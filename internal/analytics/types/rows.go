package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// OrderEventRow mirrors the order_events BigQuery schema.
type OrderEventRow struct {
	EventID        string             `bigquery:"event_id"`
	EventType      string             `bigquery:"event_type"`
	OccurredAt     time.Time          `bigquery:"occurred_at"`
	OrderID        string             `bigquery:"order_id"`
	ClientID       int64              `bigquery:"client_id"`
	ActorUserID    *int64             `bigquery:"actor_user_id"`
	ActorRole      *string            `bigquery:"actor_role"`
	Pattern        *string            `bigquery:"pattern"`
	CourierService *string            `bigquery:"courier_service"`
	TrackingID     *string            `bigquery:"tracking_id"`
	Payload        cbigquery.NullJSON `bigquery:"payload"`
}
