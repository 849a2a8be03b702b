package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/shipdesk-backend/pkg/db/models"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID   int64  `json:"userId"`
	ClientID int64  `json:"clientId"`
	Role     string `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeData unwraps a stored row into its envelope and decodes the data into out.
func DecodeData(row models.OutboxEvent, out any) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &env); err != nil {
		return env, fmt.Errorf("decode envelope %s: %w", row.ID, err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env, fmt.Errorf("decode %s data %s: %w", row.EventType, row.ID, err)
		}
	}
	return env, nil
}

// CreditDebitOwed records a debit that could not be applied when the order was created.
type CreditDebitOwed struct {
	ClientID int64  `json:"clientId"`
	UserID   int64  `json:"userId"`
	OrderID  int64  `json:"orderId"`
	Amount   int    `json:"amount"`
	Reason   string `json:"reason"`
}

// OrderDeleted is emitted inside the bulk delete transaction for each removed order.
type OrderDeleted struct {
	OrderID         int64  `json:"orderId"`
	ClientID        int64  `json:"clientId"`
	ReferenceNumber string `json:"referenceNumber"`
	TrackingID      string `json:"trackingId,omitempty"`
}
