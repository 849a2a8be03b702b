package enums

import "fmt"

// OutboxAggregateType identifies the entity an outbox row belongs to.
type OutboxAggregateType string

const (
	AggregateOrder  OutboxAggregateType = "order"
	AggregateClient OutboxAggregateType = "client"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateClient,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType names the kind of event stored in outbox_events.
type OutboxEventType string

const (
	EventCreditDebitOwed OutboxEventType = "credit_debit_owed"
	EventOrderDeleted    OutboxEventType = "order_deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCreditDebitOwed,
	EventOrderDeleted,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}
