package enums

import "fmt"

// AnalyticsEventType is the canonical event_type for analytics routing.
type AnalyticsEventType string

const (
	AnalyticsEventOrderCreated AnalyticsEventType = "order_created"
	AnalyticsEventOrderDeleted AnalyticsEventType = "order_deleted"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventOrderCreated,
	AnalyticsEventOrderDeleted,
}

// IsValid reports whether the value matches the canonical analytics event_type enum.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts raw input into AnalyticsEventType.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics event type %q", value)
}

// OrderPattern distinguishes manually keyed orders from catalog-integrated ones.
type OrderPattern string

const (
	OrderPatternSingle  OrderPattern = "single"
	OrderPatternCatalog OrderPattern = "catalog"
)
