package enums

// TrackingStatus is the courier lifecycle state persisted on an order.
type TrackingStatus string

const (
	TrackingStatusPending    TrackingStatus = "pending"
	TrackingStatusManual     TrackingStatus = "manual"
	TrackingStatusManifested TrackingStatus = "manifested"
)

// String implements fmt.Stringer.
func (s TrackingStatus) String() string {
	return string(s)
}
