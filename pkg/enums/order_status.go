package enums

import "fmt"

// OrderStatus tracks an order through fulfillment.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// forward transitions an owner may apply; cancellation is handled separately.
var fulfillmentTransitions = map[OrderStatus]OrderStatus{
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Cancellable reports whether a buyer may still cancel.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusProcessing
}

// NextFulfillment returns the status that follows s, if any.
func (s OrderStatus) NextFulfillment() (OrderStatus, bool) {
	next, ok := fulfillmentTransitions[s]
	return next, ok
}

// CanAdvanceTo reports whether target directly follows s in fulfillment.
func (s OrderStatus) CanAdvanceTo(target OrderStatus) bool {
	next, ok := fulfillmentTransitions[s]
	return ok && next == target
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
