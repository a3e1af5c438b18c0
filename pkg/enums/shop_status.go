package enums

import "fmt"

// ShopStatus represents the lifecycle of a tenant shop.
type ShopStatus string

const (
	ShopStatusActive    ShopStatus = "active"
	ShopStatusSuspended ShopStatus = "suspended"
	ShopStatusBanned    ShopStatus = "banned"
)

var validShopStatuses = []ShopStatus{
	ShopStatusActive,
	ShopStatusSuspended,
	ShopStatusBanned,
}

// String implements fmt.Stringer.
func (s ShopStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShopStatus.
func (s ShopStatus) IsValid() bool {
	for _, candidate := range validShopStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the shop may serve storefront traffic.
func (s ShopStatus) IsActive() bool {
	return s == ShopStatusActive
}

// ParseShopStatus converts raw input into a ShopStatus.
func ParseShopStatus(value string) (ShopStatus, error) {
	for _, candidate := range validShopStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shop status %q", value)
}
