package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Conflict reasons recorded by cart_conflicts_total.
const (
	ConflictShopAlreadyInCart = "shop_already_in_cart"
	ConflictTenantUnavailable = "tenant_unavailable"
	ConflictBasketClaimed     = "basket_claimed"
)

// Domain records cart and order outcomes. A nil *Domain is a no-op.
type Domain struct {
	cartItemsAdded     prometheus.Counter
	cartConflicts      *prometheus.CounterVec
	ordersCreated      *prometheus.CounterVec
	ordersCancelled    prometheus.Counter
	trackingCollisions prometheus.Counter
}

// NewDomain registers the domain counters on the provided registerer.
func NewDomain(reg prometheus.Registerer) *Domain {
	if reg == nil {
		return &Domain{}
	}
	d := &Domain{
		cartItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_items_added_total",
			Help: "Items successfully added to a cart.",
		}),
		cartConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_conflicts_total",
			Help: "Cart operations rejected by a cart invariant.",
		}, []string{"reason"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created, by payment method.",
		}, []string{"payment_method"}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled by buyers.",
		}),
		trackingCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_tracking_id_collisions_total",
			Help: "Order inserts retried because the tracking id was taken.",
		}),
	}
	reg.MustRegister(d.cartItemsAdded, d.cartConflicts, d.ordersCreated, d.ordersCancelled, d.trackingCollisions)
	return d
}

func (d *Domain) IncCartItemAdded() {
	if d == nil || d.cartItemsAdded == nil {
		return
	}
	d.cartItemsAdded.Inc()
}

func (d *Domain) IncCartConflict(reason string) {
	if d == nil || d.cartConflicts == nil {
		return
	}
	d.cartConflicts.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (d *Domain) IncOrderCreated(paymentMethod string) {
	if d == nil || d.ordersCreated == nil {
		return
	}
	d.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

func (d *Domain) IncOrderCancelled() {
	if d == nil || d.ordersCancelled == nil {
		return
	}
	d.ordersCancelled.Inc()
}

func (d *Domain) IncTrackingCollision() {
	if d == nil || d.trackingCollisions == nil {
		return
	}
	d.trackingCollisions.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
