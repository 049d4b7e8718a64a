package domain

import (
	"fmt"
	"time"
)

// DeliveryStatus tracks a delivery from creation to a terminal state.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryEnroute    DeliveryStatus = "enroute"
	DeliveryDelivered  DeliveryStatus = "delivered"
	DeliveryReassigned DeliveryStatus = "reassigned"
	DeliveryCancelled  DeliveryStatus = "cancelled"
)

// TimeWindow is the interval in which a delivery should be serviced.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Validate rejects inverted windows before any route is built.
func (w TimeWindow) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("window [%s, %s]: %w",
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), ErrInvalidTimeWindow)
	}
	return nil
}

// Contains reports whether t falls inside the window (inclusive).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Delivery is a single demand unit with a location and service window.
type Delivery struct {
	DeliveryID    int
	Location      Coordinates
	DemandKg      float64
	Window        TimeWindow
	Priority      int
	AssignedTruck int // 0 when unassigned
	Sequence      int
	Status        DeliveryStatus
}
