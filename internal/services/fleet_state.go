package services

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"fleet-rescue-service/internal/domain"
)

// FleetState is the single owned collection of trucks, deliveries,
// committed routes, and rescue operations. Monitoring and dispatch go
// through its mutex, so concurrent failures in one tick always see an
// up-to-date rescuer pool. Everything it hands out is a copy; callers
// never touch the guarded objects directly.
type FleetState struct {
	mu         sync.Mutex
	trucks     map[int]*domain.Truck
	deliveries map[int]*domain.Delivery
	routes     *domain.RouteSet
	schedules  map[int]*domain.Schedule
	rescues    map[string]*domain.RescueOperation
	committed  map[int]string // rescuer truck id -> open rescue id
}

func NewFleetState() *FleetState {
	return &FleetState{
		trucks:     make(map[int]*domain.Truck),
		deliveries: make(map[int]*domain.Delivery),
		schedules:  make(map[int]*domain.Schedule),
		rescues:    make(map[string]*domain.RescueOperation),
		committed:  make(map[int]string),
	}
}

// LoadFleet replaces the tracked trucks and deliveries, dropping any
// previous plan and rescue bookkeeping.
func (fs *FleetState) LoadFleet(trucks []*domain.Truck, deliveries []*domain.Delivery) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.trucks = make(map[int]*domain.Truck, len(trucks))
	for _, t := range trucks {
		fs.trucks[t.TruckID] = t
	}
	fs.deliveries = make(map[int]*domain.Delivery, len(deliveries))
	for _, d := range deliveries {
		fs.deliveries[d.DeliveryID] = d
	}
	fs.routes = nil
	fs.schedules = make(map[int]*domain.Schedule)
	fs.rescues = make(map[string]*domain.RescueOperation)
	fs.committed = make(map[int]string)
}

// Trucks returns value copies of the fleet, sorted by id.
func (fs *FleetState) Trucks() []domain.Truck {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := make([]domain.Truck, 0, len(fs.trucks))
	for _, t := range fs.trucks {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b domain.Truck) int { return a.TruckID - b.TruckID })
	return out
}

// Truck returns a value copy of one truck.
func (fs *FleetState) Truck(id int) (domain.Truck, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	t, ok := fs.trucks[id]
	if !ok {
		return domain.Truck{}, false
	}
	return *t, true
}

// PlanInput returns deep copies of trucks and deliveries for a planning
// run, sorted by id. Planning mutates its inputs, so it works on copies
// outside the lock and the results come back through ApplyPlan.
func (fs *FleetState) PlanInput() ([]*domain.Truck, []*domain.Delivery) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	trucks := make([]*domain.Truck, 0, len(fs.trucks))
	for _, t := range fs.trucks {
		c := *t
		trucks = append(trucks, &c)
	}
	slices.SortFunc(trucks, func(a, b *domain.Truck) int { return a.TruckID - b.TruckID })

	deliveries := make([]*domain.Delivery, 0, len(fs.deliveries))
	for _, d := range fs.deliveries {
		c := *d
		deliveries = append(deliveries, &c)
	}
	slices.SortFunc(deliveries, func(a, b *domain.Delivery) int { return a.DeliveryID - b.DeliveryID })

	return trucks, deliveries
}

// ApplyPlan installs a freshly built plan and copies the assignment
// fields back onto the tracked deliveries.
func (fs *FleetState) ApplyPlan(routes *domain.RouteSet, schedules map[int]*domain.Schedule, planned []*domain.Delivery) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.routes = routes
	fs.schedules = schedules
	for _, p := range planned {
		if d, ok := fs.deliveries[p.DeliveryID]; ok {
			d.AssignedTruck = p.AssignedTruck
			d.Sequence = p.Sequence
			d.Status = p.Status
		}
	}
}

// Routes returns a deep copy of the committed route set, or nil when no
// plan has been applied yet.
func (fs *FleetState) Routes() *domain.RouteSet {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.routes == nil {
		return nil
	}
	return fs.routes.Clone()
}

// Schedules returns the per-truck schedules of the current plan.
func (fs *FleetState) Schedules() map[int]*domain.Schedule {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := make(map[int]*domain.Schedule, len(fs.schedules))
	for id, s := range fs.schedules {
		c := *s
		c.Stops = slices.Clone(s.Stops)
		out[id] = &c
	}
	return out
}

// UpdateTelemetry records a snapshot on its truck. Unknown trucks are
// reported, not created.
func (fs *FleetState) UpdateTelemetry(t domain.Telemetry) (domain.Truck, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	truck, ok := fs.trucks[t.TruckID]
	if !ok {
		return domain.Truck{}, fmt.Errorf("telemetry for unknown truck %d", t.TruckID)
	}
	truck.Telemetry = t
	return *truck, nil
}

// Rescues returns copies of all tracked rescue operations, newest first.
func (fs *FleetState) Rescues() []domain.RescueOperation {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := make([]domain.RescueOperation, 0, len(fs.rescues))
	for _, op := range fs.rescues {
		out = append(out, *op)
	}
	slices.SortFunc(out, func(a, b domain.RescueOperation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// CompleteRescue closes a dispatched operation: the rescuers return to
// the candidate pool, the handed-over deliveries are marked delivered,
// and the failed truck comes back into service.
func (fs *FleetState) CompleteRescue(id string, now time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	op, ok := fs.rescues[id]
	if !ok {
		return fmt.Errorf("rescue %s: unknown", id)
	}
	if err := op.TransitionTo(domain.RescueCompleted, now); err != nil {
		return err
	}

	if op.Plan != nil {
		for _, a := range op.Plan.Rescuers {
			delete(fs.committed, a.TruckID)
			for _, s := range a.Stops {
				if s.Pickup {
					continue
				}
				if d, ok := fs.deliveries[s.DeliveryID]; ok {
					d.Status = domain.DeliveryDelivered
				}
			}
		}
	}

	if truck, ok := fs.trucks[op.FailedTruckID]; ok && truck.Status == domain.TruckRescuing {
		if err := truck.TransitionTo(domain.TruckOperational); err != nil {
			return err
		}
	}

	return nil
}

// failedSnapshotLocked captures what the failed truck still owes: its
// undelivered stops, their total demand, and the original arrival
// times. Callers hold fs.mu.
func (fs *FleetState) failedSnapshotLocked(t *domain.Truck, reasons []string) *FailedTruck {
	f := &FailedTruck{
		TruckID:        t.TruckID,
		Position:       t.Position,
		FailureReasons: reasons,
		OriginalETAs:   make(map[int]time.Time),
	}

	if fs.routes != nil {
		if r, ok := fs.routes.Routes[t.TruckID]; ok {
			for _, s := range r.Stops {
				if d, ok := fs.deliveries[s.DeliveryID]; ok {
					if d.Status == domain.DeliveryDelivered || d.Status == domain.DeliveryCancelled {
						continue
					}
				}
				f.RemainingStops = append(f.RemainingStops, s)
				f.RemainingDemandKg += s.DemandKg
			}
		}
	}

	if sched, ok := fs.schedules[t.TruckID]; ok {
		for _, s := range sched.Stops {
			f.OriginalETAs[s.DeliveryID] = s.ArriveAt
		}
	}

	return f
}

// candidatesLocked builds the rescuer pool for one failure: every other
// operational truck not already committed to an open rescue. Callers
// hold fs.mu.
func (fs *FleetState) candidatesLocked(failedID int) []RescueCandidate {
	ids := make([]int, 0, len(fs.trucks))
	for id := range fs.trucks {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]RescueCandidate, 0, len(ids))
	for _, id := range ids {
		if id == failedID {
			continue
		}
		t := fs.trucks[id]
		if t.Status != domain.TruckOperational {
			continue
		}
		if _, busy := fs.committed[id]; busy {
			continue
		}

		stops := 0
		if fs.routes != nil {
			if r, ok := fs.routes.Routes[id]; ok {
				stops = len(r.Stops)
			}
		}
		out = append(out, RescueCandidate{Truck: t, StopsRemaining: stops})
	}

	return out
}

// commitLocked books a dispatched plan: rescuers leave the candidate
// pool, the route set and schedules absorb the rescue segments, and the
// handed-over deliveries move to their new trucks. Callers hold fs.mu.
func (fs *FleetState) commitLocked(
	op *domain.RescueOperation,
	plan *domain.RescuePlan,
	engine *ReassignmentEngine,
	eta *ETAEngine,
	resolver Resolver,
	now time.Time,
) {
	for _, a := range plan.Rescuers {
		fs.committed[a.TruckID] = op.ID
	}

	if fs.routes != nil {
		fs.routes = engine.ApplyRescue(plan, fs.routes, resolver, now)
		for _, a := range plan.Rescuers {
			if r, ok := fs.routes.Routes[a.TruckID]; ok {
				fs.schedules[a.TruckID] = eta.ComputeETAs(r, now, resolver)
			}
		}
		if r, ok := fs.routes.Routes[plan.FailedTruckID]; ok {
			fs.schedules[plan.FailedTruckID] = eta.ComputeETAs(r, now, resolver)
		}
	}

	for _, a := range plan.Rescuers {
		for _, s := range a.Stops {
			if s.Pickup {
				continue
			}
			if d, ok := fs.deliveries[s.DeliveryID]; ok {
				d.Status = domain.DeliveryReassigned
				d.AssignedTruck = a.TruckID
			}
		}
	}
}
