package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

// Monitor drives the periodic telemetry sweep: every tick it evaluates
// each operational truck against the failure thresholds and runs the
// full rescue pipeline for any truck that trips them.
type Monitor struct {
	State      *FleetState
	Thresholds config.FailureThresholds
	Engine     *ReassignmentEngine
	ETA        *ETAEngine
	Resolver   Resolver
	Publisher  ports.EventPublisher
	Interval   time.Duration
	Logger     *log.Logger

	now func() time.Time
}

func NewMonitor(
	state *FleetState,
	thresholds config.FailureThresholds,
	engine *ReassignmentEngine,
	eta *ETAEngine,
	resolver Resolver,
	publisher ports.EventPublisher,
) *Monitor {
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	return &Monitor{
		State:      state,
		Thresholds: thresholds,
		Engine:     engine,
		ETA:        eta,
		Resolver:   resolver,
		Publisher:  publisher,
		Interval:   10 * time.Second,
		Logger:     log.Default(),
		now:        time.Now,
	}
}

// Run ticks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick evaluates every operational truck's latest telemetry and handles
// each detected failure in turn. Failures handled earlier in the tick
// shrink the rescuer pool seen by later ones.
func (m *Monitor) Tick(ctx context.Context) {
	for _, t := range m.State.Trucks() {
		if t.Status != domain.TruckOperational {
			continue
		}
		status, reasons := EvaluateFailure(t.Telemetry, m.Thresholds)
		if status != domain.TruckFailed {
			continue
		}
		if _, err := m.HandleFailure(ctx, t.TruckID, reasons); err != nil {
			m.Logger.Printf("op=monitor truck_id=%d err=%v", t.TruckID, err)
		}
	}
}

// HandleFailure runs detection-to-dispatch for one truck inside the
// fleet-state exclusive section, so scoring and commitment never race
// with another failure over the candidate pool. A truck that already
// left the operational state is skipped without error.
func (m *Monitor) HandleFailure(ctx context.Context, truckID int, reasons []string) (*domain.RescueOperation, error) {
	fs := m.State
	fs.mu.Lock()
	defer fs.mu.Unlock()

	truck, ok := fs.trucks[truckID]
	if !ok {
		return nil, fmt.Errorf("handle failure: unknown truck %d", truckID)
	}
	if truck.Status != domain.TruckOperational {
		return nil, nil
	}

	now := m.now()
	if err := truck.TransitionTo(domain.TruckFailed); err != nil {
		return nil, err
	}
	m.Logger.Printf("op=failure truck_id=%d reasons=%q", truckID, reasons)
	m.publish(ctx, "truck.failed", map[string]any{
		"truck_id": truckID,
		"reasons":  reasons,
		"at":       now,
	})

	op := domain.NewRescueOperation(truckID, now)
	fs.rescues[op.ID] = op
	if err := op.TransitionTo(domain.RescueScoring, now); err != nil {
		return op, err
	}

	failed := fs.failedSnapshotLocked(truck, reasons)
	candidates := fs.candidatesLocked(truckID)

	plan, err := m.Engine.SelectRescue(failed, candidates, m.Resolver, now)
	if err != nil {
		if terr := op.TransitionTo(domain.RescueFailed, now); terr != nil {
			return op, terr
		}
		m.Logger.Printf("op=rescue rescue_id=%s truck_id=%d status=unavailable err=%v", op.ID, truckID, err)
		m.publish(ctx, "rescue.unavailable", map[string]any{
			"rescue_id": op.ID,
			"truck_id":  truckID,
			"reason":    err.Error(),
		})
		return op, err
	}

	op.Plan = plan
	if err := op.TransitionTo(domain.RescueDispatched, now); err != nil {
		return op, err
	}
	if err := truck.TransitionTo(domain.TruckRescuing); err != nil {
		return op, err
	}
	fs.commitLocked(op, plan, m.Engine, m.ETA, m.Resolver, now)

	m.Logger.Printf("op=rescue rescue_id=%s truck_id=%d rescuers=%d split=%t eta_preserved=%t",
		op.ID, truckID, len(plan.Rescuers), plan.Split, plan.EtaPreserved)
	m.publish(ctx, "rescue.dispatched", rescueEvent(op))

	return op, nil
}

func (m *Monitor) publish(ctx context.Context, key string, payload any) {
	if err := m.Publisher.Publish(ctx, key, payload); err != nil {
		m.Logger.Printf("op=publish key=%s err=%v", key, err)
	}
}

// rescueEvent flattens a dispatched operation into the published
// payload shape.
func rescueEvent(op *domain.RescueOperation) map[string]any {
	rescuers := make([]map[string]any, 0, len(op.Plan.Rescuers))
	for _, a := range op.Plan.Rescuers {
		rescuers = append(rescuers, map[string]any{
			"truck_id":     a.TruckID,
			"allocated_kg": a.AllocatedKg,
			"load_percent": a.LoadPercent,
			"distance_m":   a.DistanceMeters,
			"eta_s":        a.EtaSeconds,
		})
	}
	return map[string]any{
		"rescue_id":     op.ID,
		"truck_id":      op.FailedTruckID,
		"split":         op.Plan.Split,
		"eta_preserved": op.Plan.EtaPreserved,
		"rescuers":      rescuers,
	}
}
