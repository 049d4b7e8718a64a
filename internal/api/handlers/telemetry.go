package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"fleet-rescue-service/internal/api/dto"
	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/services"
)

type TelemetryHandler struct {
	State   *services.FleetState
	Monitor *services.Monitor
}

// Ingest records one telemetry snapshot and runs failure evaluation on
// it immediately rather than waiting for the next monitor tick. A
// snapshot that trips the thresholds triggers the full rescue pipeline
// inline; "no rescue available" is still a 200 — the operation is
// recorded as failed, not dropped.
func (h *TelemetryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.TelemetryRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.TruckID <= 0 {
		writeError(w, r, http.StatusBadRequest, "truck_id is required")
		return
	}

	snap := domain.Telemetry{
		TruckID:         req.TruckID,
		TemperatureC:    req.TemperatureC,
		BatteryPercent:  req.BatteryPercent,
		RefrigerationOn: req.RefrigerationOn,
		RecordedAt:      time.Now(),
	}

	truck, err := h.State.UpdateTelemetry(snap)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "unknown truck")
		return
	}

	status, reasons := services.EvaluateFailure(snap, h.Monitor.Thresholds)

	res := dto.TelemetryResponse{
		TruckID: truck.TruckID,
		Status:  string(truck.Status),
		Reasons: reasons,
	}

	if status == domain.TruckFailed && truck.Status == domain.TruckOperational {
		op, err := h.Monitor.HandleFailure(r.Context(), truck.TruckID, reasons)
		if err != nil && !errors.Is(err, domain.ErrNoRescueAvailable) {
			log.Printf("telemetry rescue failed: truck_id=%d err=%v", truck.TruckID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if op != nil {
			res.RescueID = op.ID
		}
		if current, ok := h.State.Truck(truck.TruckID); ok {
			res.Status = string(current.Status)
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}
