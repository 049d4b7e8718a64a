package handlers

import (
	"net/http"

	"fleet-rescue-service/internal/api/dto"
	"fleet-rescue-service/internal/services"
)

type TruckHandler struct {
	State *services.FleetState
}

// List returns a snapshot of the tracked fleet with latest telemetry.
func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	trucks := h.State.Trucks()

	res := dto.ListTrucksResponse{Trucks: make([]dto.TruckResponse, 0, len(trucks))}
	for _, t := range trucks {
		res.Trucks = append(res.Trucks, dto.TruckResponse{
			TruckID:              t.TruckID,
			Lon:                  t.Position.Lon,
			Lat:                  t.Position.Lat,
			CapacityKg:           t.CapacityKg,
			LoadKg:               t.LoadKg,
			SpeedKmh:             t.SpeedKmh,
			Status:               string(t.Status),
			ColdChainReliability: t.ColdChainReliability,
			TemperatureC:         t.Telemetry.TemperatureC,
			BatteryPercent:       t.Telemetry.BatteryPercent,
			RefrigerationOn:      t.Telemetry.RefrigerationOn,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
