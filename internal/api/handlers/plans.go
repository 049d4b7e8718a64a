package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"slices"
	"time"

	"fleet-rescue-service/internal/api/dto"
	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/services"
)

type PlanHandler struct {
	State   *services.FleetState
	Planner *services.Planner
}

// Plan builds routes and schedules for the current fleet and installs
// them as the committed plan. Overflow deliveries come back in the
// response rather than failing the request.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	depart := time.Now()
	if req.DepartAt != nil {
		depart = *req.DepartAt
	}

	trucks, deliveries := h.State.PlanInput()
	if len(trucks) == 0 {
		writeError(w, r, http.StatusConflict, "no fleet loaded")
		return
	}

	plan, err := h.Planner.Plan(r.Context(), trucks, deliveries, depart)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		log.Printf("plan fleet failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.State.ApplyPlan(plan.Routes, plan.Schedules, deliveries)

	res := dto.PlanResponse{
		DepartAt:            depart,
		Routes:              make([]dto.RouteResponse, 0, len(plan.Routes.Routes)),
		OverflowDeliveryIDs: make([]int, 0, len(plan.Overflow)),
		DegradedPairs:       plan.DegradedPairs,
	}
	for _, d := range plan.Overflow {
		res.OverflowDeliveryIDs = append(res.OverflowDeliveryIDs, d.DeliveryID)
	}

	ids := make([]int, 0, len(plan.Routes.Routes))
	for id := range plan.Routes.Routes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		route := plan.Routes.Routes[id]
		schedule := plan.Schedules[id]

		rr := dto.RouteResponse{
			TruckID:              route.TruckID,
			Feasible:             route.Feasible,
			TotalDistanceMeters:  route.TotalDistanceMeters,
			TotalDurationSeconds: route.TotalDurationSeconds,
			Stops:                make([]dto.PlanStopResponse, 0, len(route.Stops)),
		}
		for i, stop := range route.Stops {
			sr := dto.PlanStopResponse{
				DeliveryID: stop.DeliveryID,
				Lon:        stop.Location.Lon,
				Lat:        stop.Location.Lat,
				DemandKg:   stop.DemandKg,
				Pickup:     stop.Pickup,
			}
			if schedule != nil && i < len(schedule.Stops) {
				eta := schedule.Stops[i]
				sr.ArriveAt = eta.ArriveAt
				sr.DepartAt = eta.DepartAt
				sr.WaitSeconds = eta.WaitSeconds
				sr.Compliance = string(eta.Compliance)
			}
			rr.Stops = append(rr.Stops, sr)
		}
		res.Routes = append(res.Routes, rr)
	}

	writeJSON(w, r, http.StatusOK, res)
}
