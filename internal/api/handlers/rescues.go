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

type RescueHandler struct {
	State   *services.FleetState
	Monitor *services.Monitor
}

// Handle dispatches on method: GET lists rescue operations, POST forces
// a rescue for a truck regardless of its telemetry.
func (h *RescueHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.force(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *RescueHandler) list(w http.ResponseWriter, r *http.Request) {
	ops := h.State.Rescues()

	res := dto.ListRescuesResponse{Rescues: make([]dto.RescueResponse, 0, len(ops))}
	for _, op := range ops {
		res.Rescues = append(res.Rescues, rescueResponse(op))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RescueHandler) force(w http.ResponseWriter, r *http.Request) {
	var req dto.RescueRequest

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

	truck, ok := h.State.Truck(req.TruckID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown truck")
		return
	}
	if truck.Status != domain.TruckOperational {
		writeError(w, r, http.StatusConflict, "truck is not operational")
		return
	}

	op, err := h.Monitor.HandleFailure(r.Context(), req.TruckID, []string{"manual dispatch"})
	if err != nil {
		if errors.Is(err, domain.ErrNoRescueAvailable) && op != nil {
			writeJSON(w, r, http.StatusConflict, rescueResponse(*op))
			return
		}
		log.Printf("force rescue failed: truck_id=%d err=%v", req.TruckID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if op == nil {
		writeError(w, r, http.StatusConflict, "truck is not operational")
		return
	}

	writeJSON(w, r, http.StatusCreated, rescueResponse(*op))
}

// Complete closes a dispatched rescue, returning its rescuers to the
// candidate pool.
func (h *RescueHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.CompleteRescueRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.RescueID == "" {
		writeError(w, r, http.StatusBadRequest, "rescue_id is required")
		return
	}

	if err := h.State.CompleteRescue(req.RescueID, time.Now()); err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		writeError(w, r, http.StatusNotFound, "unknown rescue")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "completed"})
}

func rescueResponse(op domain.RescueOperation) dto.RescueResponse {
	res := dto.RescueResponse{
		RescueID:      op.ID,
		FailedTruckID: op.FailedTruckID,
		Status:        string(op.Status),
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.UpdatedAt,
	}

	if op.Plan == nil {
		return res
	}

	res.Split = op.Plan.Split
	res.EtaPreserved = op.Plan.EtaPreserved
	res.FailureReasons = op.Plan.FailureReasons

	for _, a := range op.Plan.Rescuers {
		ids := make([]int, 0, len(a.Stops))
		for _, s := range a.Stops {
			if !s.Pickup {
				ids = append(ids, s.DeliveryID)
			}
		}
		res.Rescuers = append(res.Rescuers, dto.RescuerResponse{
			TruckID:        a.TruckID,
			AllocatedKg:    a.AllocatedKg,
			LoadPercent:    a.LoadPercent,
			DistanceMeters: a.DistanceMeters,
			EtaSeconds:     a.EtaSeconds,
			DeliveryIDs:    ids,
		})
	}

	return res
}
