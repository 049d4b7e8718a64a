package api

import (
	"net/http"

	"fleet-rescue-service/internal/api/handlers"
	"fleet-rescue-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers see the
// fleet state and services, never concrete adapters.
func NewRouter(state *services.FleetState, planner *services.Planner, monitor *services.Monitor) http.Handler {
	mux := http.NewServeMux()

	truckHandler := &handlers.TruckHandler{State: state}
	planHandler := &handlers.PlanHandler{State: state, Planner: planner}
	telemetryHandler := &handlers.TelemetryHandler{State: state, Monitor: monitor}
	rescueHandler := &handlers.RescueHandler{State: state, Monitor: monitor}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/trucks", truckHandler.List)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.HandleFunc("/telemetry", telemetryHandler.Ingest)
	mux.HandleFunc("/rescues", rescueHandler.Handle)
	mux.HandleFunc("/rescues/complete", rescueHandler.Complete)

	return loggingMiddleware(mux)
}
