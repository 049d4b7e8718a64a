package domain

// RouteStop is one ordered stop of a truck's route: the delivery it
// services plus the data the ETA walk needs (location, demand, window).
// Pickup marks a cargo-transfer stop at a failed truck's position; it
// carries no delivery and no window.
type RouteStop struct {
	DeliveryID int
	Location   Coordinates
	DemandKg   float64
	Window     TimeWindow
	Pickup     bool
}

// Route is the planned stop sequence for a single truck together with
// aggregate metrics. Routes are replaced wholesale on reassignment and
// never mutated stop-by-stop outside the builders.
type Route struct {
	TruckID              int
	Origin               Coordinates
	Stops                []RouteStop
	TotalDistanceMeters  int
	TotalDurationSeconds int
	Feasible             bool
}

// DemandKg is the total demand currently assigned to the route.
func (r *Route) DemandKg() float64 {
	var total float64
	for _, s := range r.Stops {
		total += s.DemandKg
	}
	return total
}

// RouteSet maps truck id to its committed route.
type RouteSet struct {
	Routes map[int]*Route
}

func NewRouteSet() *RouteSet {
	return &RouteSet{Routes: make(map[int]*Route)}
}

// Clone deep-copies the set so rescue application can replace routes
// without mutating the caller's copy.
func (rs *RouteSet) Clone() *RouteSet {
	out := NewRouteSet()
	for id, r := range rs.Routes {
		stops := make([]RouteStop, len(r.Stops))
		copy(stops, r.Stops)
		out.Routes[id] = &Route{
			TruckID:              r.TruckID,
			Origin:               r.Origin,
			Stops:                stops,
			TotalDistanceMeters:  r.TotalDistanceMeters,
			TotalDurationSeconds: r.TotalDurationSeconds,
			Feasible:             r.Feasible,
		}
	}
	return out
}
