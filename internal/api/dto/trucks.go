package dto

type TruckResponse struct {
	TruckID              int     `json:"truck_id"`
	Lon                  float64 `json:"lon"`
	Lat                  float64 `json:"lat"`
	CapacityKg           float64 `json:"capacity_kg"`
	LoadKg               float64 `json:"load_kg"`
	SpeedKmh             float64 `json:"speed_kmh"`
	Status               string  `json:"status"`
	ColdChainReliability float64 `json:"cold_chain_reliability"`
	TemperatureC         float64 `json:"temperature_c"`
	BatteryPercent       float64 `json:"battery_percent"`
	RefrigerationOn      bool    `json:"refrigeration_on"`
}

type ListTrucksResponse struct {
	Trucks []TruckResponse `json:"trucks"`
}
