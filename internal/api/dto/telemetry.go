package dto

type TelemetryRequest struct {
	TruckID         int     `json:"truck_id"`
	TemperatureC    float64 `json:"temperature_c"`
	BatteryPercent  float64 `json:"battery_percent"`
	RefrigerationOn bool    `json:"refrigeration_on"`
}

type TelemetryResponse struct {
	TruckID  int      `json:"truck_id"`
	Status   string   `json:"status"`
	Reasons  []string `json:"reasons,omitempty"`
	RescueID string   `json:"rescue_id,omitempty"`
}
