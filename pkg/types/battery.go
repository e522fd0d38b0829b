package types

// BatteryInfo holds detailed battery data for the CLI.
type BatteryInfo struct {
	State      string  `json:"state"`
	Percentage int     `json:"percentage"`
	Current    float64 `json:"current"`    // mWh
	Full       float64 `json:"full"`       // mWh
	Design     float64 `json:"design"`     // mWh
	ChargeRate float64 `json:"chargeRate"` // mW
	Voltage    float64 `json:"voltage"`    // V
	Health     float64 `json:"health"`     // full / design, in percent
}
