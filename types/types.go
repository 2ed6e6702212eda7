package types

import "context"

// StateFn is one state of the tracker's run loop. Returning nil stops the loop.
type StateFn func(context.Context) StateFn

type PositionSample struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Altitude  float64 `json:"altitude"`
	Accuracy  float64 `json:"accuracy"`
}

type SensorSample struct {
	FuelLevel         float64         `json:"fuel_level"`
	EngineTemperature float64         `json:"engine_temperature"`
	PassengerCount    int             `json:"passenger_count"`
	DoorStatus        map[string]bool `json:"door_status"`
}

// TelemetryPayload is the body of one gps post. Timestamp is set when the
// request is built, not when the samples were read.
type TelemetryPayload struct {
	PositionSample
	SensorSample
	Timestamp string `json:"timestamp"`
}

type DeviceInfo struct {
	FirmwareVersion string `json:"firmware_version"`
	HardwareModel   string `json:"hardware_model"`
	SignalStrength  int    `json:"signal_strength"`
}

type SystemStatus struct {
	CPUUsage     float64 `json:"cpu_usage"`
	MemoryUsage  float64 `json:"memory_usage"`
	StorageUsage float64 `json:"storage_usage"`
	BatteryLevel float64 `json:"battery_level"`
}

type HeartbeatPayload struct {
	DeviceInfo   DeviceInfo   `json:"device_info"`
	SystemStatus SystemStatus `json:"system_status"`
}

// Session is the only state carried between cycles.
type Session struct {
	Latitude  float64
	Longitude float64
	FuelLevel float64
}

type Bus struct {
	Number string `json:"number"`
}

type StatusResponse struct {
	Data struct {
		Bus Bus `json:"bus"`
	} `json:"data"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
