package device

import (
	"math/rand"
	"sync"
	"time"

	"bus/tracker/types"
)

// HealthProbe reports device and system metrics for the heartbeat.
type HealthProbe interface {
	ReadHealth() (types.HeartbeatPayload, error)
}

// SimulatedHealth fills usage counters with plausible random values.
type SimulatedHealth struct {
	FirmwareVersion string
	HardwareModel   string

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulatedHealth(firmware, model string, rnd *rand.Rand) *SimulatedHealth {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimulatedHealth{FirmwareVersion: firmware, HardwareModel: model, rnd: rnd}
}

func (h *SimulatedHealth) ReadHealth() (types.HeartbeatPayload, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	u := func(lo, hi float64) float64 { return lo + h.rnd.Float64()*(hi-lo) }

	return types.HeartbeatPayload{
		DeviceInfo: types.DeviceInfo{
			FirmwareVersion: h.FirmwareVersion,
			HardwareModel:   h.HardwareModel,
			// dBm in [-80, -30]
			SignalStrength: -80 + h.rnd.Intn(51),
		},
		SystemStatus: types.SystemStatus{
			CPUUsage:     u(20, 80),
			MemoryUsage:  u(30, 70),
			StorageUsage: u(10, 50),
			BatteryLevel: u(70, 100),
		},
	}, nil
}
