package device

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"bus/tracker/types"

	"github.com/juju/errors"
)

// ErrHardwareUnavailable is what a real GPS or sensor driver returns when the
// device cannot be read.
var ErrHardwareUnavailable = errors.New("hardware unavailable")

// Unavailable wraps a driver error so its cause is ErrHardwareUnavailable
// while the driver error stays in the error stack.
func Unavailable(driverErr error) error {
	if driverErr == nil {
		return nil
	}
	return errors.Wrap(driverErr, ErrHardwareUnavailable)
}

// IsUnavailable reports whether err, possibly annotated, was caused by
// unavailable hardware.
func IsUnavailable(err error) bool {
	return errors.Cause(err) == ErrHardwareUnavailable
}

// Reader produces one sample per call. Implementations backed by hardware may
// block and may fail with ErrHardwareUnavailable.
type Reader interface {
	ReadPosition() (types.PositionSample, error)
	ReadSensors() (types.SensorSample, error)
}

const (
	// MaxStep bounds the random walk on each axis per reading.
	MaxStep       = 0.0001
	FuelPerRead   = 0.01
	MaxPassengers = 45
)

var Doors = []string{"front", "rear"}

// Simulator is a Reader that walks around a start point and burns fuel.
type Simulator struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	session types.Session
}

func NewSimulator(lat, lon float64, rnd *rand.Rand) *Simulator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		rnd: rnd,
		session: types.Session{
			Latitude:  lat,
			Longitude: lon,
			FuelLevel: 100,
		},
	}
}

func (s *Simulator) Session() types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Simulator) ReadPosition() (types.PositionSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Latitude += s.uniform(-MaxStep, MaxStep)
	s.session.Longitude += s.uniform(-MaxStep, MaxStep)

	return types.PositionSample{
		Latitude:  round(s.session.Latitude, 6),
		Longitude: round(s.session.Longitude, 6),
		Speed:     s.uniform(20, 60),
		Heading:   s.uniform(0, 360),
		Altitude:  s.uniform(10, 100),
		Accuracy:  s.uniform(3, 10),
	}, nil
}

func (s *Simulator) ReadSensors() (types.SensorSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.FuelLevel = math.Max(0, s.session.FuelLevel-FuelPerRead)

	doors := make(map[string]bool, len(Doors))
	for _, d := range Doors {
		doors[d] = s.rnd.Intn(2) == 1
	}

	return types.SensorSample{
		FuelLevel:         round(s.session.FuelLevel, 1),
		EngineTemperature: s.uniform(70, 90),
		PassengerCount:    s.rnd.Intn(MaxPassengers + 1),
		DoorStatus:        doors,
	}, nil
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rnd.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
