package types

import (
	"os"
	"strconv"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultServerURL       = "http://localhost:3001"
	DefaultUpdateInterval  = 10 * time.Second
	DefaultHeartbeatEvery  = 10
	DefaultRequestTimeout  = 10 * time.Second
	DefaultFirmwareVersion = "1.0.0"
	DefaultHardwareModel   = "RaspberryPi-GPS"
	DefaultStartLatitude   = 11.3410
	DefaultStartLongitude  = 77.7172
)

type Config struct {
	ServerURL       string
	APIKey          string
	UpdateInterval  time.Duration
	HeartbeatEvery  int
	RequestTimeout  time.Duration
	FirmwareVersion string
	HardwareModel   string
	StartLatitude   float64
	StartLongitude  float64
	ListenAddr      string
	LogLevel        log.Level
}

func DefaultConfig() Config {
	return Config{
		ServerURL:       DefaultServerURL,
		UpdateInterval:  DefaultUpdateInterval,
		HeartbeatEvery:  DefaultHeartbeatEvery,
		RequestTimeout:  DefaultRequestTimeout,
		FirmwareVersion: DefaultFirmwareVersion,
		HardwareModel:   DefaultHardwareModel,
		StartLatitude:   DefaultStartLatitude,
		StartLongitude:  DefaultStartLongitude,
		LogLevel:        log.InfoLevel,
	}
}

// LoadConfig reads TRACKER_* variables from the environment on top of
// DefaultConfig. Call godotenv.Load first to pick up a .env file.
func LoadConfig() (Config, error) {
	return loadConfig(os.LookupEnv)
}

func loadConfig(lookup func(string) (string, bool)) (Config, error) {
	c := DefaultConfig()

	if v, ok := lookup("TRACKER_SERVER_URL"); ok && v != "" {
		c.ServerURL = v
	}
	if v, ok := lookup("TRACKER_API_KEY"); ok {
		c.APIKey = v
	}
	if v, ok := lookup("TRACKER_FIRMWARE_VERSION"); ok && v != "" {
		c.FirmwareVersion = v
	}
	if v, ok := lookup("TRACKER_HARDWARE_MODEL"); ok && v != "" {
		c.HardwareModel = v
	}
	if v, ok := lookup("TRACKER_LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}

	var err error
	if c.UpdateInterval, err = seconds(lookup, "TRACKER_UPDATE_INTERVAL", c.UpdateInterval); err != nil {
		return c, err
	}
	if c.RequestTimeout, err = seconds(lookup, "TRACKER_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return c, err
	}
	if v, ok := lookup("TRACKER_HEARTBEAT_EVERY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, errors.Annotate(err, "TRACKER_HEARTBEAT_EVERY")
		}
		c.HeartbeatEvery = n
	}
	if c.StartLatitude, err = degrees(lookup, "TRACKER_START_LATITUDE", c.StartLatitude); err != nil {
		return c, err
	}
	if c.StartLongitude, err = degrees(lookup, "TRACKER_START_LONGITUDE", c.StartLongitude); err != nil {
		return c, err
	}
	if v, ok := lookup("TRACKER_LOG_LEVEL"); ok && v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			return c, errors.Annotate(err, "TRACKER_LOG_LEVEL")
		}
		c.LogLevel = lvl
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.ServerURL == "":
		return errors.NotValidf("empty server url")
	case c.APIKey == "":
		return errors.NotValidf("empty api key (TRACKER_API_KEY)")
	case c.UpdateInterval <= 0:
		return errors.NotValidf("update interval %v", c.UpdateInterval)
	case c.HeartbeatEvery <= 0:
		return errors.NotValidf("heartbeat every %d updates", c.HeartbeatEvery)
	case c.RequestTimeout <= 0:
		return errors.NotValidf("request timeout %v", c.RequestTimeout)
	}
	return nil
}

func seconds(lookup func(string) (string, bool), key string, def time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, errors.Annotate(err, key)
	}
	return time.Duration(n * float64(time.Second)), nil
}

func degrees(lookup func(string) (string, bool), key string, def float64) (float64, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, errors.Annotate(err, key)
	}
	return f, nil
}
