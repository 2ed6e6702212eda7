package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"bus/tracker/device"
	"bus/tracker/types"

	"github.com/juju/errors"
	"github.com/levigross/grequests"
	log "github.com/sirupsen/logrus"
)

const (
	StatusPath    = "/api/hardware/status"
	GPSPath       = "/api/hardware/gps"
	HeartbeatPath = "/api/hardware/heartbeat"

	// TimestampLayout is ISO-8601 UTC with a trailing Z.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

type Tracker struct {
	conf   types.Config
	reader device.Reader
	health device.HealthProbe
	log    *log.Entry
	client *http.Client

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	// touched only by the run loop
	updates int
	err     error

	mu    sync.Mutex
	stats Stats
}

func NewTracker(conf types.Config, reader device.Reader, health device.HealthProbe, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Tracker{
		conf:   conf,
		reader: reader,
		health: health,
		log:    logger.WithField("server", conf.ServerURL),
		// shared so keep-alive connections are reused across cycles
		client: &http.Client{Timeout: conf.RequestTimeout},
		now:    time.Now,
		after:  time.After,
		stats:  Stats{State: StateIdle},
	}
}

func (t *Tracker) url(path string) string {
	return strings.TrimRight(t.conf.ServerURL, "/") + path
}

func (t *Tracker) options(body interface{}) *grequests.RequestOptions {
	return &grequests.RequestOptions{
		JSON: body,
		Headers: map[string]string{
			"X-API-Key":    t.conf.APIKey,
			"Content-Type": "application/json",
		},
		HTTPClient: t.client,
	}
}

// TestConnection asks the collection service which bus the API key belongs to.
func (t *Tracker) TestConnection() error {
	resp, err := grequests.Get(t.url(StatusPath), t.options(nil))
	if err != nil {
		t.log.WithError(err).Error("connection error")
		return kinded(KindConnectivity, errors.Annotate(err, "status request"))
	}

	defer resp.Close()

	if resp.StatusCode != http.StatusOK {
		t.log.WithField("status", resp.StatusCode).Error("api connection failed")
		return kinded(KindConnectivity, errors.Errorf("status check returned %d", resp.StatusCode))
	}

	status := new(types.StatusResponse)
	if err := resp.JSON(status); err != nil {
		t.log.WithError(err).Error("failed to parse status response")
		return kinded(KindConnectivity, errors.Annotate(err, "status response"))
	}

	t.log.WithField("bus", status.Data.Bus.Number).Info("api connection successful")
	return nil
}

// SendTelemetry reads one position and one sensor sample and posts them.
// Any failure is logged and returned as a transmission error; nothing is retried.
func (t *Tracker) SendTelemetry() error {
	err := t.sendTelemetry()
	t.record(&t.stats.TelemetrySent, &t.stats.TelemetryFailed, err)
	return err
}

func (t *Tracker) sendTelemetry() error {
	position, err := t.reader.ReadPosition()
	if err != nil {
		t.log.WithError(err).WithField("unavailable", device.IsUnavailable(err)).Error("failed to read position")
		return kinded(KindTransmission, errors.Annotate(err, "read position"))
	}
	sensors, err := t.reader.ReadSensors()
	if err != nil {
		t.log.WithError(err).WithField("unavailable", device.IsUnavailable(err)).Error("failed to read sensors")
		return kinded(KindTransmission, errors.Annotate(err, "read sensors"))
	}

	payload := types.TelemetryPayload{
		PositionSample: position,
		SensorSample:   sensors,
		Timestamp:      t.now().UTC().Format(TimestampLayout),
	}

	resp, err := grequests.Post(t.url(GPSPath), t.options(payload))
	if err != nil {
		t.log.WithError(err).Error("telemetry network error")
		return kinded(KindTransmission, errors.Annotate(err, "telemetry request"))
	}

	defer resp.Close()

	if resp.StatusCode != http.StatusCreated {
		reason := "Unknown error"
		body := new(types.ErrorResponse)
		if err := resp.JSON(body); err == nil && body.Error != "" {
			reason = body.Error
		}
		t.log.WithField("status", resp.StatusCode).WithField("error", reason).Error("telemetry failed")
		return kinded(KindTransmission, errors.Errorf("telemetry rejected with %d: %s", resp.StatusCode, reason))
	}

	result := new(types.MessageResponse)
	if err := resp.JSON(result); err != nil {
		t.log.WithError(err).Error("failed to parse telemetry response")
		return kinded(KindTransmission, errors.Annotate(err, "telemetry response"))
	}

	t.log.WithFields(log.Fields{
		"message":    result.Message,
		"location":   fmt.Sprintf("%.6f, %.6f", position.Latitude, position.Longitude),
		"speed":      fmt.Sprintf("%.1f km/h", position.Speed),
		"passengers": sensors.PassengerCount,
	}).Info("telemetry sent")
	return nil
}

// SendHeartbeat posts device health. Only 200 counts as success.
func (t *Tracker) SendHeartbeat() error {
	err := t.sendHeartbeat()
	t.record(&t.stats.HeartbeatSent, &t.stats.HeartbeatFailed, err)
	return err
}

func (t *Tracker) sendHeartbeat() error {
	payload, err := t.health.ReadHealth()
	if err != nil {
		t.log.WithError(err).Error("failed to read device health")
		return kinded(KindTransmission, errors.Annotate(err, "read health"))
	}

	resp, err := grequests.Post(t.url(HeartbeatPath), t.options(payload))
	if err != nil {
		t.log.WithError(err).Error("heartbeat network error")
		return kinded(KindTransmission, errors.Annotate(err, "heartbeat request"))
	}

	defer resp.Close()

	if resp.StatusCode != http.StatusOK {
		t.log.WithField("status", resp.StatusCode).Error("heartbeat failed")
		return kinded(KindTransmission, errors.Errorf("heartbeat rejected with %d", resp.StatusCode))
	}

	t.log.WithField("signal", payload.DeviceInfo.SignalStrength).Info("heartbeat sent")
	return nil
}
