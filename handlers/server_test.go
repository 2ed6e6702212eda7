package handlers

import (
	"encoding/json"
	"math/rand"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bus/tracker/device"
	"bus/tracker/types"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const testKey = "test-api-key"

// collector is a fake collection service.
type collector struct {
	mu sync.Mutex

	statusCode    int
	statusBody    string
	gpsCode       int
	gpsBody       string
	heartbeatCode int
	delay         time.Duration
	newConns      int

	telemetry  []types.TelemetryPayload
	heartbeats []types.HeartbeatPayload
	requests   []*http.Request
}

func newCollector() *collector {
	return &collector{
		statusCode:    http.StatusOK,
		statusBody:    `{"data":{"bus":{"number":"TN-01"}}}`,
		gpsCode:       http.StatusCreated,
		gpsBody:       `{"success":true,"message":"ok"}`,
		heartbeatCode: http.StatusOK,
	}
}

func (c *collector) start(t testing.TB) *httptest.Server {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.mu.Lock()
			c.requests = append(c.requests, r)
			delay := c.delay
			c.mu.Unlock()
			if delay > 0 {
				time.Sleep(delay)
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get(StatusPath, func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		w.WriteHeader(c.statusCode)
		_, _ = w.Write([]byte(c.statusBody))
	})

	r.Post(GPSPath, func(w http.ResponseWriter, r *http.Request) {
		p := types.TelemetryPayload{}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad json"}`))
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.telemetry = append(c.telemetry, p)
		w.WriteHeader(c.gpsCode)
		_, _ = w.Write([]byte(c.gpsBody))
	})

	r.Post(HeartbeatPath, func(w http.ResponseWriter, r *http.Request) {
		p := types.HeartbeatPayload{}
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.heartbeats = append(c.heartbeats, p)
		w.WriteHeader(c.heartbeatCode)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	srv := httptest.NewUnstartedServer(r)
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			c.mu.Lock()
			c.newConns++
			c.mu.Unlock()
		}
	}
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func (c *collector) connections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newConns
}

func (c *collector) counts() (requests, telemetry, heartbeats int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests), len(c.telemetry), len(c.heartbeats)
}

func testConfig(url string) types.Config {
	conf := types.DefaultConfig()
	conf.ServerURL = url
	conf.APIKey = testKey
	conf.RequestTimeout = 2 * time.Second
	return conf
}

func newTestTracker(conf types.Config) (*Tracker, *device.Simulator, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	sim := device.NewSimulator(conf.StartLatitude, conf.StartLongitude, rand.New(rand.NewSource(42)))
	health := device.NewSimulatedHealth(conf.FirmwareVersion, conf.HardwareModel, rand.New(rand.NewSource(43)))
	return NewTracker(conf, sim, health, logger), sim, hook
}

func hasMessage(hook *test.Hook, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}
