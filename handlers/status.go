package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type HealthResponse struct {
	State           string `json:"state"`
	TelemetrySent   int    `json:"telemetry_sent"`
	TelemetryFailed int    `json:"telemetry_failed"`
	HeartbeatSent   int    `json:"heartbeat_sent"`
	HeartbeatFailed int    `json:"heartbeat_failed"`
	LastSuccess     string `json:"last_success"`
}

// Router serves the local status endpoint.
func (t *Tracker) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", t.HealthHandler)

	return r
}

func (t *Tracker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats := t.Stats()

	last := "never"
	if !stats.LastSuccess.IsZero() {
		last = humanize.Time(stats.LastSuccess)
	}

	w.Header().Set("Content-Type", "application/json")
	if stats.State == StateStopped {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(HealthResponse{
		State:           stats.State,
		TelemetrySent:   stats.TelemetrySent,
		TelemetryFailed: stats.TelemetryFailed,
		HeartbeatSent:   stats.HeartbeatSent,
		HeartbeatFailed: stats.HeartbeatFailed,
		LastSuccess:     last,
	}); err != nil {
		t.log.WithError(err).Error("failed to write a response")
	}
}
