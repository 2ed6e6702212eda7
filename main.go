package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bus/tracker/device"
	"bus/tracker/handlers"
	"bus/tracker/types"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	envErr := godotenv.Load()

	conf, err := types.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	log.SetLevel(conf.LogLevel)
	if envErr != nil {
		log.WithError(envErr).Debug("no .env file, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := handlers.NewTracker(conf,
		device.NewSimulator(conf.StartLatitude, conf.StartLongitude, nil),
		device.NewSimulatedHealth(conf.FirmwareVersion, conf.HardwareModel, nil),
		log.StandardLogger(),
	)

	if conf.ListenAddr != "" {
		go func() {
			if err := http.ListenAndServe(conf.ListenAddr, tracker.Router()); err != nil {
				log.WithError(err).Error("failed to start status server")
			}
		}()
	}

	err = tracker.Run(ctx)
	switch handlers.KindOf(err) {
	case handlers.KindInterrupted:
		log.Info("bye")
	case handlers.KindConnectivity:
		log.WithError(err).Error("tracker did not start")
	default:
		log.WithError(err).Error("tracker stopped")
	}
}
