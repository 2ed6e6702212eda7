package handlers

import (
	"context"
	"time"

	"bus/tracker/types"

	"github.com/juju/errors"
)

const (
	StateIdle      = "idle"
	StateVerifying = "verifying"
	StateRunning   = "running"
	StateStopped   = "stopped"
)

type Stats struct {
	State           string
	TelemetrySent   int
	TelemetryFailed int
	HeartbeatSent   int
	HeartbeatFailed int
	LastSuccess     time.Time
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *Tracker) setState(s string) {
	t.mu.Lock()
	t.stats.State = s
	t.mu.Unlock()
}

func (t *Tracker) record(sent, failed *int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		*failed++
		return
	}
	*sent++
	t.stats.LastSuccess = t.now()
}

// Run checks connectivity once, then sends telemetry every UpdateInterval and
// a heartbeat every HeartbeatEvery updates until ctx is done.
// The returned error is never nil; its Kind tells why the loop stopped.
func (t *Tracker) Run(ctx context.Context) error {
	t.err = nil
	t.updates = 0
	for state := types.StateFn(t.verifying); state != nil; {
		state = state(ctx)
	}
	return t.err
}

func (t *Tracker) verifying(ctx context.Context) types.StateFn {
	t.setState(StateVerifying)
	t.log.Info("starting bus tracker")

	if err := t.TestConnection(); err != nil {
		t.log.WithError(err).Error("cannot start, api connection failed")
		return t.stop(err)
	}

	t.log.WithField("interval", t.conf.UpdateInterval).Info("tracker started")
	t.setState(StateRunning)
	return t.running
}

func (t *Tracker) running(ctx context.Context) types.StateFn {
	if err := t.cycle(); err != nil {
		t.log.WithError(err).WithField("kind", KindOf(err)).Error("tracker error")
		return t.stop(err)
	}

	// stop requests are only honored between cycles
	select {
	case <-ctx.Done():
		return t.interrupted(ctx)
	default:
	}

	select {
	case <-ctx.Done():
		return t.interrupted(ctx)
	case <-t.after(t.conf.UpdateInterval):
		return t.running
	}
}

// cycle returns only errors that must stop the loop.
func (t *Tracker) cycle() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = kinded(KindFatal, errors.Errorf("panic: %v", r))
		}
	}()

	if err := t.SendTelemetry(); err != nil && KindOf(err) != KindTransmission {
		return err
	}

	t.updates++
	if t.updates >= t.conf.HeartbeatEvery {
		t.updates = 0
		if err := t.SendHeartbeat(); err != nil && KindOf(err) != KindTransmission {
			return err
		}
	}
	return nil
}

func (t *Tracker) interrupted(ctx context.Context) types.StateFn {
	t.log.Info("tracker stopped by operator")
	return t.stop(kinded(KindInterrupted, errors.Annotate(ctx.Err(), "stop requested")))
}

func (t *Tracker) stop(err error) types.StateFn {
	if _, ok := errors.Cause(err).(*Error); !ok {
		err = kinded(KindFatal, err)
	}
	t.err = err
	t.setState(StateStopped)
	return nil
}
