package handlers

import (
	"github.com/juju/errors"
)

// Kind classifies tracker errors so the run loop can decide whether to keep going.
type Kind int

const (
	KindNone Kind = iota
	// KindFatal is anything the tracker did not classify, including panics.
	KindFatal
	// KindConnectivity means the startup status check failed.
	KindConnectivity
	// KindTransmission means one telemetry or heartbeat send failed.
	KindTransmission
	// KindInterrupted means the operator asked to stop.
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFatal:
		return "fatal"
	case KindConnectivity:
		return "connectivity"
	case KindTransmission:
		return "transmission"
	case KindInterrupted:
		return "interrupted"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }

// Underlying returns the wrapped error without its kind.
func (e *Error) Underlying() error { return e.err }

func kinded(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, err: err}
}

// KindOf returns the kind of err, looking through juju annotations.
// Errors that were never classified are fatal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind
	}
	return KindFatal
}
