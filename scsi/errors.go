package scsi

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable is returned for any command submitted on a handle
// that is closed or has been invalidated by a detach event. The caller
// must re-open the device; the handle never reopens itself.
var ErrDeviceUnavailable = errors.New("device unavailable")

// TransportError reports a failure of the host pass-through mechanism
// itself, before the device produced any status.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scsi transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
