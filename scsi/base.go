package scsi

import (
	"sync"
	"time"
)

// transport is the host-specific half of the abstraction. Exactly two
// implementations exist, selected at compile time: the Linux generic
// SCSI ioctl and the Windows pass-through ioctl. Both must present
// identical success/failure semantics through this contract.
type transport interface {
	send(cdb []byte, dir Direction, buf []byte, timeout time.Duration) (status uint8, sense []byte, transferred int, err error)
	close() error
}

// Device is an open handle to a tape device. A handle allows one
// outstanding command at a time; the mutex is held only for the duration
// of a single command, never across a retry backoff.
type Device struct {
	path string

	mu     sync.Mutex
	tr     transport
	closed bool
}

func Open(path string) (*Device, error) {
	tr, err := openTransport(path)
	if err != nil {
		return nil, err
	}
	return &Device{
		path: path,
		tr:   tr,
	}, nil
}

func (d *Device) Path() string {
	return d.path
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.tr.close()
}

// Invalidate marks the handle unusable without reporting a close error.
// Called when the presence monitor sees the device detach; every
// subsequent Submit fails with ErrDeviceUnavailable.
func (d *Device) Invalidate() {
	_ = d.Close()
}

// Submit sends one command and returns the device's uniform result. A
// non-success status with sense data is not a Go error: the device
// responded, the caller (normally the dispatch layer) decides what the
// response means.
func (d *Device) Submit(cmd Command) (*Result, error) {
	res, _, err := d.SubmitRead(cmd)
	return res, err
}

// SubmitRead is Submit for inbound commands, additionally returning the
// transferred portion of a fresh data buffer.
func (d *Device) SubmitRead(cmd Command) (*Result, []byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, nil, ErrDeviceUnavailable
	}

	buf := cmd.NewBuffer()
	status, senseBuf, transferred, err := d.tr.send(cmd.CDB(), cmd.Direction(), buf, cmd.Timeout())
	if err != nil {
		return nil, nil, err
	}

	if transferred > len(buf) {
		transferred = len(buf)
	}

	return &Result{
		Status:      status,
		Sense:       ParseSense(senseBuf),
		Transferred: transferred,
		Attempts:    1,
	}, buf[:transferred], nil
}
