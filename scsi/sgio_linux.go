//go:build linux

package scsi

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux generic SCSI (sg) transport, <scsi/sg.h>.
const (
	SG_IO = 0x2285

	SG_DXFER_NONE     = -1
	SG_DXFER_TO_DEV   = -2
	SG_DXFER_FROM_DEV = -3

	SG_INFO_OK_MASK = 0x1
	SG_INFO_OK      = 0x0

	SENSE_BUF_LEN = 32
)

// sgIoHdr mirrors sg_io_hdr_t.
type sgIoHdr struct {
	interfaceID    int32
	dxferDirection int32
	cmdLen         uint8
	mxSbLen        uint8
	iovecCount     uint16
	dxferLen       uint32
	dxferp         uintptr
	cmdp           uintptr
	sbp            uintptr
	timeout        uint32
	flags          uint32
	packID         int32
	usrPtr         uintptr
	status         uint8
	maskedStatus   uint8
	msgStatus      uint8
	sbLenWr        uint8
	hostStatus     uint16
	driverStatus   uint16
	resid          int32
	duration       uint32
	info           uint32
}

type sgTransport struct {
	fd int
}

func openTransport(path string) (transport, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}
	return &sgTransport{fd: fd}, nil
}

func (t *sgTransport) close() error {
	return unix.Close(t.fd)
}

func (t *sgTransport) send(cdb []byte, dir Direction, buf []byte, timeout time.Duration) (uint8, []byte, int, error) {
	senseBuf := make([]byte, SENSE_BUF_LEN)

	hdr := sgIoHdr{
		interfaceID:    'S',
		dxferDirection: sgDirection(dir),
		cmdLen:         uint8(len(cdb)),
		mxSbLen:        uint8(len(senseBuf)),
		cmdp:           uintptr(unsafe.Pointer(&cdb[0])),
		sbp:            uintptr(unsafe.Pointer(&senseBuf[0])),
		timeout:        uint32(timeout.Milliseconds()),
	}
	if len(buf) > 0 {
		hdr.dxferLen = uint32(len(buf))
		hdr.dxferp = uintptr(unsafe.Pointer(&buf[0]))
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(t.fd), SG_IO, uintptr(unsafe.Pointer(&hdr)))
	if errno != 0 {
		return 0, nil, 0, &TransportError{Op: "SG_IO", Err: errno}
	}

	transferred := len(buf) - int(hdr.resid)
	if transferred < 0 {
		transferred = 0
	}

	var sense []byte
	if hdr.sbLenWr > 0 {
		sense = senseBuf[:hdr.sbLenWr]
	}

	// Adapter or driver level failure with a clean SCSI status still
	// counts as a transport fault: the device never saw the command.
	if hdr.info&SG_INFO_OK_MASK != SG_INFO_OK && hdr.status == STATUS_GOOD && hdr.sbLenWr == 0 {
		return 0, nil, 0, &TransportError{
			Op:  "SG_IO",
			Err: &hostStatusError{host: hdr.hostStatus, driver: hdr.driverStatus},
		}
	}

	return hdr.status, sense, transferred, nil
}

func sgDirection(dir Direction) int32 {
	switch dir {
	case DIRECTION_IN:
		return SG_DXFER_FROM_DEV
	case DIRECTION_OUT:
		return SG_DXFER_TO_DEV
	default:
		return SG_DXFER_NONE
	}
}

type hostStatusError struct {
	host   uint16
	driver uint16
}

func (e *hostStatusError) Error() string {
	return fmt.Sprintf("host status %#04x, driver status %#04x", e.host, e.driver)
}
