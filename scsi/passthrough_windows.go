//go:build windows

package scsi

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows SCSI pass-through transport, <ntddscsi.h>.
const (
	IOCTL_SCSI_PASS_THROUGH_DIRECT = 0x4D014

	SCSI_IOCTL_DATA_OUT         = 0
	SCSI_IOCTL_DATA_IN          = 1
	SCSI_IOCTL_DATA_UNSPECIFIED = 2

	SENSE_BUF_LEN = 32
)

// scsiPassThroughDirect mirrors SCSI_PASS_THROUGH_DIRECT on amd64.
type scsiPassThroughDirect struct {
	length             uint16
	scsiStatus         uint8
	pathID             uint8
	targetID           uint8
	lun                uint8
	cdbLength          uint8
	senseInfoLength    uint8
	dataIn             uint8
	_                  [3]byte
	dataTransferLength uint32
	timeOutValue       uint32
	_                  [4]byte
	dataBuffer         uintptr
	senseInfoOffset    uint32
	cdb                [16]byte
	_                  [4]byte
}

// passThroughWithSense keeps the sense buffer contiguous with the
// request block so senseInfoOffset can point into the same allocation.
type passThroughWithSense struct {
	sptd  scsiPassThroughDirect
	sense [SENSE_BUF_LEN]byte
}

type passThroughTransport struct {
	handle windows.Handle
}

func openTransport(path string) (transport, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}

	handle, err := windows.CreateFile(pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}

	return &passThroughTransport{handle: handle}, nil
}

func (t *passThroughTransport) close() error {
	return windows.CloseHandle(t.handle)
}

func (t *passThroughTransport) send(cdb []byte, dir Direction, buf []byte, timeout time.Duration) (uint8, []byte, int, error) {
	req := passThroughWithSense{
		sptd: scsiPassThroughDirect{
			length:          uint16(unsafe.Sizeof(scsiPassThroughDirect{})),
			cdbLength:       uint8(len(cdb)),
			senseInfoLength: SENSE_BUF_LEN,
			dataIn:          passThroughDirection(dir),
			timeOutValue:    passThroughTimeout(timeout),
			senseInfoOffset: uint32(unsafe.Offsetof(passThroughWithSense{}.sense)),
		},
	}
	copy(req.sptd.cdb[:], cdb)

	if len(buf) > 0 {
		req.sptd.dataTransferLength = uint32(len(buf))
		req.sptd.dataBuffer = uintptr(unsafe.Pointer(&buf[0]))
	}

	var returned uint32
	err := windows.DeviceIoControl(t.handle, IOCTL_SCSI_PASS_THROUGH_DIRECT,
		(*byte)(unsafe.Pointer(&req)), uint32(unsafe.Sizeof(req)),
		(*byte)(unsafe.Pointer(&req)), uint32(unsafe.Sizeof(req)),
		&returned, nil)
	if err != nil {
		return 0, nil, 0, &TransportError{Op: "DeviceIoControl", Err: err}
	}

	transferred := int(req.sptd.dataTransferLength)
	if transferred > len(buf) {
		transferred = len(buf)
	}

	var sense []byte
	if req.sptd.scsiStatus != STATUS_GOOD {
		sense = append([]byte(nil), req.sense[:]...)
	}

	return req.sptd.scsiStatus, sense, transferred, nil
}

// passThroughTimeout converts to the whole seconds the request block
// carries, rounding up. Zero means an unbounded wait to the port
// driver, so sub-second timeouts become one second instead.
func passThroughTimeout(timeout time.Duration) uint32 {
	secs := (timeout + time.Second - 1) / time.Second
	if secs < 1 {
		secs = 1
	}
	return uint32(secs)
}

func passThroughDirection(dir Direction) uint8 {
	switch dir {
	case DIRECTION_IN:
		return SCSI_IOCTL_DATA_IN
	case DIRECTION_OUT:
		return SCSI_IOCTL_DATA_OUT
	default:
		return SCSI_IOCTL_DATA_UNSPECIFIED
	}
}
