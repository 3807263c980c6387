package scsi

import "time"

type Direction int

const (
	DIRECTION_NONE Direction = iota
	DIRECTION_IN
	DIRECTION_OUT
)

const DEFAULT_TIMEOUT = 30 * time.Second

// Command is a logical SCSI operation. It is a value type and immutable
// once built: CDB and NewBuffer hand out fresh copies so a retry never
// sees stale buffer state from an earlier attempt.
type Command struct {
	cdb     [16]byte
	cdbLen  uint8
	dir     Direction
	payload []byte
	alloc   int
	timeout time.Duration
}

// CommandIn builds a device-to-host command expecting alloc response bytes.
func CommandIn(cdb []byte, alloc int, timeout time.Duration) Command {
	c := newCommand(cdb, timeout)
	c.dir = DIRECTION_IN
	c.alloc = alloc
	return c
}

// CommandOut builds a host-to-device command carrying the given payload.
func CommandOut(cdb []byte, payload []byte, timeout time.Duration) Command {
	c := newCommand(cdb, timeout)
	c.dir = DIRECTION_OUT
	c.payload = append([]byte(nil), payload...)
	return c
}

// CommandNone builds a command with no data transfer.
func CommandNone(cdb []byte, timeout time.Duration) Command {
	return newCommand(cdb, timeout)
}

func newCommand(cdb []byte, timeout time.Duration) Command {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	c := Command{
		cdbLen:  uint8(len(cdb)),
		timeout: timeout,
	}
	copy(c.cdb[:], cdb)
	return c
}

func (c Command) Opcode() uint8 {
	return c.cdb[0]
}

func (c Command) Direction() Direction {
	return c.dir
}

func (c Command) Timeout() time.Duration {
	return c.timeout
}

// CDB returns a fresh copy of the command descriptor block.
func (c Command) CDB() []byte {
	cdb := make([]byte, c.cdbLen)
	copy(cdb, c.cdb[:c.cdbLen])
	return cdb
}

// NewBuffer returns a fresh data buffer for one attempt: a zeroed
// allocation for inbound commands, a copy of the payload for outbound.
func (c Command) NewBuffer() []byte {
	switch c.dir {
	case DIRECTION_IN:
		return make([]byte, c.alloc)
	case DIRECTION_OUT:
		return append([]byte(nil), c.payload...)
	default:
		return nil
	}
}

// Multi-byte CDB fields are big-endian on the wire regardless of host
// endianness.

func putUint16(cdb []byte, val uint16) {
	cdb[0] = uint8(val >> 8)
	cdb[1] = uint8(val & 0xFF)
}

func putUint24(cdb []byte, val uint32) {
	cdb[0] = uint8(val >> 16)
	cdb[1] = uint8((val >> 8) & 0xFF)
	cdb[2] = uint8(val & 0xFF)
}

func putUint32(cdb []byte, val uint32) {
	cdb[0] = uint8(val >> 24)
	cdb[1] = uint8((val >> 16) & 0xFF)
	cdb[2] = uint8((val >> 8) & 0xFF)
	cdb[3] = uint8(val & 0xFF)
}

func putUint64(cdb []byte, val uint64) {
	putUint32(cdb[0:], uint32(val>>32))
	putUint32(cdb[4:], uint32(val&0xFFFFFFFF))
}
