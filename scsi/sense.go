package scsi

import "fmt"

// Sense keys, T10 SPC.
const (
	SENSE_NO_SENSE        = 0x00
	SENSE_RECOVERED_ERROR = 0x01
	SENSE_NOT_READY       = 0x02
	SENSE_MEDIUM_ERROR    = 0x03
	SENSE_HARDWARE_ERROR  = 0x04
	SENSE_ILLEGAL_REQUEST = 0x05
	SENSE_UNIT_ATTENTION  = 0x06
	SENSE_DATA_PROTECT    = 0x07
	SENSE_BLANK_CHECK     = 0x08
	SENSE_ABORTED_COMMAND = 0x0B
	SENSE_VOLUME_OVERFLOW = 0x0D
)

// Additional sense codes this core makes decisions on.
const (
	ASC_NOT_READY_CAUSE_UNKNOWN = 0x04
	ASC_WRITE_PROTECTED         = 0x27
	ASC_MEDIUM_NOT_PRESENT      = 0x3A
	ASC_INVALID_OPCODE          = 0x20
	ASC_INVALID_FIELD_IN_CDB    = 0x24
	ASC_POWER_ON_OR_RESET       = 0x29

	ASCQ_BECOMING_READY = 0x01
)

type Sense struct {
	Key  uint8
	ASC  uint8
	ASCQ uint8
	Raw  []byte
}

// ParseSense decodes a returned sense buffer. Both fixed (0x70/0x71) and
// descriptor (0x72/0x73) response formats are handled; anything else is
// kept raw with no key.
func ParseSense(buf []byte) *Sense {
	if len(buf) == 0 {
		return nil
	}

	sense := &Sense{
		Raw: append([]byte(nil), buf...),
	}

	switch buf[0] & 0x7F {
	case 0x70, 0x71:
		if len(buf) > 2 {
			sense.Key = buf[2] & 0x0F
		}
		if len(buf) > 13 {
			sense.ASC = buf[12]
			sense.ASCQ = buf[13]
		}
	case 0x72, 0x73:
		if len(buf) > 3 {
			sense.Key = buf[1] & 0x0F
			sense.ASC = buf[2]
			sense.ASCQ = buf[3]
		}
	}

	return sense
}

func (s *Sense) String() string {
	return fmt.Sprintf("key %#02x (%s), asc/ascq %#02x/%#02x (%s)",
		s.Key, senseKeyName(s.Key), s.ASC, s.ASCQ, s.CodeName())
}

func senseKeyName(key uint8) string {
	switch key {
	case SENSE_NO_SENSE:
		return "NO SENSE"
	case SENSE_RECOVERED_ERROR:
		return "RECOVERED ERROR"
	case SENSE_NOT_READY:
		return "NOT READY"
	case SENSE_MEDIUM_ERROR:
		return "MEDIUM ERROR"
	case SENSE_HARDWARE_ERROR:
		return "HARDWARE ERROR"
	case SENSE_ILLEGAL_REQUEST:
		return "ILLEGAL REQUEST"
	case SENSE_UNIT_ATTENTION:
		return "UNIT ATTENTION"
	case SENSE_DATA_PROTECT:
		return "DATA PROTECT"
	case SENSE_BLANK_CHECK:
		return "BLANK CHECK"
	case SENSE_ABORTED_COMMAND:
		return "ABORTED COMMAND"
	case SENSE_VOLUME_OVERFLOW:
		return "VOLUME OVERFLOW"
	default:
		return "UNKNOWN"
	}
}

// CodeName returns the standard name of the ASC/ASCQ pair, for the codes
// tape drives and changers actually produce.
func (s *Sense) CodeName() string {
	if name, ok := ascNames[uint16(s.ASC)<<8|uint16(s.ASCQ)]; ok {
		return name
	}
	if name, ok := ascNames[uint16(s.ASC)<<8]; ok {
		return name
	}
	return "UNKNOWN"
}

var ascNames = map[uint16]string{
	0x0000: "NO ADDITIONAL SENSE INFORMATION",
	0x0400: "LOGICAL UNIT NOT READY, CAUSE NOT REPORTABLE",
	0x0401: "LOGICAL UNIT IS IN PROCESS OF BECOMING READY",
	0x0402: "LOGICAL UNIT NOT READY, INITIALIZING COMMAND REQUIRED",
	0x0403: "LOGICAL UNIT NOT READY, MANUAL INTERVENTION REQUIRED",
	0x0404: "LOGICAL UNIT NOT READY, FORMAT IN PROGRESS",
	0x0800: "LOGICAL UNIT COMMUNICATION FAILURE",
	0x0801: "LOGICAL UNIT COMMUNICATION TIME-OUT",
	0x1100: "UNRECOVERED READ ERROR",
	0x1400: "RECORDED ENTITY NOT FOUND",
	0x2000: "INVALID COMMAND OPERATION CODE",
	0x2100: "LOGICAL BLOCK ADDRESS OUT OF RANGE",
	0x2101: "INVALID ELEMENT ADDRESS",
	0x2400: "INVALID FIELD IN CDB",
	0x2500: "LOGICAL UNIT NOT SUPPORTED",
	0x2600: "INVALID FIELD IN PARAMETER LIST",
	0x2700: "WRITE PROTECTED",
	0x2800: "NOT READY TO READY TRANSITION (MEDIUM MAY HAVE CHANGED)",
	0x2900: "POWER ON, RESET, OR BUS DEVICE RESET OCCURRED",
	0x2A01: "MODE PARAMETERS CHANGED",
	0x3000: "INCOMPATIBLE MEDIUM INSTALLED",
	0x3001: "CANNOT READ MEDIUM - UNKNOWN FORMAT",
	0x3100: "MEDIUM FORMAT CORRUPTED",
	0x3101: "FORMAT COMMAND FAILED",
	0x3300: "TAPE LENGTH ERROR",
	0x3A00: "MEDIUM NOT PRESENT",
	0x3B00: "SEQUENTIAL POSITIONING ERROR",
	0x3B0D: "MEDIUM DESTINATION ELEMENT FULL",
	0x3B0E: "MEDIUM SOURCE ELEMENT EMPTY",
	0x4400: "INTERNAL TARGET FAILURE",
	0x5300: "MEDIA LOAD OR EJECT FAILED",
	0x5A01: "OPERATOR MEDIUM REMOVAL REQUEST",
}
