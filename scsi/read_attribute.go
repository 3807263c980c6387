package scsi

import "time"

// MAM attribute identifiers live in the mam package; the transport only
// moves the raw bytes.

const READ_ATTRIBUTE_ALLOC = 4096

// Service action 0x00, attribute VALUES.
func ReadAttribute(partition uint8, firstAttribute uint16) Command {
	cdb := make([]byte, 16)
	cdb[0] = READ_ATTRIBUTE
	cdb[1] = 0x00
	cdb[7] = partition & 0x03
	putUint16(cdb[8:], firstAttribute)
	putUint32(cdb[10:], READ_ATTRIBUTE_ALLOC)
	return CommandIn(cdb, READ_ATTRIBUTE_ALLOC, time.Minute)
}
