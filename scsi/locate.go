package scsi

import "time"

// Locate positions the medium to a 64-bit logical object identifier,
// LOCATE(16) for large-capacity addressing. Dest type zero selects
// logical object addressing.
func Locate(partition uint8, logicalObject uint64) Command {
	cdb := make([]byte, 16)
	cdb[0] = LOCATE_16
	cdb[1] = boolToFlag(true, 1) // CP, honor the partition field
	cdb[3] = partition & 0x03
	putUint64(cdb[4:], logicalObject)
	return CommandNone(cdb, time.Minute*10)
}
