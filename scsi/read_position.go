package scsi

import "time"

const READ_POSITION_ALLOC = 32

// ReadPosition requests the long form report, which carries 64-bit
// object counts.
func ReadPosition() Command {
	cdb := make([]byte, 10)
	cdb[0] = READ_POSITION
	cdb[1] = 0x06 // Long form
	return CommandIn(cdb, READ_POSITION_ALLOC, 10*time.Second)
}

type Position struct {
	Partition            uint32
	LogicalObject        uint64
	BeginningOfPartition bool
	EndOfData            bool
}

func ParsePosition(resp []byte) *Position {
	if len(resp) < 24 {
		return nil
	}
	return &Position{
		BeginningOfPartition: flagToBool(resp[0], 7),
		EndOfData:            flagToBool(resp[0], 5),
		Partition:            uint32(resp[4])<<24 | uint32(resp[5])<<16 | uint32(resp[6])<<8 | uint32(resp[7]),
		LogicalObject: uint64(resp[8])<<56 | uint64(resp[9])<<48 | uint64(resp[10])<<40 | uint64(resp[11])<<32 |
			uint64(resp[12])<<24 | uint64(resp[13])<<16 | uint64(resp[14])<<8 | uint64(resp[15]),
	}
}
