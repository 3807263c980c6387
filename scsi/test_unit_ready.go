package scsi

import "time"

func TestUnitReady() Command {
	return CommandNone([]byte{
		TEST_UNIT_READY, 0x00, 0x00, 0x00, 0x00, 0x00,
	}, 10*time.Second)
}
