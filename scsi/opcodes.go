package scsi

// Opcodes used by this core, T10 SSC/SPC.
const (
	TEST_UNIT_READY = 0x00
	REQUEST_SENSE   = 0x03
	INQUIRY         = 0x12
	LOAD_UNLOAD     = 0x1B
	LOCATE_16       = 0x92
	READ_POSITION   = 0x34
	READ_ATTRIBUTE  = 0x8C
)
