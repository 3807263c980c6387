package scsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocateBigEndianAddress(t *testing.T) {
	cmd := Locate(2, 0x0102030405060708)
	cdb := cmd.CDB()

	assert.Equal(t, uint8(LOCATE_16), cdb[0])
	assert.Equal(t, uint8(2), cdb[3])
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, cdb[4:12])
}

func TestReadAttributeCDB(t *testing.T) {
	cmd := ReadAttribute(1, 0x0401)
	cdb := cmd.CDB()

	assert.Equal(t, uint8(READ_ATTRIBUTE), cdb[0])
	assert.Equal(t, uint8(1), cdb[7])
	assert.Equal(t, []byte{0x04, 0x01}, cdb[8:10])
	assert.Equal(t, []byte{0x00, 0x00, 0x10, 0x00}, cdb[10:14])
}

func TestCommandImmutable(t *testing.T) {
	cmd := Inquiry()
	cdb := cmd.CDB()
	cdb[0] = 0xFF

	assert.Equal(t, uint8(INQUIRY), cmd.CDB()[0])
}

func TestOutboundBufferIsCopy(t *testing.T) {
	payload := []byte{1, 2, 3}
	cmd := CommandOut([]byte{0x15, 0, 0, 0, 3, 0}, payload, 0)
	payload[0] = 9

	buf := cmd.NewBuffer()
	assert.Equal(t, []byte{1, 2, 3}, buf)

	buf[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, cmd.NewBuffer())
}

func TestParseSenseFixed(t *testing.T) {
	buf := make([]byte, 18)
	buf[0] = 0x70
	buf[2] = SENSE_UNIT_ATTENTION
	buf[12] = ASC_POWER_ON_OR_RESET

	sense := ParseSense(buf)
	assert.Equal(t, uint8(SENSE_UNIT_ATTENTION), sense.Key)
	assert.Equal(t, uint8(ASC_POWER_ON_OR_RESET), sense.ASC)
	assert.Contains(t, sense.String(), "UNIT ATTENTION")
}

func TestParseSenseDescriptor(t *testing.T) {
	buf := []byte{0x72, SENSE_ILLEGAL_REQUEST, ASC_INVALID_FIELD_IN_CDB, 0x00}

	sense := ParseSense(buf)
	assert.Equal(t, uint8(SENSE_ILLEGAL_REQUEST), sense.Key)
	assert.Equal(t, uint8(ASC_INVALID_FIELD_IN_CDB), sense.ASC)
	assert.Contains(t, sense.CodeName(), "INVALID FIELD IN CDB")
}

func TestParseInquiry(t *testing.T) {
	resp := make([]byte, 36)
	copy(resp[8:], "IBM     ")
	copy(resp[16:], "ULT3580-TD9     ")
	copy(resp[32:], "P3A0")

	data := ParseInquiry(resp)
	assert.Equal(t, "IBM", data.Vendor)
	assert.Equal(t, "ULT3580-TD9", data.Product)
	assert.Equal(t, "P3A0", data.Revision)
}
