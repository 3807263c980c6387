package mam

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeaderSkip(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x54, 0x50, 0x31, 0x31, 0x30, 0x31, 0x00, 0x00}

	record := Decode(ATTR_SERIAL_NUMBER, 0, raw)
	require.False(t, record.Unparsed)
	assert.Equal(t, "TP1101", record.Value)
	assert.Equal(t, "offset-2/ascii", record.Strategy)
	assert.Equal(t, "0000545031313031"+"0000", record.RawHex)
}

func TestDecodeNoHeader(t *testing.T) {
	record := Decode(ATTR_BARCODE, 1, []byte("P0003SL6"))
	require.False(t, record.Unparsed)
	assert.Equal(t, "P0003SL6", record.Value)
	assert.Equal(t, "offset-0/ascii", record.Strategy)
	assert.Equal(t, uint8(1), record.Partition)
}

func TestDecodePaddedValue(t *testing.T) {
	raw := append([]byte("HLA550L9"), 0x20, 0x20, 0x00)
	record := Decode(ATTR_BARCODE, 0, raw)
	require.False(t, record.Unparsed)
	assert.Equal(t, "HLA550L9", record.Value)
}

func TestDecodeFourByteHeader(t *testing.T) {
	raw := []byte{0x04, 0x01, 0x00, 0x0A, 'C', 'Q', '2', '2', '7', '6', 'L', '9', 0x00, 0x00}
	record := Decode(ATTR_SERIAL_NUMBER, 0, raw)
	require.False(t, record.Unparsed)
	assert.Equal(t, "CQ2276L9", record.Value)
	assert.Equal(t, "offset-4/ascii", record.Strategy)
}

func TestDecodeIdempotent(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x54, 0x50, 0x31, 0x31, 0x30, 0x31, 0x00, 0x00}

	first := Decode(ATTR_SERIAL_NUMBER, 2, raw)
	second := Decode(ATTR_SERIAL_NUMBER, 2, raw)
	assert.Equal(t, first, second)
}

func TestDecodeUnparsed(t *testing.T) {
	for name, raw := range map[string][]byte{
		"empty":         nil,
		"all zero":      {0x00, 0x00, 0x00, 0x00},
		"control bytes": {0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C},
		"run too short": {'A', 'B', 0x00, 'C', 'D', 0x00},
	} {
		record := Decode(ATTR_MANUFACTURER, 0, raw)
		assert.True(t, record.Unparsed, name)
		assert.Empty(t, record.Value, name)
		assert.Equal(t, hex.EncodeToString(raw), record.RawHex, name)
	}
}

func TestDecodeUnparsedIsNotAnError(t *testing.T) {
	record := Decode(ATTR_MANUFACTURER, 0, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	assert.True(t, record.Unparsed)
	assert.Equal(t, "deadbeef", record.RawHex)
	assert.Empty(t, record.Strategy)
}

func TestDecodePermissiveFallback(t *testing.T) {
	// High bytes interleaved: invalid UTF-8, and after ASCII discarding
	// the text is anchored on the value.
	raw := []byte{'T', 0xFF, 'A', 'P', 'E', '-', '0', '9'}
	record := Decode(ATTR_BARCODE, 0, raw)
	require.False(t, record.Unparsed)
	assert.Equal(t, "TAPE-09", record.Value)
	assert.Equal(t, "offset-0/ascii", record.Strategy)
}

func TestDecodeUTF8BeforePermissive(t *testing.T) {
	// Valid multi-byte UTF-8 in front keeps ASCII from anchoring the
	// value? No: ASCII discards the high bytes and anchors. Force the
	// choice by making the first byte a control char under ASCII.
	raw := []byte{'S', 'N', '-', '4', '2', 0xC3, 0xA9}
	record := Decode(ATTR_SERIAL_NUMBER, 0, raw)
	require.False(t, record.Unparsed)
	assert.Equal(t, "SN-42", record.Value)
}

func TestLongestRunPrefersLongest(t *testing.T) {
	record := Decode(ATTR_APPLICATION_NAME, 0, []byte("AB CDEFG HI"))
	require.False(t, record.Unparsed)
	assert.Equal(t, "CDEFG", record.Value)
}

func TestAttributeNames(t *testing.T) {
	assert.Equal(t, "serial-number", ATTR_SERIAL_NUMBER.String())
	assert.Equal(t, "barcode", ATTR_BARCODE.String())
	assert.Equal(t, "attribute-0x0123", AttributeID(0x0123).String())
}
