package scsi

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runHandleConformance drives the handle contract shared by every
// transport: a live handle answers INQUIRY with data, and a closed
// handle fails every submit with ErrDeviceUnavailable, never coming
// back to life. It consumes the handle.
func runHandleConformance(t *testing.T, dev *Device) {
	t.Helper()

	res, data, err := dev.SubmitRead(Inquiry())
	require.NoError(t, err)
	require.True(t, res.Ok(), "INQUIRY on a present device: %v", res)
	assert.NotEmpty(t, data)

	require.NoError(t, dev.Close())
	for i := 0; i < 3; i++ {
		_, err := dev.Submit(TestUnitReady())
		assert.ErrorIs(t, err, ErrDeviceUnavailable)
	}
}

func TestFakeTransportConformance(t *testing.T) {
	resp := make([]byte, 36)
	copy(resp[8:], "FAKE    ")
	tr := &fakeTransport{fill: resp}

	runHandleConformance(t, fakeDevice(tr))
	assert.True(t, tr.closed)
	assert.Len(t, tr.sentCDBs, 1, "no command may reach the transport after close")
}

// TestNativeTransportConformance runs the same contract against the
// host's real pass-through mechanism. It needs hardware, so it is
// gated on an environment variable naming the device.
func TestNativeTransportConformance(t *testing.T) {
	path := os.Getenv("TAPECTL_TEST_DEVICE")
	if path == "" {
		t.Skip("set TAPECTL_TEST_DEVICE to a tape device node to run")
	}

	dev, err := Open(path)
	require.NoError(t, err)
	runHandleConformance(t, dev)
}

// fakeTransport satisfies the transport contract so the shared semantics
// can be exercised without hardware. The native transports are expected
// to behave identically; their structure packing is covered separately.
type fakeTransport struct {
	status      uint8
	sense       []byte
	fill        []byte
	sendErr     error
	closed      bool
	sentCDBs    [][]byte
	sentBuffers [][]byte
}

func (t *fakeTransport) send(cdb []byte, dir Direction, buf []byte, timeout time.Duration) (uint8, []byte, int, error) {
	t.sentCDBs = append(t.sentCDBs, cdb)
	t.sentBuffers = append(t.sentBuffers, buf)
	if t.sendErr != nil {
		return 0, nil, 0, t.sendErr
	}
	n := copy(buf, t.fill)
	return t.status, t.sense, n, nil
}

func (t *fakeTransport) close() error {
	t.closed = true
	return nil
}

func fakeDevice(tr *fakeTransport) *Device {
	return &Device{path: "/dev/fake0", tr: tr}
}

func TestSubmitSuccess(t *testing.T) {
	tr := &fakeTransport{fill: []byte{0x01, 0x80, 0x00, 0x04, 'S', 'E', 'R', '1'}}
	dev := fakeDevice(tr)

	res, data, err := dev.SubmitRead(InquiryVPD(VPD_PAGE_UNIT_SERIAL))
	require.NoError(t, err)
	assert.True(t, res.Ok())
	assert.Equal(t, 8, res.Transferred)
	assert.Equal(t, "SER1", ParseUnitSerial(data))
}

func TestSubmitCheckCondition(t *testing.T) {
	sense := make([]byte, 18)
	sense[0] = 0x70
	sense[2] = SENSE_NOT_READY
	sense[12] = ASC_MEDIUM_NOT_PRESENT

	tr := &fakeTransport{status: STATUS_CHECK_CONDITION, sense: sense}
	dev := fakeDevice(tr)

	res, err := dev.Submit(TestUnitReady())
	require.NoError(t, err, "a device-level failure is a result, not a transport error")
	assert.False(t, res.Ok())
	require.NotNil(t, res.Sense)
	assert.Equal(t, uint8(SENSE_NOT_READY), res.Sense.Key)
	assert.Equal(t, uint8(ASC_MEDIUM_NOT_PRESENT), res.Sense.ASC)
}

func TestSubmitTransportFault(t *testing.T) {
	tr := &fakeTransport{sendErr: &TransportError{Op: "SG_IO", Err: assert.AnError}}
	dev := fakeDevice(tr)

	_, err := dev.Submit(TestUnitReady())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
}

func TestClosedHandleUnavailable(t *testing.T) {
	tr := &fakeTransport{}
	dev := fakeDevice(tr)
	require.NoError(t, dev.Close())

	_, err := dev.Submit(TestUnitReady())
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Empty(t, tr.sentCDBs, "no command may reach a closed handle")
}

func TestInvalidatedHandleNeverReopens(t *testing.T) {
	tr := &fakeTransport{}
	dev := fakeDevice(tr)
	dev.Invalidate()

	for i := 0; i < 3; i++ {
		_, err := dev.Submit(TestUnitReady())
		assert.ErrorIs(t, err, ErrDeviceUnavailable)
	}
	assert.True(t, tr.closed)
}

func TestFreshBufferPerSubmit(t *testing.T) {
	tr := &fakeTransport{fill: []byte{0xAA}}
	dev := fakeDevice(tr)

	cmd := Inquiry()
	_, err := dev.Submit(cmd)
	require.NoError(t, err)
	_, err = dev.Submit(cmd)
	require.NoError(t, err)

	require.Len(t, tr.sentBuffers, 2)
	assert.NotSame(t, &tr.sentBuffers[0][0], &tr.sentBuffers[1][0])
	require.Len(t, tr.sentCDBs, 2)
	assert.NotSame(t, &tr.sentCDBs[0][0], &tr.sentCDBs[1][0])
	assert.Equal(t, tr.sentCDBs[0], tr.sentCDBs[1])
}
