package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FoxDenHome/tapectl/scsi"
)

type fakeSubmitter struct {
	results []*scsi.Result
	err     error
	calls   int
	times   []time.Time
}

func (f *fakeSubmitter) Path() string {
	return "/dev/fake0"
}

func (f *fakeSubmitter) SubmitRead(cmd scsi.Command) (*scsi.Result, []byte, error) {
	f.calls++
	f.times = append(f.times, time.Now())
	if f.err != nil {
		return nil, nil, f.err
	}
	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	// Fresh result per attempt, like a real handle.
	cp := *res
	return &cp, nil, nil
}

func goodResult() *scsi.Result {
	return &scsi.Result{Status: scsi.STATUS_GOOD}
}

func busyResult() *scsi.Result {
	return &scsi.Result{Status: scsi.STATUS_BUSY}
}

func senseResult(key, asc uint8) *scsi.Result {
	return &scsi.Result{
		Status: scsi.STATUS_CHECK_CONDITION,
		Sense:  &scsi.Sense{Key: key, ASC: asc},
	}
}

func TestTransientRetriesUntilSuccess(t *testing.T) {
	dev := &fakeSubmitter{results: []*scsi.Result{
		busyResult(),
		senseResult(scsi.SENSE_UNIT_ATTENTION, scsi.ASC_POWER_ON_OR_RESET),
		goodResult(),
	}}

	exec := New(Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond})
	res, err := exec.Run(context.Background(), dev, scsi.TestUnitReady())
	require.NoError(t, err)
	assert.True(t, res.Ok())
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, dev.calls)
}

func TestTransientRespectsCeiling(t *testing.T) {
	dev := &fakeSubmitter{results: []*scsi.Result{busyResult()}}

	exec := New(Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond})
	res, err := exec.Run(context.Background(), dev, scsi.TestUnitReady())
	require.NoError(t, err)
	assert.False(t, res.Ok())
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, dev.calls)
}

func TestBackoffNonDecreasing(t *testing.T) {
	dev := &fakeSubmitter{results: []*scsi.Result{busyResult()}}

	exec := New(Policy{MaxAttempts: 4, BaseDelay: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond})
	_, err := exec.Run(context.Background(), dev, scsi.TestUnitReady())
	require.NoError(t, err)

	require.Len(t, dev.times, 4)
	// Scheduled delays double from base and cap at max: 10, 20, 20.
	scheduled := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 20 * time.Millisecond}
	for i := 1; i < len(dev.times); i++ {
		gap := dev.times[i].Sub(dev.times[i-1])
		assert.GreaterOrEqual(t, gap, scheduled[i-1], "attempt %d slept less than scheduled", i)
		// Capped: no gap balloons past the cap plus scheduling noise.
		assert.Less(t, gap, 200*time.Millisecond)
	}
}

func TestPermanentFailsImmediately(t *testing.T) {
	for name, res := range map[string]*scsi.Result{
		"illegal request": senseResult(scsi.SENSE_ILLEGAL_REQUEST, scsi.ASC_INVALID_FIELD_IN_CDB),
		"write protected": senseResult(scsi.SENSE_DATA_PROTECT, scsi.ASC_WRITE_PROTECTED),
		"medium absent":   senseResult(scsi.SENSE_NOT_READY, scsi.ASC_MEDIUM_NOT_PRESENT),
	} {
		dev := &fakeSubmitter{results: []*scsi.Result{res}}
		exec := New(DefaultPolicy)

		got, err := exec.Run(context.Background(), dev, scsi.TestUnitReady())
		require.NoError(t, err, name)
		assert.Equal(t, 1, got.Attempts, name)
		assert.Equal(t, 1, dev.calls, name)
	}
}

func TestUnknownFailsClosed(t *testing.T) {
	dev := &fakeSubmitter{results: []*scsi.Result{
		{Status: scsi.STATUS_CHECK_CONDITION}, // no sense at all
	}}
	exec := New(DefaultPolicy)

	got, err := exec.Run(context.Background(), dev, scsi.TestUnitReady())
	require.NoError(t, err)
	assert.Equal(t, 1, dev.calls, "unknown classification must not retry")
	assert.False(t, got.Ok())
}

func TestHandleErrorNotRetried(t *testing.T) {
	dev := &fakeSubmitter{err: scsi.ErrDeviceUnavailable}
	exec := New(DefaultPolicy)

	_, err := exec.Run(context.Background(), dev, scsi.TestUnitReady())
	assert.ErrorIs(t, err, scsi.ErrDeviceUnavailable)
	assert.Equal(t, 1, dev.calls)
}

func TestContextCancelsBackoff(t *testing.T) {
	dev := &fakeSubmitter{results: []*scsi.Result{busyResult()}}
	exec := New(Policy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := exec.Run(ctx, dev, scsi.TestUnitReady())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Transient, Classify(busyResult()))
	assert.Equal(t, Transient, Classify(&scsi.Result{Status: scsi.STATUS_TASK_SET_FULL}))
	assert.Equal(t, Transient, Classify(senseResult(scsi.SENSE_NOT_READY, scsi.ASC_NOT_READY_CAUSE_UNKNOWN)))
	assert.Equal(t, Permanent, Classify(senseResult(scsi.SENSE_ILLEGAL_REQUEST, 0)))
	assert.Equal(t, Unknown, Classify(&scsi.Result{Status: scsi.STATUS_CHECK_CONDITION}))
	assert.Equal(t, Unknown, Classify(senseResult(scsi.SENSE_NOT_READY, 0x30)))
}
