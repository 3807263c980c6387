package dispatch

import "github.com/FoxDenHome/tapectl/scsi"

// Class is the retry classification of one failed attempt.
type Class int

const (
	// Transient faults clear on their own; the command is retried.
	Transient Class = iota
	// Permanent faults never succeed by repetition.
	Permanent
	// Unknown faults are treated as permanent (fail-closed) so a real
	// error is never masked by retries.
	Unknown
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Classify decides what a non-success result means for the retry loop.
func Classify(res *scsi.Result) Class {
	switch res.Status {
	case scsi.STATUS_BUSY, scsi.STATUS_TASK_SET_FULL:
		return Transient
	case scsi.STATUS_RESERVATION_CONFLICT:
		return Permanent
	}

	if res.Sense == nil {
		return Unknown
	}

	switch res.Sense.Key {
	case scsi.SENSE_UNIT_ATTENTION:
		return Transient
	case scsi.SENSE_NOT_READY:
		switch res.Sense.ASC {
		case scsi.ASC_MEDIUM_NOT_PRESENT:
			return Permanent
		case scsi.ASC_NOT_READY_CAUSE_UNKNOWN:
			// Becoming ready, format in progress and friends all clear
			// with time.
			return Transient
		}
		return Unknown
	case scsi.SENSE_ILLEGAL_REQUEST, scsi.SENSE_DATA_PROTECT:
		return Permanent
	case scsi.SENSE_MEDIUM_ERROR, scsi.SENSE_HARDWARE_ERROR:
		return Permanent
	case scsi.SENSE_ABORTED_COMMAND:
		return Transient
	}

	return Unknown
}
