package scsi

import "fmt"

const (
	STATUS_GOOD                 = 0x00
	STATUS_CHECK_CONDITION      = 0x02
	STATUS_CONDITION_MET        = 0x04
	STATUS_BUSY                 = 0x08
	STATUS_RESERVATION_CONFLICT = 0x18
	STATUS_TASK_SET_FULL        = 0x28
	STATUS_ACA_ACTIVE           = 0x30
	STATUS_TASK_ABORTED         = 0x40
)

// Result is the uniform outcome of one submitted command, identical in
// shape for both host transports.
type Result struct {
	Status      uint8
	Sense       *Sense
	Transferred int

	// Attempts is filled in by the dispatch layer; the transport always
	// reports 1.
	Attempts int
}

func (r *Result) Ok() bool {
	return r.Status == STATUS_GOOD || r.Status == STATUS_CONDITION_MET
}

func (r *Result) String() string {
	if r.Ok() {
		return fmt.Sprintf("status GOOD, %d bytes", r.Transferred)
	}
	if r.Sense != nil {
		return fmt.Sprintf("status %#02x, sense %v", r.Status, r.Sense)
	}
	return fmt.Sprintf("status %#02x, no sense data", r.Status)
}
